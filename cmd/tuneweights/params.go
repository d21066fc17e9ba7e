// Package main implements an offline calibration tool that searches
// steering weights for a target flock cohesion (order parameter),
// exercising sim.World only through its public API. Grounded on the
// teacher's cmd/optimize/{main,fitness,params}.go CMA-ES driver,
// adapted from ecosystem survival-ticks fitness to a steering-quality
// objective since the core has no birth/death/energy model to drive
// an extinction-based fitness.
package main

import "github.com/pthm-cable/swarmcore/sim"

// ParamSpec defines a single optimizable steering parameter.
type ParamSpec struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable steering
// parameters: the three rule weights, the crowding-boost pair, and
// the force budget that bounds them all.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "separation_weight", Min: 0.1, Max: 4.0, Default: 1.5},
			{Name: "alignment_weight", Min: 0.1, Max: 4.0, Default: 1.0},
			{Name: "cohesion_weight", Min: 0.1, Max: 4.0, Default: 1.0},
			{Name: "separation_crowding_threshold", Min: 1, Max: 20, Default: 6},
			{Name: "separation_crowding_boost", Min: 1.0, Max: 4.0, Default: 1.8},
			{Name: "max_force", Min: 5, Max: 100, Default: 40},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1].
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	norm := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		norm[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return norm
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(norm []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + norm[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig overwrites cfg's steering fields with clamped values,
// in the order NewParamVector declares them.
func (pv *ParamVector) ApplyToConfig(cfg *sim.Config, values []float64) {
	c := pv.Clamp(values)
	cfg.SeparationWeight = float32(c[0])
	cfg.AlignmentWeight = float32(c[1])
	cfg.CohesionWeight = float32(c[2])
	cfg.SeparationCrowdingThreshold = float32(c[3])
	cfg.SeparationCrowdingBoost = float32(c[4])
	cfg.MaxForce = float32(c[5])
}
