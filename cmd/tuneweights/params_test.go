package main

import (
	"testing"

	"github.com/pthm-cable/swarmcore/sim"
)

func TestParamVectorNormalizeDenormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	norm := pv.Normalize(raw)
	back := pv.Denormalize(norm)

	for i := range raw {
		if diff := raw[i] - back[i]; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("param %d: round trip mismatch: %v vs %v", i, raw[i], back[i])
		}
	}
}

func TestParamVectorClampBoundsValues(t *testing.T) {
	pv := NewParamVector()
	over := make([]float64, pv.Dim())
	for i, spec := range pv.Specs {
		over[i] = spec.Max + 100
	}
	clamped := pv.Clamp(over)
	for i, spec := range pv.Specs {
		if clamped[i] != spec.Max {
			t.Errorf("param %d: expected clamp to %v, got %v", i, spec.Max, clamped[i])
		}
	}
}

func TestParamVectorApplyToConfigSetsAllFields(t *testing.T) {
	pv := NewParamVector()
	cfg := sim.PeacefulFlocksPreset()
	values := []float64{2.0, 1.2, 0.8, 5, 2.2, 55}

	pv.ApplyToConfig(&cfg, values)

	if cfg.SeparationWeight != 2.0 {
		t.Errorf("expected separation weight 2.0, got %v", cfg.SeparationWeight)
	}
	if cfg.AlignmentWeight != 1.2 {
		t.Errorf("expected alignment weight 1.2, got %v", cfg.AlignmentWeight)
	}
	if cfg.CohesionWeight != 0.8 {
		t.Errorf("expected cohesion weight 0.8, got %v", cfg.CohesionWeight)
	}
	if cfg.MaxForce != 55 {
		t.Errorf("expected max force 55, got %v", cfg.MaxForce)
	}
}
