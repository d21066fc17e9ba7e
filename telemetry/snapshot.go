package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/swarmcore/agent"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the seed that produced a run, the tick it was
// captured at, the world extent, and every agent's position, velocity,
// state, group and genome, so a run can be diffed offline. It does not
// hold the RNG's current state or the rest of the world config, and
// Restore rebuilds only an agent.Store, not a World.
//
// Grounded on the teacher's telemetry/snapshot.go EntityState/Snapshot
// shape, collapsed from per-entity Kind/Brain/Lifetime JSON objects
// down to the agent.Store's own columns (the snapshot is a columnar
// dump, not a list of entity objects, matching the core's data model).
type Snapshot struct {
	Version int    `json:"version"`
	RNGSeed uint64 `json:"rng_seed"`

	WorldWidth  float32 `json:"world_width"`
	WorldHeight float32 `json:"world_height"`

	Tick uint64 `json:"tick"`

	Agents []AgentState `json:"agents"`
}

// AgentState holds one agent's serializable state.
type AgentState struct {
	ID    int          `json:"id"`
	X     float32      `json:"x"`
	Y     float32      `json:"y"`
	Vx    float32      `json:"vx"`
	Vy    float32      `json:"vy"`
	State agent.State  `json:"state"`
	Group uint16       `json:"group"`
	Genome agent.Genome `json:"genome"`
}

// FromWorld builds a Snapshot of a world's live agent store.
// storeCount bounds how many slots are dumped (normally store.Count()).
func FromWorld(seed uint64, tick uint64, width, height float32, store *agent.Store, storeCount int) *Snapshot {
	x, y := store.X(), store.Y()
	vx, vy := store.Vx(), store.Vy()

	agents := make([]AgentState, storeCount)
	for i := 0; i < storeCount; i++ {
		agents[i] = AgentState{
			ID:     i,
			X:      x[i],
			Y:      y[i],
			Vx:     vx[i],
			Vy:     vy[i],
			State:  store.State(i),
			Group:  store.Group(i),
			Genome: store.Genome(i),
		}
	}

	return &Snapshot{
		Version:     SnapshotVersion,
		RNGSeed:     seed,
		WorldWidth:  width,
		WorldHeight: height,
		Tick:        tick,
		Agents:      agents,
	}
}

// Restore rebuilds a Store from a Snapshot's agent rows.
func (s *Snapshot) Restore() *agent.Store {
	store := agent.NewStore(len(s.Agents))
	for _, a := range s.Agents {
		id := store.Add(a.X, a.Y, a.Vx, a.Vy, a.Group, a.Genome)
		store.SetState(id, a.State)
	}
	return store
}

// SaveSnapshot writes a snapshot to disk as indented JSON, returning
// the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d.json", snapshot.Tick)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
