package engine

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/michaelbinary/advanced-pathfinding/internal/agents"
	"github.com/michaelbinary/advanced-pathfinding/internal/grid"
	"github.com/michaelbinary/advanced-pathfinding/internal/obstacle"
)

// Snapshot is an immutable copy of the simulation state after a tick.
// Nothing in it aliases planner memory.
type Snapshot struct {
	Time       float64                 `json:"time"`
	Obstacles  []obstacle.Obstacle     `json:"obstacles"`
	Agents     map[string]agents.Agent `json:"agents"`
	Congestion map[grid.Coord]int      `json:"-"`
}

// CongestionEntry is one serialized congestion counter.
type CongestionEntry struct {
	Coord grid.Coord `json:"coord"`
	Count int        `json:"count"`
}

// Snapshot captures the current state.
func (p *Planner) Snapshot() Snapshot {
	s := Snapshot{
		Time:       p.time,
		Obstacles:  p.obstacles.Snapshot(),
		Agents:     make(map[string]agents.Agent, len(p.agents)),
		Congestion: p.traffic.Snapshot(),
	}
	for id, a := range p.agents {
		s.Agents[id] = a.Clone()
	}
	return s
}

// Done reports whether no agent is still active.
func (s Snapshot) Done() bool {
	for _, a := range s.Agents {
		if a.Status == agents.StatusActive {
			return false
		}
	}
	return true
}

// CountByStatus tallies agents per status.
func (s Snapshot) CountByStatus() map[agents.Status]int {
	counts := make(map[agents.Status]int)
	for _, a := range s.Agents {
		counts[a.Status]++
	}
	return counts
}

// CongestionEntries returns the congestion counters sorted by coordinate.
func (s Snapshot) CongestionEntries() []CongestionEntry {
	out := make([]CongestionEntry, 0, len(s.Congestion))
	for c, n := range s.Congestion {
		out = append(out, CongestionEntry{Coord: c, Count: n})
	}
	slices.SortFunc(out, func(a, b CongestionEntry) int {
		if n := cmp.Compare(a.Coord.X, b.Coord.X); n != 0 {
			return n
		}
		return cmp.Compare(a.Coord.Y, b.Coord.Y)
	})
	return out
}

// MarshalJSON encodes congestion as a sorted list since JSON object keys
// must be strings.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	type plain Snapshot
	return json.Marshal(struct {
		plain
		Congestion []CongestionEntry `json:"congestion"`
	}{plain: plain(s), Congestion: s.CongestionEntries()})
}
