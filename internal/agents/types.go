// Package agents provides the agent data model, path queue, and motion
// integration.
package agents

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/michaelbinary/advanced-pathfinding/internal/grid"
)

// Status is an agent's lifecycle state. Finished is terminal.
type Status string

const (
	StatusActive   Status = "active"
	StatusWaiting  Status = "waiting" // assigned only by external drivers
	StatusFinished Status = "finished"
)

// Constraints bound an agent's path search.
type Constraints struct {
	// MaxCost caps the cost of each single step. Zero means unconstrained.
	MaxCost float64 `json:"max_cost" yaml:"max_cost"`
	// Priority is advisory metadata; the search does not consume it.
	Priority int `json:"priority" yaml:"priority"`
}

// DefaultConstraints returns unconstrained search with priority 1.
func DefaultConstraints() Constraints {
	return Constraints{Priority: 1}
}

// EffectiveMaxCost returns MaxCost, or +Inf when unconstrained.
func (c Constraints) EffectiveMaxCost() float64 {
	if c.MaxCost <= 0 {
		return math.Inf(1)
	}
	return c.MaxCost
}

// Path is an ordered waypoint queue; the front is the next target.
type Path []grid.Coord

// Next returns the front waypoint.
func (p Path) Next() (grid.Coord, bool) {
	if len(p) == 0 {
		return grid.Coord{}, false
	}
	return p[0], true
}

// Clone returns an independent copy. A nil path stays nil.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Length returns the Euclidean length along the waypoints.
func (p Path) Length() float64 {
	total := 0.0
	for i := 1; i < len(p); i++ {
		total += grid.Euclidean(p[i-1], p[i])
	}
	return total
}

// Agent is one moving entity.
type Agent struct {
	ID          string      `json:"id"`
	Start       grid.Coord  `json:"start"`
	Goal        grid.Coord  `json:"goal"`
	Speed       float64     `json:"speed"` // cells per second, > 0
	Position    orb.Point   `json:"position"`
	Path        Path        `json:"path"`
	Constraints Constraints `json:"constraints"`
	Status      Status      `json:"status"`

	// Motion bookkeeping for exported statistics.
	Traveled   float64 `json:"traveled"`
	ActiveTime float64 `json:"active_time"`
}

// New creates an active agent positioned at start with no path.
func New(id string, start, goal grid.Coord, speed float64, c Constraints) *Agent {
	return &Agent{
		ID:          id,
		Start:       start,
		Goal:        goal,
		Speed:       speed,
		Position:    PointOf(start),
		Constraints: c,
		Status:      StatusActive,
	}
}

// PointOf converts a cell to the real-valued position of its center.
func PointOf(c grid.Coord) orb.Point {
	return orb.Point{float64(c.X), float64(c.Y)}
}

// CellOf rounds a real-valued position to its nearest cell.
func CellOf(p orb.Point) grid.Coord {
	return grid.Coord{X: int(math.Round(p[0])), Y: int(math.Round(p[1]))}
}

// Cell returns the agent's current integer-rounded cell.
func (a *Agent) Cell() grid.Coord {
	return CellOf(a.Position)
}

// SetStatus changes status. Leaving StatusFinished is refused.
func (a *Agent) SetStatus(s Status) error {
	if a.Status == StatusFinished && s != StatusFinished {
		return fmt.Errorf("agent %s is finished and cannot become %s", a.ID, s)
	}
	a.Status = s
	return nil
}

// Clone returns a deep copy.
func (a *Agent) Clone() Agent {
	c := *a
	c.Path = a.Path.Clone()
	return c
}

// OptimalDistance is the straight-line distance from start to goal.
func (a *Agent) OptimalDistance() float64 {
	return grid.Euclidean(a.Start, a.Goal)
}

// PathMetrics describes the agent's current path against the straight line
// from start to goal.
type PathMetrics struct {
	Distance        float64 `json:"distance"`
	OptimalDistance float64 `json:"optimal_distance"`
	Efficiency      float64 `json:"efficiency"`
}

// Metrics measures the remaining path. An empty path reports all zeros.
func (a *Agent) Metrics() PathMetrics {
	if len(a.Path) == 0 {
		return PathMetrics{}
	}
	m := PathMetrics{
		Distance:        a.Path.Length(),
		OptimalDistance: a.OptimalDistance(),
	}
	if m.Distance > 0 {
		m.Efficiency = m.OptimalDistance / m.Distance
	}
	return m
}
