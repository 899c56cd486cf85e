// Package cost combines terrain, elevation, weather, congestion and risk
// into the per-cell traversal cost, and freezes that model into read-only
// views for concurrent searches.
package cost

import (
	"math"

	"github.com/michaelbinary/advanced-pathfinding/internal/grid"
	"github.com/michaelbinary/advanced-pathfinding/internal/traffic"
	"github.com/michaelbinary/advanced-pathfinding/internal/weather"
)

const (
	ElevationWeight = 0.1
	RiskWeight      = 5.0
)

// Traversal returns the cost of entering cell. w may be nil for no weather.
// The result is always finite and non-negative.
func Traversal(cell grid.Cell, w *weather.Condition, visits int) float64 {
	total := cell.Terrain.BaseCost()
	total += math.Max(0, cell.Elevation*ElevationWeight)
	if w != nil {
		total += w.Penalty()
	}
	total += traffic.Cost(max(0, visits))
	total += math.Max(0, cell.Risk) * RiskWeight

	if math.IsNaN(total) || math.IsInf(total, 0) || total < 0 {
		return math.MaxFloat64
	}
	return total
}

// View is a frozen cost model: a grid plus weather and congestion as of
// one instant. Safe for concurrent readers as long as the grid is not
// mutated while the view is in use.
type View struct {
	grid    *grid.Grid
	weather weather.Lookup
	visits  map[grid.Coord]int
}

// NewView freezes the given inputs. visits is retained, not copied; callers
// pass a snapshot.
func NewView(g *grid.Grid, w weather.State, visits map[grid.Coord]int) *View {
	return &View{
		grid:    g,
		weather: w.Lookup(),
		visits:  visits,
	}
}

// InBounds reports whether c lies on the grid.
func (v *View) InBounds(c grid.Coord) bool {
	return v.grid.InBounds(c)
}

// Cost returns the traversal cost of entering c. c must be in bounds.
func (v *View) Cost(c grid.Coord) float64 {
	cell, ok := v.grid.Cell(c)
	if !ok {
		return math.Inf(1)
	}
	var w *weather.Condition
	if cond, ok := v.weather.At(c); ok {
		w = &cond
	}
	return Traversal(cell, w, v.visits[c])
}
