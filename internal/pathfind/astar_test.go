package pathfind

import (
	"slices"
	"testing"

	"github.com/michaelbinary/advanced-pathfinding/internal/grid"
)

// uniformMap is a w x h grid with a fixed cost everywhere except overrides.
type uniformMap struct {
	w, h      int
	base      float64
	overrides map[grid.Coord]float64
}

func (m uniformMap) InBounds(c grid.Coord) bool {
	return c.X >= 0 && c.X < m.w && c.Y >= 0 && c.Y < m.h
}

func (m uniformMap) Cost(c grid.Coord) float64 {
	if v, ok := m.overrides[c]; ok {
		return v
	}
	return m.base
}

func checkPath(t *testing.T, path []grid.Coord, start, goal grid.Coord) {
	t.Helper()
	if len(path) == 0 {
		t.Fatal("path is empty")
	}
	if path[0] != start {
		t.Errorf("path starts at %s, want %s", path[0], start)
	}
	if path[len(path)-1] != goal {
		t.Errorf("path ends at %s, want %s", path[len(path)-1], goal)
	}
	for i := 1; i < len(path); i++ {
		if !grid.Adjacent(path[i-1], path[i]) || path[i-1] == path[i] {
			t.Errorf("step %d: %s -> %s is not an 8-neighbour move", i, path[i-1], path[i])
		}
	}
}

func pathCost(m CostMap, path []grid.Coord) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		c := m.Cost(path[i])
		if path[i].X != path[i-1].X && path[i].Y != path[i-1].Y {
			c *= DiagonalFactor
		}
		total += c
	}
	return total
}

func TestSearchDiagonal(t *testing.T) {
	m := uniformMap{w: 10, h: 10, base: 1}
	start, goal := grid.Coord{X: 0, Y: 0}, grid.Coord{X: 9, Y: 9}
	path := Search(m, Query{Start: start, Goal: goal})
	checkPath(t, path, start, goal)
	if len(path) != 10 {
		t.Errorf("len(path) = %d, want 10 (pure diagonal)", len(path))
	}
}

func TestSearchStartEqualsGoal(t *testing.T) {
	m := uniformMap{w: 3, h: 3, base: 1}
	c := grid.Coord{X: 1, Y: 1}
	path := Search(m, Query{Start: c, Goal: c})
	if !slices.Equal(path, []grid.Coord{c}) {
		t.Errorf("path = %v, want [%s]", path, c)
	}
}

func TestSearchAvoidsExpensiveWall(t *testing.T) {
	// Column x=5 is expensive except a gap at y=8.
	over := map[grid.Coord]float64{}
	for y := 0; y < 10; y++ {
		if y != 8 {
			over[grid.Coord{X: 5, Y: y}] = 100
		}
	}
	m := uniformMap{w: 10, h: 10, base: 1, overrides: over}
	start, goal := grid.Coord{X: 0, Y: 2}, grid.Coord{X: 9, Y: 2}
	path := Search(m, Query{Start: start, Goal: goal, MaxCost: 20})
	checkPath(t, path, start, goal)
	if !slices.Contains(path, grid.Coord{X: 5, Y: 8}) {
		t.Errorf("path %v does not use the gap", path)
	}
}

func TestMaxCostIsPerEdge(t *testing.T) {
	// Every edge costs 3; a path of many edges totals far more than MaxCost.
	m := uniformMap{w: 20, h: 1, base: 3}
	start, goal := grid.Coord{X: 0, Y: 0}, grid.Coord{X: 19, Y: 0}
	path := Search(m, Query{Start: start, Goal: goal, MaxCost: 3})
	checkPath(t, path, start, goal)
	if total := pathCost(m, path); total <= 3 {
		t.Errorf("total cost %v, expected well above the per-edge cap", total)
	}

	if got := Search(m, Query{Start: start, Goal: goal, MaxCost: 2.9}); got != nil {
		t.Errorf("path found with every edge over the cap: %v", got)
	}
}

func TestDiagonalPrunedByCap(t *testing.T) {
	// Orthogonal edges cost 1, diagonal 1.414: a cap of 1.2 forces Manhattan moves.
	m := uniformMap{w: 5, h: 5, base: 1}
	start, goal := grid.Coord{X: 0, Y: 0}, grid.Coord{X: 3, Y: 3}
	path := Search(m, Query{Start: start, Goal: goal, MaxCost: 1.2})
	checkPath(t, path, start, goal)
	for i := 1; i < len(path); i++ {
		if path[i].X != path[i-1].X && path[i].Y != path[i-1].Y {
			t.Errorf("diagonal step %s -> %s survived a 1.2 cap", path[i-1], path[i])
		}
	}
}

func TestUnreachable(t *testing.T) {
	over := map[grid.Coord]float64{}
	for y := 0; y < 5; y++ {
		over[grid.Coord{X: 2, Y: y}] = 50
	}
	m := uniformMap{w: 5, h: 5, base: 1, overrides: over}
	path := Search(m, Query{Start: grid.Coord{X: 0, Y: 0}, Goal: grid.Coord{X: 4, Y: 4}, MaxCost: 10})
	if path != nil {
		t.Errorf("path = %v, want nil", path)
	}
}

func TestBlockedCells(t *testing.T) {
	m := uniformMap{w: 5, h: 5, base: 1}
	start, goal := grid.Coord{X: 0, Y: 2}, grid.Coord{X: 4, Y: 2}
	blocked := func(c grid.Coord) bool { return c.X == 2 && c.Y != 0 }
	path := Search(m, Query{Start: start, Goal: goal, Blocked: blocked})
	checkPath(t, path, start, goal)
	if !slices.Contains(path, grid.Coord{X: 2, Y: 0}) {
		t.Errorf("path %v crosses a blocked column", path)
	}

	// The start cell is never tested against Blocked.
	path = Search(m, Query{Start: start, Goal: goal, Blocked: func(c grid.Coord) bool { return c == start }})
	checkPath(t, path, start, goal)
}

func TestOutOfBoundsQuery(t *testing.T) {
	m := uniformMap{w: 3, h: 3, base: 1}
	if p := Search(m, Query{Start: grid.Coord{X: -1, Y: 0}, Goal: grid.Coord{X: 2, Y: 2}}); p != nil {
		t.Errorf("path from out-of-bounds start = %v", p)
	}
}

func TestDeterministic(t *testing.T) {
	m := uniformMap{w: 15, h: 15, base: 1}
	q := Query{Start: grid.Coord{X: 0, Y: 7}, Goal: grid.Coord{X: 14, Y: 3}}
	first := Search(m, q)
	for i := 0; i < 20; i++ {
		if got := Search(m, q); !slices.Equal(got, first) {
			t.Fatalf("run %d returned %v, want %v", i, got, first)
		}
	}
}

func TestAdmissibleScaleFindsOptimum(t *testing.T) {
	// Cheap highway row at y=0 costing 0.8; everything else 1.2.
	over := map[grid.Coord]float64{}
	for x := 0; x < 12; x++ {
		over[grid.Coord{X: x, Y: 0}] = 0.8
	}
	m := uniformMap{w: 12, h: 6, base: 1.2, overrides: over}
	start, goal := grid.Coord{X: 0, Y: 3}, grid.Coord{X: 11, Y: 3}

	optimal := Search(m, Query{Start: start, Goal: goal, HeuristicScale: grid.MinBaseCost})
	checkPath(t, optimal, start, goal)
	greedy := Search(m, Query{Start: start, Goal: goal})
	checkPath(t, greedy, start, goal)

	if pathCost(m, optimal) > pathCost(m, greedy)+1e-9 {
		t.Errorf("admissible search cost %v exceeds default search cost %v",
			pathCost(m, optimal), pathCost(m, greedy))
	}
}

func TestStatsCountExpansions(t *testing.T) {
	m := uniformMap{w: 8, h: 8, base: 1}
	_, st := SearchStats(m, Query{Start: grid.Coord{X: 0, Y: 0}, Goal: grid.Coord{X: 7, Y: 7}})
	if st.Expanded == 0 || st.Pushed < st.Expanded {
		t.Errorf("stats = %+v, want Expanded > 0 and Pushed >= Expanded", st)
	}
}
