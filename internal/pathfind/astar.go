// Package pathfind provides single-query A* search over an 8-connected grid.
package pathfind

import (
	"container/heap"
	"math"
	"slices"

	"github.com/michaelbinary/advanced-pathfinding/internal/grid"
)

// DiagonalFactor scales the cost of diagonal moves.
const DiagonalFactor = math.Sqrt2

// CostMap supplies per-cell entry costs. Implementations must be safe for
// concurrent readers if searches run in parallel.
type CostMap interface {
	InBounds(c grid.Coord) bool
	Cost(c grid.Coord) float64
}

// Query describes one search.
type Query struct {
	Start grid.Coord
	Goal  grid.Coord

	// MaxCost prunes any single edge whose cost exceeds it. It caps each
	// step, not the path total. Non-positive or +Inf means unconstrained.
	MaxCost float64

	// HeuristicScale multiplies the Euclidean estimate. Zero means 1.
	// Values at or below grid.MinBaseCost keep the heuristic admissible.
	HeuristicScale float64

	// Blocked, if set, marks cells the search may not enter. The start
	// cell is never tested.
	Blocked func(grid.Coord) bool
}

// Stats reports search effort.
type Stats struct {
	Expanded int
	Pushed   int
}

// Search runs A* and returns the path from Start to Goal inclusive, or nil
// when the goal is unreachable under the query's constraints. Start and Goal
// must be in bounds; callers validate at their boundary.
func Search(cm CostMap, q Query) []grid.Coord {
	path, _ := SearchStats(cm, q)
	return path
}

// SearchStats is Search with expansion counters.
func SearchStats(cm CostMap, q Query) ([]grid.Coord, Stats) {
	var st Stats
	if !cm.InBounds(q.Start) || !cm.InBounds(q.Goal) {
		return nil, st
	}

	maxCost := q.MaxCost
	if maxCost <= 0 {
		maxCost = math.Inf(1)
	}
	hScale := q.HeuristicScale
	if hScale == 0 {
		hScale = 1
	}
	h := func(c grid.Coord) float64 {
		return grid.Euclidean(c, q.Goal) * hScale
	}

	cameFrom := make(map[grid.Coord]grid.Coord)
	gScore := map[grid.Coord]float64{q.Start: 0}

	open := &frontier{}
	var seq uint64
	heap.Push(open, &node{coord: q.Start, g: 0, f: h(q.Start), seq: seq})
	st.Pushed++

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if cur.g > gScore[cur.coord] {
			continue // stale entry
		}
		st.Expanded++

		if cur.coord == q.Goal {
			return reconstruct(cameFrom, q.Start, q.Goal), st
		}

		for _, dir := range grid.NeighborDirections {
			next := grid.Coord{X: cur.coord.X + dir.X, Y: cur.coord.Y + dir.Y}
			if !cm.InBounds(next) {
				continue
			}
			if q.Blocked != nil && q.Blocked(next) {
				continue
			}

			move := cm.Cost(next)
			if dir.X != 0 && dir.Y != 0 {
				move *= DiagonalFactor
			}
			if move > maxCost {
				continue
			}

			tentative := cur.g + move
			if prev, seen := gScore[next]; seen && tentative >= prev {
				continue
			}
			cameFrom[next] = cur.coord
			gScore[next] = tentative
			seq++
			heap.Push(open, &node{coord: next, g: tentative, f: tentative + h(next), seq: seq})
			st.Pushed++
		}
	}

	return nil, st
}

func reconstruct(cameFrom map[grid.Coord]grid.Coord, start, goal grid.Coord) []grid.Coord {
	path := []grid.Coord{goal}
	for cur := goal; cur != start; {
		cur = cameFrom[cur]
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path
}

// ---------- frontier ----------

type node struct {
	coord grid.Coord
	g     float64
	f     float64
	seq   uint64 // discovery order breaks f ties
}

type frontier []*node

func (pq frontier) Len() int { return len(pq) }
func (pq frontier) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	return pq[i].seq < pq[j].seq
}
func (pq frontier) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *frontier) Push(x any)   { *pq = append(*pq, x.(*node)) }
func (pq *frontier) Pop() any {
	old := *pq
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return it
}
