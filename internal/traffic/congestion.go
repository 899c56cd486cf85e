// Package traffic tracks per-cell congestion and advisory path reservations.
package traffic

import (
	"math"

	"github.com/michaelbinary/advanced-pathfinding/internal/grid"
)

// CostPerVisit is the traversal cost added per recorded visit.
const CostPerVisit = 0.2

// reservationWindow is the time resolution of path reservations.
const reservationWindow = 0.1

// Reservation is an agent's claim on a cell during one time window.
type Reservation struct {
	AgentID string
	Coord   grid.Coord
}

// Tracker counts agent visits per cell. Counters only grow until Reset.
type Tracker struct {
	visits   map[grid.Coord]int
	reserved map[int64][]Reservation
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		visits:   make(map[grid.Coord]int),
		reserved: make(map[int64][]Reservation),
	}
}

// RecordVisit increments the counter for c.
func (t *Tracker) RecordVisit(c grid.Coord) {
	t.visits[c]++
}

// Count returns the number of visits recorded at c.
func (t *Tracker) Count(c grid.Coord) int {
	return t.visits[c]
}

// CostAt returns the congestion cost contribution of c.
func (t *Tracker) CostAt(c grid.Coord) float64 {
	return Cost(t.visits[c])
}

// Cost converts a visit count into traversal cost.
func Cost(visits int) float64 {
	return float64(visits) * CostPerVisit
}

// Snapshot returns a copy of all non-zero counters.
func (t *Tracker) Snapshot() map[grid.Coord]int {
	out := make(map[grid.Coord]int, len(t.visits))
	for c, n := range t.visits {
		out[c] = n
	}
	return out
}

// Total returns the sum of all counters.
func (t *Tracker) Total() int {
	total := 0
	for _, n := range t.visits {
		total += n
	}
	return total
}

// Reset clears every counter and reservation.
func (t *Tracker) Reset() {
	clear(t.visits)
	clear(t.reserved)
}

// Dense returns the counters as a width x height matrix indexed [x][y],
// ignoring any coordinate outside those bounds.
func (t *Tracker) Dense(width, height int) [][]int {
	m := make([][]int, width)
	for x := range m {
		m[x] = make([]int, height)
	}
	for c, n := range t.visits {
		if c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height {
			m[c.X][c.Y] = n
		}
	}
	return m
}

// Reserve records that agentID expects to occupy path[i] at times[i].
// Extra entries in the longer slice are ignored. Reservations are advisory;
// the planner never consults them.
func (t *Tracker) Reserve(agentID string, path []grid.Coord, times []float64) {
	n := min(len(path), len(times))
	for i := 0; i < n; i++ {
		w := window(times[i])
		t.reserved[w] = append(t.reserved[w], Reservation{AgentID: agentID, Coord: path[i]})
	}
}

// Collides reports whether any reservation claims c in the window containing at.
func (t *Tracker) Collides(c grid.Coord, at float64) bool {
	for _, r := range t.reserved[window(at)] {
		if r.Coord == c {
			return true
		}
	}
	return false
}

func window(at float64) int64 {
	// Small epsilon so 0.3 and 0.30000000000000004 land in the same window.
	return int64(math.Floor(at/reservationWindow + 1e-9))
}
