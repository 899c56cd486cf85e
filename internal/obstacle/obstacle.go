// Package obstacle provides moving circular exclusion zones with
// reflective kinematics inside the grid bounds.
package obstacle

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/michaelbinary/advanced-pathfinding/internal/grid"
)

// ErrInvalid is returned for obstacles that fail validation.
var ErrInvalid = errors.New("invalid obstacle")

// DefaultBuffer is the clearance added to an obstacle's radius when testing
// whether it affects a position.
const DefaultBuffer = 1.0

// Obstacle is a moving disc.
type Obstacle struct {
	ID       string    `json:"id"`
	Position orb.Point `json:"position"`
	Velocity orb.Point `json:"velocity"`
	Radius   float64   `json:"radius"`
	Lifetime *float64  `json:"lifetime,omitempty"` // seconds; nil = forever
	Age      float64   `json:"age"`
}

// Expired reports whether the obstacle has outlived its lifetime.
// Expired obstacles stay in their Set but no longer affect positions.
func (o *Obstacle) Expired() bool {
	return o.Lifetime != nil && o.Age >= *o.Lifetime
}

// Affects reports whether pos lies within radius+buffer of the obstacle center.
func (o *Obstacle) Affects(pos orb.Point, buffer float64) bool {
	if o.Expired() {
		return false
	}
	r := o.Radius + buffer
	return planar.DistanceSquared(o.Position, pos) <= r*r
}

// advance integrates position over dt and reflects off [0, maxX] x [0, maxY].
func (o *Obstacle) advance(dt, maxX, maxY float64) {
	o.Age += dt
	x := o.Position[0] + o.Velocity[0]*dt
	y := o.Position[1] + o.Velocity[1]*dt

	if x < 0 || x > maxX {
		o.Velocity[0] = -o.Velocity[0]
		x = reflect(x, maxX)
	}
	if y < 0 || y > maxY {
		o.Velocity[1] = -o.Velocity[1]
		y = reflect(y, maxY)
	}
	o.Position = orb.Point{x, y}
}

// reflect mirrors v back into [0, hi], clamping if the overshoot exceeds the span.
func reflect(v, hi float64) float64 {
	if v < 0 {
		v = -v
	} else if v > hi {
		v = 2*hi - v
	}
	return math.Max(0, math.Min(hi, v))
}

func (o *Obstacle) validate() error {
	switch {
	case !(o.Radius > 0) || math.IsInf(o.Radius, 0):
		return fmt.Errorf("obstacle %s radius %v must be positive and finite: %w", o.ID, o.Radius, ErrInvalid)
	case !finite(o.Position) || !finite(o.Velocity):
		return fmt.Errorf("obstacle %s has non-finite kinematics: %w", o.ID, ErrInvalid)
	case o.Lifetime != nil && *o.Lifetime < 0:
		return fmt.Errorf("obstacle %s lifetime %v is negative: %w", o.ID, *o.Lifetime, ErrInvalid)
	}
	return nil
}

func finite(p orb.Point) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Set is the append-only collection of obstacles on one grid.
type Set struct {
	maxX      float64
	maxY      float64
	obstacles []*Obstacle
}

// NewSet creates an empty set for a width x height grid.
func NewSet(width, height int) *Set {
	return &Set{
		maxX: float64(width - 1),
		maxY: float64(height - 1),
	}
}

// Add validates o and appends it. An empty ID is replaced with a UUID.
// Positions outside the grid are rejected, never clamped.
func (s *Set) Add(o Obstacle) (string, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if err := o.validate(); err != nil {
		return "", err
	}
	if o.Position[0] < 0 || o.Position[0] > s.maxX || o.Position[1] < 0 || o.Position[1] > s.maxY {
		return "", fmt.Errorf("obstacle %s at %v outside [0,%g]x[0,%g]: %w: %w",
			o.ID, o.Position, s.maxX, s.maxY, ErrInvalid, grid.ErrOutOfBounds)
	}
	s.obstacles = append(s.obstacles, &o)
	return o.ID, nil
}

// Advance moves every obstacle by dt.
func (s *Set) Advance(dt float64) {
	for _, o := range s.obstacles {
		o.advance(dt, s.maxX, s.maxY)
	}
}

// AnyAffects reports whether any live obstacle affects pos.
func (s *Set) AnyAffects(pos orb.Point, buffer float64) bool {
	for _, o := range s.obstacles {
		if o.Affects(pos, buffer) {
			return true
		}
	}
	return false
}

// Len returns the number of obstacles, expired ones included.
func (s *Set) Len() int {
	return len(s.obstacles)
}

// Snapshot returns value copies of every obstacle in insertion order.
func (s *Set) Snapshot() []Obstacle {
	out := make([]Obstacle, len(s.obstacles))
	for i, o := range s.obstacles {
		out[i] = *o
		if o.Lifetime != nil {
			l := *o.Lifetime
			out[i].Lifetime = &l
		}
	}
	return out
}

// Zone is a frozen obstacle footprint for concurrent readers.
type Zone struct {
	Center orb.Point
	Reach  float64 // radius + buffer
}

// Zones returns the footprints of all live obstacles with buffer applied.
func (s *Set) Zones(buffer float64) []Zone {
	var zones []Zone
	for _, o := range s.obstacles {
		if o.Expired() {
			continue
		}
		zones = append(zones, Zone{Center: o.Position, Reach: o.Radius + buffer})
	}
	return zones
}

// Covers reports whether pos lies inside the zone.
func (z Zone) Covers(pos orb.Point) bool {
	return planar.DistanceSquared(z.Center, pos) <= z.Reach*z.Reach
}
