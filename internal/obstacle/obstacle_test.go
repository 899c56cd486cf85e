package obstacle

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"

	"github.com/michaelbinary/advanced-pathfinding/internal/grid"
)

func TestAffects(t *testing.T) {
	o := Obstacle{ID: "o", Position: orb.Point{5, 5}, Radius: 1}
	tests := []struct {
		pos    orb.Point
		buffer float64
		want   bool
	}{
		{orb.Point{5, 5}, 0, true},
		{orb.Point{6, 5}, 0, true},
		{orb.Point{7, 5}, 0, false},
		{orb.Point{7, 5}, 1, true},
		{orb.Point{7, 7}, 1, false},
	}
	for _, tt := range tests {
		if got := o.Affects(tt.pos, tt.buffer); got != tt.want {
			t.Errorf("Affects(%v, %v) = %v, want %v", tt.pos, tt.buffer, got, tt.want)
		}
	}
}

func TestAdvanceReflectsAtGridBounds(t *testing.T) {
	s := NewSet(10, 10)
	if _, err := s.Add(Obstacle{ID: "a", Position: orb.Point{8.9, 0.05}, Velocity: orb.Point{2, -1}, Radius: 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	s.Advance(1)

	o := s.Snapshot()[0]
	if o.Velocity[0] != -2 {
		t.Errorf("vx = %v, want -2", o.Velocity[0])
	}
	if o.Velocity[1] != 1 {
		t.Errorf("vy = %v, want 1", o.Velocity[1])
	}
	if o.Position[0] < 0 || o.Position[0] > 9 || o.Position[1] < 0 || o.Position[1] > 9 {
		t.Errorf("position %v escaped the grid", o.Position)
	}
}

func TestObstaclesStayInsideLargeGrid(t *testing.T) {
	s := NewSet(200, 120)
	_, _ = s.Add(Obstacle{ID: "fast", Position: orb.Point{100, 60}, Velocity: orb.Point{37, -23}, Radius: 2})
	for i := 0; i < 1000; i++ {
		s.Advance(0.1)
		o := s.Snapshot()[0]
		if o.Position[0] < 0 || o.Position[0] > 199 || o.Position[1] < 0 || o.Position[1] > 119 {
			t.Fatalf("step %d: position %v escaped the grid", i, o.Position)
		}
	}
}

func TestAddValidation(t *testing.T) {
	s := NewSet(10, 10)
	neg := -1.0
	bad := []Obstacle{
		{ID: "r0", Position: orb.Point{1, 1}, Radius: 0},
		{ID: "out", Position: orb.Point{10, 1}, Radius: 1},
		{ID: "neg", Position: orb.Point{-0.5, 1}, Radius: 1},
		{ID: "life", Position: orb.Point{1, 1}, Radius: 1, Lifetime: &neg},
	}
	for _, o := range bad {
		_, err := s.Add(o)
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("Add(%s) = %v, want ErrInvalid", o.ID, err)
		}
		outside := o.ID == "out" || o.ID == "neg"
		if got := errors.Is(err, grid.ErrOutOfBounds); got != outside {
			t.Errorf("Add(%s) wraps ErrOutOfBounds = %v, want %v", o.ID, got, outside)
		}
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after rejected adds, want 0", s.Len())
	}

	id, err := s.Add(Obstacle{Position: orb.Point{1, 1}, Radius: 1})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if id == "" {
		t.Error("generated ID is empty")
	}
}

func TestLifetimeExpiry(t *testing.T) {
	s := NewSet(10, 10)
	life := 0.25
	_, _ = s.Add(Obstacle{ID: "brief", Position: orb.Point{5, 5}, Radius: 1, Lifetime: &life})

	if !s.AnyAffects(orb.Point{5, 5}, 0) {
		t.Fatal("fresh obstacle does not affect its center")
	}
	for i := 0; i < 3; i++ {
		s.Advance(0.1)
	}
	if s.AnyAffects(orb.Point{5, 5}, 0) {
		t.Error("expired obstacle still affects positions")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want expired obstacle retained", s.Len())
	}
	if len(s.Zones(1)) != 0 {
		t.Error("expired obstacle still has a zone")
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	s := NewSet(10, 10)
	_, _ = s.Add(Obstacle{ID: "a", Position: orb.Point{1, 1}, Velocity: orb.Point{1, 0}, Radius: 1})
	snap := s.Snapshot()
	s.Advance(1)
	if snap[0].Position != (orb.Point{1, 1}) {
		t.Errorf("snapshot position changed to %v", snap[0].Position)
	}
}
