package engine

import (
	"fmt"
	"math"

	"github.com/michaelbinary/advanced-pathfinding/internal/agents"
	"github.com/michaelbinary/advanced-pathfinding/internal/obstacle"
)

// Config holds orchestrator tuning.
type Config struct {
	ObstacleBuffer  float64 // clearance added to obstacle radius for obstruction checks
	WaypointEpsilon float64 // distance at which a waypoint counts as reached

	// MaxConcurrentReplans bounds in-flight searches per tick. 0 = unbounded.
	MaxConcurrentReplans int

	// AdmissibleHeuristic scales the Euclidean heuristic by the cheapest
	// terrain cost so searches return least-cost paths. Off by default.
	AdmissibleHeuristic bool

	// ApplyWeatherToSpeed scales agent speed by the weather movement
	// multiplier. Off by default: agents move speed*dt per tick.
	ApplyWeatherToSpeed bool

	// AvoidObstaclesOnReplan makes replans route around cells covered by a
	// live obstacle (plus buffer) at the start of the tick.
	AvoidObstaclesOnReplan bool
}

// DefaultConfig returns the standard orchestrator settings.
func DefaultConfig() Config {
	return Config{
		ObstacleBuffer:         obstacle.DefaultBuffer,
		WaypointEpsilon:        agents.DefaultWaypointEpsilon,
		MaxConcurrentReplans:   0,
		AdmissibleHeuristic:    false,
		ApplyWeatherToSpeed:    false,
		AvoidObstaclesOnReplan: true,
	}
}

func (c Config) validate() error {
	switch {
	case c.ObstacleBuffer < 0 || math.IsNaN(c.ObstacleBuffer) || math.IsInf(c.ObstacleBuffer, 0):
		return fmt.Errorf("obstacle buffer %v must be finite and non-negative", c.ObstacleBuffer)
	case !(c.WaypointEpsilon > 0):
		return fmt.Errorf("waypoint epsilon %v must be positive", c.WaypointEpsilon)
	case c.MaxConcurrentReplans < 0:
		return fmt.Errorf("max concurrent replans %d must not be negative", c.MaxConcurrentReplans)
	}
	return nil
}
