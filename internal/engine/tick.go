package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/michaelbinary/advanced-pathfinding/internal/agents"
	"github.com/michaelbinary/advanced-pathfinding/internal/cost"
)

// Tick advances the simulation by dt:
//
//  1. weather and obstacles advance;
//  2. every active agent whose next waypoint is obstructed gets a replan,
//     launched concurrently against the cost model as of this point;
//  3. active agents move along the paths they held at the start of the tick;
//  4. each of those agents records a congestion visit at its rounded cell;
//  5. replans are joined and found paths replace the stale ones, taking
//     effect from the next tick;
//  6. a snapshot is returned.
//
// ctx is checked before the tick starts; an in-flight tick always completes.
func (p *Planner) Tick(ctx context.Context, dt float64) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return Snapshot{}, fmt.Errorf("tick dt %v must be positive and finite", dt)
	}

	p.time += dt
	p.weather.Advance(dt)
	p.obstacles.Advance(dt)

	weatherState := p.weather.State()
	view := cost.NewView(p.grid, weatherState, p.traffic.Snapshot())
	zones := p.obstacles.Zones(p.cfg.ObstacleBuffer)

	var jobs []replanJob
	for _, id := range p.order {
		a := p.agents[id]
		if a.Status != agents.StatusActive || !p.obstructed(a) {
			continue
		}
		jobs = append(jobs, replanJob{agentID: id, query: p.replanQuery(a, zones)})
	}
	batch := startReplans(view, jobs, p.cfg.MaxConcurrentReplans)

	lookup := weatherState.Lookup()
	moved := make([]*agents.Agent, 0, len(p.order))
	for _, id := range p.order {
		a := p.agents[id]
		if a.Status != agents.StatusActive {
			continue
		}
		factor := 1.0
		if p.cfg.ApplyWeatherToSpeed {
			if w, ok := lookup.At(a.Cell()); ok {
				factor = w.MovementMultiplier()
			}
		}
		a.Advance(dt, factor, p.cfg.WaypointEpsilon)
		moved = append(moved, a)
	}

	for _, a := range moved {
		p.traffic.RecordVisit(p.clampCell(a.Cell()))
	}

	results, err := batch.wait()
	if err != nil {
		return Snapshot{}, fmt.Errorf("replan: %w", err)
	}
	applied := 0
	for _, r := range results {
		a := p.agents[r.agentID]
		if r.path == nil {
			slog.Debug("replan found no path, keeping stale path",
				"agent", r.agentID, "time", p.time)
			continue
		}
		if a.Status == agents.StatusFinished {
			continue
		}
		a.Path = agents.Path(r.path)
		applied++
	}

	p.ticks++
	if len(jobs) > 0 {
		slog.Debug("tick replans",
			"tick", p.ticks,
			"time", fmt.Sprintf("%.2f", p.time),
			"scheduled", len(jobs),
			"applied", applied,
		)
	}
	return p.Snapshot(), nil
}

// Steps returns the number of ticks Simulate runs: duration/dt, truncated.
func Steps(duration, dt float64) int {
	if !(dt > 0) || !(duration > 0) {
		return 0
	}
	return int(duration / dt)
}

// Simulate runs Steps(duration, dt) ticks and returns one snapshot per tick
// in order.
func (p *Planner) Simulate(ctx context.Context, duration, dt float64) ([]Snapshot, error) {
	if !(dt > 0) {
		return nil, fmt.Errorf("simulate dt %v must be positive", dt)
	}
	steps := Steps(duration, dt)
	frames := make([]Snapshot, 0, steps)
	for i := 0; i < steps; i++ {
		s, err := p.Tick(ctx, dt)
		if err != nil {
			return frames, fmt.Errorf("tick %d: %w", i+1, err)
		}
		frames = append(frames, s)
	}
	return frames, nil
}

// Engine drives a Planner in wall-clock time with optional pacing.
type Engine struct {
	Planner  *Planner
	DT       float64       // simulated seconds per tick
	Interval time.Duration // wall-clock delay between ticks; 0 = as fast as possible
	Speed    float64       // pacing multiplier: 2.0 halves the delay

	// OnTick receives every snapshot in order.
	OnTick func(Snapshot)
}

// NewEngine creates an unpaced engine for p.
func NewEngine(p *Planner, dt float64) *Engine {
	return &Engine{
		Planner: p,
		DT:      dt,
		Speed:   1.0,
	}
}

// Run executes steps ticks, sleeping between them according to Interval and
// Speed. It stops early when ctx is done. The pacing delay is the only
// point where Run blocks outside the replan join.
func (e *Engine) Run(ctx context.Context, steps int) error {
	slog.Info("simulation engine started", "steps", steps, "dt", e.DT, "interval", e.Interval)

	for i := 0; i < steps; i++ {
		start := time.Now()

		s, err := e.Planner.Tick(ctx, e.DT)
		if err != nil {
			return err
		}
		if e.OnTick != nil {
			e.OnTick(s)
		}
		if s.Done() {
			slog.Info("all agents finished", "tick", i+1, "time", s.Time)
			break
		}

		if e.Interval > 0 && e.Speed > 0 {
			target := time.Duration(float64(e.Interval) / e.Speed)
			if elapsed := time.Since(start); elapsed < target {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(target - elapsed):
				}
			}
		}
	}

	slog.Info("simulation engine stopped", "ticks", e.Planner.Ticks(), "time", e.Planner.Time())
	return nil
}
