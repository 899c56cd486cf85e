// Package engine provides the planning orchestrator: it owns the grid,
// weather, obstacles, congestion and agents, answers path queries, and
// drives the per-tick simulation with concurrent replanning.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/michaelbinary/advanced-pathfinding/internal/agents"
	"github.com/michaelbinary/advanced-pathfinding/internal/cost"
	"github.com/michaelbinary/advanced-pathfinding/internal/entropy"
	"github.com/michaelbinary/advanced-pathfinding/internal/grid"
	"github.com/michaelbinary/advanced-pathfinding/internal/obstacle"
	"github.com/michaelbinary/advanced-pathfinding/internal/pathfind"
	"github.com/michaelbinary/advanced-pathfinding/internal/traffic"
	"github.com/michaelbinary/advanced-pathfinding/internal/weather"
)

var (
	ErrDuplicateAgent = errors.New("duplicate agent id")
	ErrInvalidAgent   = errors.New("invalid agent")
	ErrUnknownAgent   = errors.New("unknown agent")
)

// Planner is the orchestrator. It is not safe for concurrent use; the only
// concurrency is the replanning fan-out inside Tick.
type Planner struct {
	cfg  Config
	seed int64

	grid      *grid.Grid
	weather   *weather.Field
	obstacles *obstacle.Set
	traffic   *traffic.Tracker

	agents map[string]*agents.Agent
	order  []string // insertion order, for deterministic ticks

	time  float64
	ticks uint64
}

// NewPlanner generates a width x height grid with the default layout.
// A zero seed draws one from crypto/rand.
func NewPlanner(width, height int, seed int64) (*Planner, error) {
	gen := grid.DefaultGenConfig(width, height)
	gen.Seed = seed
	return NewPlannerWithConfig(gen, DefaultConfig())
}

// NewPlannerWithConfig builds a planner from explicit generation and
// orchestrator settings.
func NewPlannerWithConfig(gen grid.GenConfig, cfg Config) (*Planner, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if gen.Seed == 0 {
		gen.Seed = entropy.CryptoSeed()
	}
	g, err := grid.Generate(gen)
	if err != nil {
		return nil, fmt.Errorf("generate grid: %w", err)
	}

	src := entropy.New(gen.Seed)
	p := &Planner{
		cfg:       cfg,
		seed:      gen.Seed,
		grid:      g,
		weather:   weather.NewField(g.Width(), g.Height(), src.Stream(entropy.StreamWeather)),
		obstacles: obstacle.NewSet(g.Width(), g.Height()),
		traffic:   traffic.NewTracker(),
		agents:    make(map[string]*agents.Agent),
	}
	slog.Debug("planner created", "grid", g.String(), "seed", gen.Seed)
	return p, nil
}

// Seed returns the effective generation seed.
func (p *Planner) Seed() int64 { return p.seed }

// Grid returns the cost grid.
func (p *Planner) Grid() *grid.Grid { return p.grid }

// Weather returns the weather field. Mutate it only between ticks.
func (p *Planner) Weather() *weather.Field { return p.weather }

// Traffic returns the congestion tracker.
func (p *Planner) Traffic() *traffic.Tracker { return p.traffic }

// Time returns the simulated time elapsed.
func (p *Planner) Time() float64 { return p.time }

// Ticks returns the number of completed ticks.
func (p *Planner) Ticks() uint64 { return p.ticks }

// Config returns the orchestrator settings.
func (p *Planner) Config() Config { return p.cfg }

// AddAgent validates a and registers a copy. An empty status becomes active.
func (p *Planner) AddAgent(a agents.Agent) error {
	if a.ID == "" {
		return fmt.Errorf("agent without id: %w", ErrInvalidAgent)
	}
	if _, exists := p.agents[a.ID]; exists {
		return fmt.Errorf("agent %s: %w", a.ID, ErrDuplicateAgent)
	}
	if a.Status == "" {
		a.Status = agents.StatusActive
	}
	if err := p.validateAgent(&a); err != nil {
		return err
	}

	a.Path = a.Path.Clone()
	p.agents[a.ID] = &a
	p.order = append(p.order, a.ID)
	return nil
}

func (p *Planner) validateAgent(a *agents.Agent) error {
	if err := p.grid.Check(a.Start); err != nil {
		return fmt.Errorf("agent %s start: %w", a.ID, err)
	}
	if err := p.grid.Check(a.Goal); err != nil {
		return fmt.Errorf("agent %s goal: %w", a.ID, err)
	}
	if !(a.Speed > 0) || math.IsInf(a.Speed, 0) {
		return fmt.Errorf("agent %s speed %v must be positive and finite: %w", a.ID, a.Speed, ErrInvalidAgent)
	}
	if !p.grid.InBoundsPoint(a.Position[0], a.Position[1]) {
		return fmt.Errorf("agent %s position %v: %w", a.ID, a.Position, grid.ErrOutOfBounds)
	}
	if a.Constraints.MaxCost < 0 || math.IsNaN(a.Constraints.MaxCost) {
		return fmt.Errorf("agent %s max cost %v: %w", a.ID, a.Constraints.MaxCost, ErrInvalidAgent)
	}
	switch a.Status {
	case agents.StatusActive, agents.StatusWaiting, agents.StatusFinished:
	default:
		return fmt.Errorf("agent %s status %q: %w", a.ID, a.Status, ErrInvalidAgent)
	}
	return p.validatePath(a.ID, a.Path)
}

func (p *Planner) validatePath(id string, path agents.Path) error {
	for i, c := range path {
		if err := p.grid.Check(c); err != nil {
			return fmt.Errorf("agent %s waypoint %d: %w", id, i, err)
		}
		if i > 0 && !grid.Adjacent(path[i-1], c) {
			return fmt.Errorf("agent %s waypoints %s -> %s are not adjacent: %w", id, path[i-1], c, ErrInvalidAgent)
		}
	}
	return nil
}

// AddObstacle validates and registers an obstacle, returning its id.
func (p *Planner) AddObstacle(o obstacle.Obstacle) (string, error) {
	return p.obstacles.Add(o)
}

// Obstacles returns copies of every obstacle.
func (p *Planner) Obstacles() []obstacle.Obstacle {
	return p.obstacles.Snapshot()
}

// Agent returns a copy of the agent with the given id.
func (p *Planner) Agent(id string) (agents.Agent, bool) {
	a, ok := p.agents[id]
	if !ok {
		return agents.Agent{}, false
	}
	return a.Clone(), true
}

// AgentIDs returns agent ids in registration order.
func (p *Planner) AgentIDs() []string {
	return append([]string(nil), p.order...)
}

// AssignPath replaces an agent's path after validating it.
func (p *Planner) AssignPath(id string, path []grid.Coord) error {
	a, ok := p.agents[id]
	if !ok {
		return fmt.Errorf("agent %s: %w", id, ErrUnknownAgent)
	}
	if err := p.validatePath(id, path); err != nil {
		return err
	}
	a.Path = agents.Path(path).Clone()
	return nil
}

// SetAgentStatus lets an external driver mark an agent waiting or active.
// A finished agent never changes status.
func (p *Planner) SetAgentStatus(id string, s agents.Status) error {
	a, ok := p.agents[id]
	if !ok {
		return fmt.Errorf("agent %s: %w", id, ErrUnknownAgent)
	}
	return a.SetStatus(s)
}

// SetRisk sets the risk factor of one cell.
func (p *Planner) SetRisk(c grid.Coord, risk float64) error {
	return p.grid.SetRisk(c, risk)
}

// FindPath returns a path from start to goal under c, or nil when none
// exists. Out-of-bounds endpoints are rejected with grid.ErrOutOfBounds.
// Costs reflect the current weather and congestion; obstacles are ignored.
func (p *Planner) FindPath(start, goal grid.Coord, c agents.Constraints) ([]grid.Coord, error) {
	if err := p.grid.Check(start); err != nil {
		return nil, fmt.Errorf("find path start: %w", err)
	}
	if err := p.grid.Check(goal); err != nil {
		return nil, fmt.Errorf("find path goal: %w", err)
	}
	return pathfind.Search(p.costView(), p.query(start, goal, c)), nil
}

// costView freezes the current cost model.
func (p *Planner) costView() *cost.View {
	return cost.NewView(p.grid, p.weather.State(), p.traffic.Snapshot())
}

func (p *Planner) query(start, goal grid.Coord, c agents.Constraints) pathfind.Query {
	q := pathfind.Query{
		Start:   start,
		Goal:    goal,
		MaxCost: c.EffectiveMaxCost(),
	}
	if p.cfg.AdmissibleHeuristic {
		q.HeuristicScale = grid.MinBaseCost
	}
	return q
}
