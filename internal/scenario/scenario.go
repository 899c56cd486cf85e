// Package scenario loads simulation setups from YAML: grid size and seed,
// weather, fronts, agents, generated fleets and obstacles.
package scenario

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/michaelbinary/advanced-pathfinding/internal/agents"
	"github.com/michaelbinary/advanced-pathfinding/internal/engine"
	"github.com/michaelbinary/advanced-pathfinding/internal/entropy"
	"github.com/michaelbinary/advanced-pathfinding/internal/grid"
	"github.com/michaelbinary/advanced-pathfinding/internal/obstacle"
	"github.com/michaelbinary/advanced-pathfinding/internal/weather"
)

// ErrInvalid is returned for scenarios that fail validation.
var ErrInvalid = errors.New("invalid scenario")

// Defaults applied to omitted fields.
const (
	DefaultDT       = 0.1
	DefaultDuration = 30.0
	DefaultSpeed    = 1.0
)

// Scenario is one simulation setup.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	Seed        int64   `yaml:"seed"`
	Duration    float64 `yaml:"duration"`
	DT          float64 `yaml:"dt"`

	// Weather names a preset applied globally; empty leaves no weather.
	Weather string  `yaml:"weather"`
	Fronts  []Front `yaml:"fronts"`

	Agents    []AgentSpec    `yaml:"agents"`
	Fleets    []Fleet        `yaml:"fleets"`
	Obstacles []ObstacleSpec `yaml:"obstacles"`
}

// Front is a circular local weather region.
type Front struct {
	Center  grid.Coord `yaml:"center"`
	Weather string     `yaml:"weather"`
	Radius  float64    `yaml:"radius"`
}

// AgentSpec describes one agent. Its initial path is planned on Build.
type AgentSpec struct {
	ID          string             `yaml:"id"`
	Start       grid.Coord         `yaml:"start"`
	Goal        grid.Coord         `yaml:"goal"`
	Speed       float64            `yaml:"speed"`
	Constraints agents.Constraints `yaml:"constraints"`
}

// Fleet generates Count agents named Prefix_i. Each starts at one of Origins
// and heads to a goal within Spread cells of Target, with speed drawn
// uniformly from [SpeedMin, SpeedMax].
type Fleet struct {
	Prefix      string             `yaml:"prefix"`
	Count       int                `yaml:"count"`
	Origins     []grid.Coord       `yaml:"origins"`
	Target      grid.Coord         `yaml:"target"`
	Spread      int                `yaml:"spread"`
	SpeedMin    float64            `yaml:"speed_min"`
	SpeedMax    float64            `yaml:"speed_max"`
	Constraints agents.Constraints `yaml:"constraints"`
}

// ObstacleSpec describes one moving obstacle.
type ObstacleSpec struct {
	ID       string     `yaml:"id"`
	Position [2]float64 `yaml:"position"`
	Velocity [2]float64 `yaml:"velocity"`
	Radius   float64    `yaml:"radius"`
	Lifetime *float64   `yaml:"lifetime"`
}

// Load reads a scenario from a YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML scenario, filling defaults.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) applyDefaults() {
	if s.DT == 0 {
		s.DT = DefaultDT
	}
	if s.Duration == 0 {
		s.Duration = DefaultDuration
	}
	for i := range s.Agents {
		if s.Agents[i].Speed == 0 {
			s.Agents[i].Speed = DefaultSpeed
		}
		if s.Agents[i].Constraints.Priority == 0 {
			s.Agents[i].Constraints.Priority = 1
		}
	}
	for i := range s.Fleets {
		f := &s.Fleets[i]
		if f.SpeedMin == 0 && f.SpeedMax == 0 {
			f.SpeedMin, f.SpeedMax = DefaultSpeed, DefaultSpeed
		}
		if f.Constraints.Priority == 0 {
			f.Constraints.Priority = 1
		}
	}
}

// Validate checks everything Build cannot recover from.
func (s *Scenario) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("scenario %q: %s: %w", s.Name, fmt.Sprintf(format, args...), ErrInvalid)
	}
	in := func(c grid.Coord) bool {
		return c.X >= 0 && c.X < s.Width && c.Y >= 0 && c.Y < s.Height
	}

	if s.Width <= 0 || s.Height <= 0 {
		return invalid("grid %dx%d must be positive", s.Width, s.Height)
	}
	if !(s.DT > 0) || !(s.Duration > 0) {
		return invalid("dt %v and duration %v must be positive", s.DT, s.Duration)
	}
	if s.Weather != "" {
		if _, err := weather.Preset(weather.Kind(s.Weather)); err != nil {
			return invalid("%v", err)
		}
	}
	for i, f := range s.Fronts {
		if _, err := weather.Preset(weather.Kind(f.Weather)); err != nil {
			return invalid("front %d: %v", i, err)
		}
		if !in(f.Center) || !(f.Radius > 0) {
			return invalid("front %d at %s radius %v", i, f.Center, f.Radius)
		}
	}

	seen := make(map[string]bool)
	for _, a := range s.Agents {
		if a.ID == "" || seen[a.ID] {
			return invalid("agent id %q empty or repeated", a.ID)
		}
		seen[a.ID] = true
		if !in(a.Start) || !in(a.Goal) {
			return invalid("agent %s endpoints %s -> %s outside grid", a.ID, a.Start, a.Goal)
		}
		if !(a.Speed > 0) {
			return invalid("agent %s speed %v", a.ID, a.Speed)
		}
	}
	for _, f := range s.Fleets {
		if f.Prefix == "" || f.Count <= 0 || len(f.Origins) == 0 {
			return invalid("fleet %q needs a prefix, a positive count and origins", f.Prefix)
		}
		for _, o := range f.Origins {
			if !in(o) {
				return invalid("fleet %s origin %s outside grid", f.Prefix, o)
			}
		}
		if !in(f.Target) || f.Spread < 0 {
			return invalid("fleet %s target %s spread %d", f.Prefix, f.Target, f.Spread)
		}
		if !(f.SpeedMin > 0) || f.SpeedMax < f.SpeedMin {
			return invalid("fleet %s speed range [%v, %v]", f.Prefix, f.SpeedMin, f.SpeedMax)
		}
	}
	for i, o := range s.Obstacles {
		if !(o.Radius > 0) || math.IsInf(o.Radius, 0) {
			return invalid("obstacle %d radius %v", i, o.Radius)
		}
	}
	return nil
}

// Steps is the number of ticks the scenario runs.
func (s *Scenario) Steps() int {
	return engine.Steps(s.Duration, s.DT)
}

// Build creates a planner and populates it. Agents get an initial path from
// FindPath; an agent with no path is registered with an empty one.
func (s *Scenario) Build(cfg engine.Config) (*engine.Planner, error) {
	gen := grid.DefaultGenConfig(s.Width, s.Height)
	gen.Seed = s.Seed
	p, err := engine.NewPlannerWithConfig(gen, cfg)
	if err != nil {
		return nil, err
	}

	if s.Weather != "" {
		c, _ := weather.Preset(weather.Kind(s.Weather))
		p.Weather().SetGlobal(c)
	}
	for i, f := range s.Fronts {
		c, _ := weather.Preset(weather.Kind(f.Weather))
		if err := p.Weather().CreateFront(f.Center, c, f.Radius); err != nil {
			return nil, fmt.Errorf("front %d: %w", i, err)
		}
	}

	for _, o := range s.Obstacles {
		_, err := p.AddObstacle(obstacle.Obstacle{
			ID:       o.ID,
			Position: orb.Point(o.Position),
			Velocity: orb.Point(o.Velocity),
			Radius:   o.Radius,
			Lifetime: o.Lifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("obstacle %q: %w", o.ID, err)
		}
	}

	specs := append([]AgentSpec(nil), s.Agents...)
	specs = append(specs, s.expandFleets(entropy.New(p.Seed()))...)

	unplanned := 0
	for _, spec := range specs {
		a := agents.New(spec.ID, spec.Start, spec.Goal, spec.Speed, spec.Constraints)
		path, err := p.FindPath(a.Start, a.Goal, a.Constraints)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", a.ID, err)
		}
		if path == nil {
			slog.Warn("no initial path", "agent", a.ID, "start", a.Start, "goal", a.Goal)
			unplanned++
		}
		a.Path = path
		if err := p.AddAgent(*a); err != nil {
			return nil, err
		}
	}

	slog.Info("scenario built",
		"name", s.Name,
		"grid", p.Grid().String(),
		"agents", len(specs),
		"unplanned", unplanned,
		"obstacles", len(s.Obstacles),
	)
	return p, nil
}

// expandFleets draws fleet members from the scenario stream so a seed
// always yields the same vehicles.
func (s *Scenario) expandFleets(src *entropy.Source) []AgentSpec {
	rng := src.Stream(entropy.StreamScenario)
	var out []AgentSpec
	for _, f := range s.Fleets {
		for i := 0; i < f.Count; i++ {
			start := f.Origins[rng.Intn(len(f.Origins))]
			goal := grid.Coord{
				X: clampInt(f.Target.X+rng.Intn(2*f.Spread+1)-f.Spread, 0, s.Width-1),
				Y: clampInt(f.Target.Y+rng.Intn(2*f.Spread+1)-f.Spread, 0, s.Height-1),
			}
			out = append(out, AgentSpec{
				ID:          fmt.Sprintf("%s_%d", f.Prefix, i),
				Start:       start,
				Goal:        goal,
				Speed:       f.SpeedMin + rng.Float64()*(f.SpeedMax-f.SpeedMin),
				Constraints: f.Constraints,
			})
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
