// Package analysis builds the post-run records: run configuration, per-agent
// statistics and the congestion matrix, and writes them as JSON.
package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/michaelbinary/advanced-pathfinding/internal/agents"
	"github.com/michaelbinary/advanced-pathfinding/internal/engine"
)

// DirTimeFormat names analysis directories: analysis_20060102_150405.
const DirTimeFormat = "20060102_150405"

// ConfigRecord is written to config.json.
type ConfigRecord struct {
	GridSize       [2]int  `json:"grid_size"`
	NumAgents      int     `json:"num_agents"`
	SimulationTime float64 `json:"simulation_time"`
	Seed           int64   `json:"seed"`
	Ticks          uint64  `json:"ticks"`
}

// AgentStats is one entry of agent_stats.json.
type AgentStats struct {
	ID                string             `json:"id"`
	Status            agents.Status      `json:"status"`
	DistanceTraveled  float64            `json:"distance_traveled"`
	RemainingDistance float64            `json:"remaining_distance"`
	OptimalDistance   float64            `json:"optimal_distance"`
	PathEfficiency    float64            `json:"path_efficiency"`
	AverageSpeed      float64            `json:"average_speed"`
	Constraints       agents.Constraints `json:"constraints"`
}

// StatsFor summarizes one agent. Efficiency is optimal over traveled
// distance and 0 for an agent that never moved.
func StatsFor(a agents.Agent) AgentStats {
	m := a.Metrics()
	s := AgentStats{
		ID:                a.ID,
		Status:            a.Status,
		DistanceTraveled:  a.Traveled,
		RemainingDistance: m.Distance,
		OptimalDistance:   a.OptimalDistance(),
		Constraints:       a.Constraints,
	}
	if a.Traveled > 0 {
		s.PathEfficiency = s.OptimalDistance / a.Traveled
	}
	if a.ActiveTime > 0 {
		s.AverageSpeed = a.Traveled / a.ActiveTime
	}
	return s
}

// Collect returns stats for every agent in the snapshot, sorted by id.
func Collect(s engine.Snapshot) []AgentStats {
	out := make([]AgentStats, 0, len(s.Agents))
	for _, a := range s.Agents {
		out = append(out, StatsFor(a))
	}
	slices.SortFunc(out, func(a, b AgentStats) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Report is everything saved for one run.
type Report struct {
	Config     ConfigRecord
	Agents     []AgentStats
	Congestion [][]int // [x][y] visit counts
}

// NewReport captures the planner's current state.
func NewReport(p *engine.Planner) Report {
	s := p.Snapshot()
	w, h := p.Grid().Width(), p.Grid().Height()
	return Report{
		Config: ConfigRecord{
			GridSize:       [2]int{w, h},
			NumAgents:      len(s.Agents),
			SimulationTime: p.Time(),
			Seed:           p.Seed(),
			Ticks:          p.Ticks(),
		},
		Agents:     Collect(s),
		Congestion: p.Traffic().Dense(w, h),
	}
}

// MeanEfficiency averages PathEfficiency over agents that moved.
func (r Report) MeanEfficiency() float64 {
	total, n := 0.0, 0
	for _, a := range r.Agents {
		if a.DistanceTraveled > 0 {
			total += a.PathEfficiency
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// Save writes config.json, agent_stats.json and congestion.json into a new
// analysis_<timestamp> directory under outputDir and returns its path.
func (r Report) Save(outputDir string, now time.Time) (string, error) {
	dir := filepath.Join(outputDir, "analysis_"+now.Format(DirTimeFormat))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create analysis dir: %w", err)
	}

	files := []struct {
		name string
		v    any
	}{
		{"config.json", r.Config},
		{"agent_stats.json", r.Agents},
		{"congestion.json", r.Congestion},
	}
	for _, f := range files {
		if err := writeJSON(filepath.Join(dir, f.name), f.v); err != nil {
			return "", err
		}
	}
	return dir, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
