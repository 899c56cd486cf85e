// Package persistence provides SQLite storage for simulation runs, their
// per-agent statistics and congestion, and saved weather state.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/michaelbinary/advanced-pathfinding/internal/agents"
	"github.com/michaelbinary/advanced-pathfinding/internal/analysis"
	"github.com/michaelbinary/advanced-pathfinding/internal/grid"
	"github.com/michaelbinary/advanced-pathfinding/internal/weather"
)

const (
	// metaWeatherState holds the saved weather State as JSON.
	metaWeatherState = "weather_state"

	// timeFormat is fixed width so created_at sorts lexically.
	timeFormat = "2006-01-02T15:04:05.000000000Z"
)

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		scenario TEXT NOT NULL,
		seed INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		ticks INTEGER NOT NULL,
		sim_time REAL NOT NULL,
		num_agents INTEGER NOT NULL,
		finished INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agent_stats (
		run_id TEXT NOT NULL REFERENCES runs(id),
		agent_id TEXT NOT NULL,
		status TEXT NOT NULL,
		distance_traveled REAL NOT NULL,
		remaining_distance REAL NOT NULL,
		optimal_distance REAL NOT NULL,
		path_efficiency REAL NOT NULL,
		average_speed REAL NOT NULL,
		max_cost REAL NOT NULL,
		priority INTEGER NOT NULL,
		PRIMARY KEY (run_id, agent_id)
	);

	CREATE TABLE IF NOT EXISTS congestion (
		run_id TEXT NOT NULL REFERENCES runs(id),
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		visits INTEGER NOT NULL,
		PRIMARY KEY (run_id, x, y)
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Run is one stored simulation run.
type Run struct {
	ID        string    `db:"id"`
	Scenario  string    `db:"scenario"`
	Seed      int64     `db:"seed"`
	Width     int       `db:"width"`
	Height    int       `db:"height"`
	Ticks     uint64    `db:"ticks"`
	SimTime   float64   `db:"sim_time"`
	NumAgents int       `db:"num_agents"`
	Finished  int       `db:"finished"`
	CreatedAt time.Time `db:"-"`
}

type runRow struct {
	Run
	CreatedAt string `db:"created_at"`
}

type statsRow struct {
	AgentID           string  `db:"agent_id"`
	Status            string  `db:"status"`
	DistanceTraveled  float64 `db:"distance_traveled"`
	RemainingDistance float64 `db:"remaining_distance"`
	OptimalDistance   float64 `db:"optimal_distance"`
	PathEfficiency    float64 `db:"path_efficiency"`
	AverageSpeed      float64 `db:"average_speed"`
	MaxCost           float64 `db:"max_cost"`
	Priority          int     `db:"priority"`
}

// SaveRun stores a report under a new run id and returns the id.
func (db *DB) SaveRun(scenario string, r analysis.Report, now time.Time) (string, error) {
	id := uuid.NewString()

	finished := 0
	for _, a := range r.Agents {
		if a.Status == agents.StatusFinished {
			finished++
		}
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(id, scenario, seed, width, height, ticks, sim_time, num_agents, finished, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, scenario, r.Config.Seed, r.Config.GridSize[0], r.Config.GridSize[1],
		r.Config.Ticks, r.Config.SimulationTime, r.Config.NumAgents, finished,
		now.UTC().Format(timeFormat),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO agent_stats
		(run_id, agent_id, status, distance_traveled, remaining_distance,
		 optimal_distance, path_efficiency, average_speed, max_cost, priority)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, a := range r.Agents {
		_, err := stmt.Exec(
			id, a.ID, string(a.Status), a.DistanceTraveled, a.RemainingDistance,
			a.OptimalDistance, a.PathEfficiency, a.AverageSpeed,
			a.Constraints.MaxCost, a.Constraints.Priority,
		)
		if err != nil {
			return "", fmt.Errorf("insert agent stats %s: %w", a.ID, err)
		}
	}

	for x, col := range r.Congestion {
		for y, n := range col {
			if n == 0 {
				continue
			}
			if _, err := tx.Exec(
				"INSERT INTO congestion (run_id, x, y, visits) VALUES (?, ?, ?, ?)",
				id, x, y, n,
			); err != nil {
				return "", fmt.Errorf("insert congestion (%d,%d): %w", x, y, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	slog.Info("run saved", "run", id, "scenario", scenario, "agents", len(r.Agents))
	return id, nil
}

// RecentRuns returns the most recent runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	var rows []runRow
	err := db.conn.Select(&rows, `SELECT id, scenario, seed, width, height, ticks,
		sim_time, num_agents, finished, created_at
		FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}

	runs := make([]Run, 0, len(rows))
	for _, r := range rows {
		run := r.Run
		run.CreatedAt, err = time.Parse(timeFormat, r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("run %s created_at: %w", r.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// AgentStats returns the stored statistics of a run, sorted by agent id.
func (db *DB) AgentStats(runID string) ([]analysis.AgentStats, error) {
	var rows []statsRow
	err := db.conn.Select(&rows, `SELECT agent_id, status, distance_traveled,
		remaining_distance, optimal_distance, path_efficiency, average_speed,
		max_cost, priority
		FROM agent_stats WHERE run_id = ? ORDER BY agent_id`, runID)
	if err != nil {
		return nil, err
	}

	out := make([]analysis.AgentStats, 0, len(rows))
	for _, r := range rows {
		out = append(out, analysis.AgentStats{
			ID:                r.AgentID,
			Status:            agents.Status(r.Status),
			DistanceTraveled:  r.DistanceTraveled,
			RemainingDistance: r.RemainingDistance,
			OptimalDistance:   r.OptimalDistance,
			PathEfficiency:    r.PathEfficiency,
			AverageSpeed:      r.AverageSpeed,
			Constraints:       agents.Constraints{MaxCost: r.MaxCost, Priority: r.Priority},
		})
	}
	return out, nil
}

// Congestion returns the stored visit counts of a run.
func (db *DB) Congestion(runID string) (map[grid.Coord]int, error) {
	var rows []struct {
		X      int `db:"x"`
		Y      int `db:"y"`
		Visits int `db:"visits"`
	}
	if err := db.conn.Select(&rows, "SELECT x, y, visits FROM congestion WHERE run_id = ?", runID); err != nil {
		return nil, err
	}
	out := make(map[grid.Coord]int, len(rows))
	for _, r := range rows {
		out[grid.Coord{X: r.X, Y: r.Y}] = r.Visits
	}
	return out, nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveWeather stores a weather snapshot, replacing any previous one.
func (db *DB) SaveWeather(s weather.State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode weather: %w", err)
	}
	if err := db.SaveMeta(metaWeatherState, string(data)); err != nil {
		return fmt.Errorf("save weather: %w", err)
	}
	slog.Debug("weather state saved", "local_cells", len(s.Local), "global", s.Global != nil)
	return nil
}

// LoadWeather returns the saved weather snapshot. ok is false when none has
// been saved.
func (db *DB) LoadWeather() (s weather.State, ok bool, err error) {
	value, err := db.GetMeta(metaWeatherState)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.State{}, false, nil
	}
	if err != nil {
		return weather.State{}, false, fmt.Errorf("load weather: %w", err)
	}
	if err := json.Unmarshal([]byte(value), &s); err != nil {
		return weather.State{}, false, fmt.Errorf("decode weather: %w", err)
	}
	return s, true, nil
}
