package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/michaelbinary/advanced-pathfinding/internal/agents"
	"github.com/michaelbinary/advanced-pathfinding/internal/analysis"
	"github.com/michaelbinary/advanced-pathfinding/internal/engine"
	"github.com/michaelbinary/advanced-pathfinding/internal/persistence"
	"github.com/michaelbinary/advanced-pathfinding/internal/scenario"
	"github.com/michaelbinary/advanced-pathfinding/internal/weather"
)

type runOptions struct {
	dbPath         string
	outDir         string
	geojsonDir     string
	seed           int64
	duration       float64
	interval       time.Duration
	workers        int
	admissible     bool
	weatherSpeed   bool
	restoreWeather bool
}

func runCmd() *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run [scenario-name-or-file]",
		Short: "Run a built-in or YAML scenario and save its analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runScenario(args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.dbPath, "db", envOrDefault("PATHSIM_DB", "data/pathsim.db"), "SQLite database path; empty disables persistence")
	f.StringVarP(&opts.outDir, "out", "o", "simulation_results", "directory for analysis output")
	f.StringVar(&opts.geojsonDir, "geojson", "", "write one GeoJSON frame per tick into this directory")
	f.Int64Var(&opts.seed, "seed", envInt64OrDefault("PATHSIM_SEED", 0), "override the scenario seed (0 keeps it)")
	f.Float64Var(&opts.duration, "duration", 0, "override the scenario duration in simulated seconds")
	f.DurationVar(&opts.interval, "interval", 0, "wall-clock delay between ticks")
	f.IntVar(&opts.workers, "workers", 0, "maximum concurrent replans per tick (0 = unlimited)")
	f.BoolVar(&opts.admissible, "admissible", false, "scale the heuristic so searches are optimal")
	f.BoolVar(&opts.weatherSpeed, "weather-speed", false, "slow agents by the weather at their cell")
	f.BoolVar(&opts.restoreWeather, "restore-weather", false, "start from the weather saved by the previous run")
	return cmd
}

func runScenario(ref string, opts runOptions) error {
	s, err := scenario.Resolve(ref)
	if err != nil {
		return err
	}
	if opts.seed != 0 {
		s.Seed = opts.seed
	}
	if opts.duration > 0 {
		s.Duration = opts.duration
	}

	cfg := engine.DefaultConfig()
	cfg.MaxConcurrentReplans = opts.workers
	cfg.AdmissibleHeuristic = opts.admissible
	cfg.ApplyWeatherToSpeed = opts.weatherSpeed

	p, err := s.Build(cfg)
	if err != nil {
		return fmt.Errorf("build scenario: %w", err)
	}

	var db *persistence.DB
	if opts.dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.dbPath), 0o755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
		db, err = persistence.Open(opts.dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		slog.Info("database opened", "path", opts.dbPath)

		if opts.restoreWeather {
			if err := restoreWeather(db, p); err != nil {
				return err
			}
		}
	}

	if opts.geojsonDir != "" {
		if err := os.MkdirAll(opts.geojsonDir, 0o755); err != nil {
			return fmt.Errorf("create geojson dir: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng := engine.NewEngine(p, s.DT)
	eng.Interval = opts.interval
	var frameErr error
	eng.OnTick = func(snap engine.Snapshot) {
		if opts.geojsonDir == "" || frameErr != nil {
			return
		}
		name := fmt.Sprintf("frame_%05d.geojson", p.Ticks())
		frameErr = analysis.WriteFrame(filepath.Join(opts.geojsonDir, name), snap)
	}

	fmt.Printf("Running %s on a %dx%d grid (seed %d) for %ss...\n",
		s.Name, p.Grid().Width(), p.Grid().Height(), p.Seed(), humanize.Ftoa(s.Duration))

	started := time.Now()
	runErr := eng.Run(ctx, s.Steps())
	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	if runErr != nil {
		slog.Warn("run interrupted, saving partial results", "error", runErr)
	}
	if frameErr != nil {
		slog.Error("geojson export failed", "error", frameErr)
	}

	report := analysis.NewReport(p)
	dir, err := report.Save(opts.outDir, time.Now())
	if err != nil {
		return err
	}

	if db != nil {
		id, err := db.SaveRun(s.Name, report, time.Now())
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		if err := db.SaveWeather(p.Weather().State()); err != nil {
			return err
		}
		fmt.Printf("Run %s stored in %s\n", id, opts.dbPath)
	}

	printSummary(p, report, time.Since(started))
	fmt.Printf("Analysis saved to %s\n", dir)
	return nil
}

func restoreWeather(db *persistence.DB, p *engine.Planner) error {
	st, ok, err := db.LoadWeather()
	if err != nil {
		return err
	}
	if !ok {
		slog.Info("no saved weather, keeping scenario weather")
		return nil
	}
	if err := p.Weather().Restore(st); err != nil {
		if errors.Is(err, weather.ErrDimensionMismatch) {
			slog.Warn("saved weather is for a different grid, ignoring", "error", err)
			return nil
		}
		return fmt.Errorf("restore weather: %w", err)
	}
	slog.Info("weather restored", "local_cells", len(st.Local))
	return nil
}

func printSummary(p *engine.Planner, r analysis.Report, wall time.Duration) {
	counts := p.Snapshot().CountByStatus()
	traveled := 0.0
	for _, a := range r.Agents {
		traveled += a.DistanceTraveled
	}

	fmt.Printf("\n%s ticks (%ss simulated) in %s\n",
		humanize.Comma(int64(p.Ticks())), humanize.FtoaWithDigits(p.Time(), 2), wall.Round(time.Millisecond))
	fmt.Printf("Agents: %d finished, %d active, %d waiting\n",
		counts[agents.StatusFinished], counts[agents.StatusActive], counts[agents.StatusWaiting])
	fmt.Printf("Distance traveled: %s cells, mean efficiency %.2f\n",
		humanize.CommafWithDigits(traveled, 1), r.MeanEfficiency())
	fmt.Printf("Congestion: %s visits recorded\n", humanize.Comma(int64(p.Traffic().Total())))
}
