package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/michaelbinary/advanced-pathfinding/internal/agents"
	"github.com/michaelbinary/advanced-pathfinding/internal/engine"
	"github.com/michaelbinary/advanced-pathfinding/internal/grid"
	"github.com/michaelbinary/advanced-pathfinding/internal/persistence"
	"github.com/michaelbinary/advanced-pathfinding/internal/scenario"
	"github.com/michaelbinary/advanced-pathfinding/internal/weather"
)

func pathCmd() *cobra.Command {
	var (
		width, height int
		seed          int64
		from, to      string
		maxCost       float64
		weatherKind   string
		admissible    bool
	)

	cmd := &cobra.Command{
		Use:   "path",
		Short: "Plan a single path on a generated grid",
		RunE: func(_ *cobra.Command, _ []string) error {
			start, err := parseCoord(from)
			if err != nil {
				return err
			}
			goal, err := parseCoord(to)
			if err != nil {
				return err
			}

			gen := grid.DefaultGenConfig(width, height)
			gen.Seed = seed
			cfg := engine.DefaultConfig()
			cfg.AdmissibleHeuristic = admissible
			p, err := engine.NewPlannerWithConfig(gen, cfg)
			if err != nil {
				return err
			}
			if weatherKind != "" {
				c, err := weather.Preset(weather.Kind(weatherKind))
				if err != nil {
					return err
				}
				p.Weather().SetGlobal(c)
			}

			path, err := p.FindPath(start, goal, agents.Constraints{MaxCost: maxCost, Priority: 1})
			if err != nil {
				return err
			}
			if path == nil {
				fmt.Printf("No path from %s to %s on %s (seed %d)\n", start, goal, p.Grid(), p.Seed())
				return nil
			}

			steps := make([]string, len(path))
			for i, c := range path {
				steps[i] = c.String()
			}
			fmt.Printf("%d waypoints, length %.2f (straight line %.2f)\n",
				len(path), agents.Path(path).Length(), grid.Euclidean(start, goal))
			fmt.Println(strings.Join(steps, " "))
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&width, "width", 50, "grid width")
	f.IntVar(&height, "height", 50, "grid height")
	f.Int64Var(&seed, "seed", envInt64OrDefault("PATHSIM_SEED", 42), "generation seed (0 = random)")
	f.StringVar(&from, "from", "0,0", "start cell as x,y")
	f.StringVar(&to, "to", "49,49", "goal cell as x,y")
	f.Float64Var(&maxCost, "max-cost", 0, "per-step cost cap (0 = none)")
	f.StringVar(&weatherKind, "weather", "", "global weather preset: clear, rain, snow, fog, storm")
	f.BoolVar(&admissible, "admissible", false, "scale the heuristic so the search is optimal")
	return cmd
}

func parseCoord(s string) (grid.Coord, error) {
	var c grid.Coord
	if _, err := fmt.Sscanf(strings.ReplaceAll(s, " ", ""), "%d,%d", &c.X, &c.Y); err != nil {
		return grid.Coord{}, fmt.Errorf("coordinate %q: want x,y", s)
	}
	return c, nil
}

func scenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the built-in scenarios",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tGRID\tAGENTS\tDURATION\tDESCRIPTION")
			for _, name := range scenario.Names() {
				s, err := scenario.Builtin(name)
				if err != nil {
					return err
				}
				n := len(s.Agents)
				for _, f := range s.Fleets {
					n += f.Count
				}
				fmt.Fprintf(w, "%s\t%dx%d\t%d\t%ss\t%s\n",
					s.Name, s.Width, s.Height, n, humanize.Ftoa(s.Duration), s.Description)
			}
			return w.Flush()
		},
	}
}

func runsCmd() *cobra.Command {
	var (
		dbPath string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent stored runs",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := os.Stat(dbPath); err != nil {
				return fmt.Errorf("database %s: %w", filepath.Clean(dbPath), err)
			}
			db, err := persistence.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.RecentRuns(limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSCENARIO\tSEED\tTICKS\tFINISHED\tWHEN")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d/%d\t%s\n",
					r.ID, r.Scenario, r.Seed, humanize.Comma(int64(r.Ticks)),
					r.Finished, r.NumAgents, humanize.Time(r.CreatedAt))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", envOrDefault("PATHSIM_DB", "data/pathsim.db"), "SQLite database path")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show")
	return cmd
}
