package engine

import (
	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"

	"github.com/michaelbinary/advanced-pathfinding/internal/agents"
	"github.com/michaelbinary/advanced-pathfinding/internal/cost"
	"github.com/michaelbinary/advanced-pathfinding/internal/grid"
	"github.com/michaelbinary/advanced-pathfinding/internal/obstacle"
	"github.com/michaelbinary/advanced-pathfinding/internal/pathfind"
)

// replanJob is one independent search scheduled during a tick.
type replanJob struct {
	agentID string
	query   pathfind.Query
}

// replanResult is the candidate path for job i; nil when no path was found.
type replanResult struct {
	agentID string
	path    []grid.Coord
}

// replanBatch is an in-flight set of searches. Each job writes only its own
// result slot; the orchestrator reads them after wait returns.
type replanBatch struct {
	results []replanResult
	done    chan error
}

// startReplans launches every job against the frozen view and returns
// immediately. Jobs are never cancelled once started.
func startReplans(view *cost.View, jobs []replanJob, limit int) *replanBatch {
	b := &replanBatch{
		results: make([]replanResult, len(jobs)),
		done:    make(chan error, 1),
	}
	if len(jobs) == 0 {
		b.done <- nil
		return b
	}

	go func() {
		var g errgroup.Group
		if limit > 0 {
			g.SetLimit(limit)
		}
		for i, job := range jobs {
			g.Go(func() error {
				b.results[i] = replanResult{
					agentID: job.agentID,
					path:    pathfind.Search(view, job.query),
				}
				return nil
			})
		}
		b.done <- g.Wait()
	}()
	return b
}

// wait is the join barrier.
func (b *replanBatch) wait() ([]replanResult, error) {
	err := <-b.done
	return b.results, err
}

// obstructed reports whether the agent's next waypoint is affected by any
// live obstacle.
func (p *Planner) obstructed(a *agents.Agent) bool {
	next, ok := a.Path.Next()
	if !ok {
		return false
	}
	return p.obstacles.AnyAffects(agents.PointOf(next), p.cfg.ObstacleBuffer)
}

// replanQuery builds the search for an obstructed agent from its current
// cell to its original goal under its original constraints. The goal is
// never blocked, so an obstacle parked beside it cannot strand the agent.
func (p *Planner) replanQuery(a *agents.Agent, zones []obstacle.Zone) pathfind.Query {
	q := p.query(p.clampCell(a.Cell()), a.Goal, a.Constraints)
	if p.cfg.AvoidObstaclesOnReplan && len(zones) > 0 {
		goal := q.Goal
		q.Blocked = func(c grid.Coord) bool {
			if c == goal {
				return false
			}
			pt := orb.Point{float64(c.X), float64(c.Y)}
			for _, z := range zones {
				if z.Covers(pt) {
					return true
				}
			}
			return false
		}
	}
	return q
}

// clampCell keeps a rounded position on the grid. Positions are validated
// in bounds, so this only guards rounding at the far edges.
func (p *Planner) clampCell(c grid.Coord) grid.Coord {
	c.X = max(0, min(p.grid.Width()-1, c.X))
	c.Y = max(0, min(p.grid.Height()-1, c.Y))
	return c
}
