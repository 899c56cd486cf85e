package agents

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// DefaultWaypointEpsilon is the distance at which a waypoint counts as reached.
const DefaultWaypointEpsilon = 0.1

// Advance moves an active agent toward its next waypoint by
// Speed*speedFactor*dt. Within epsilon of the waypoint it snaps onto it and
// pops it instead of moving; popping the last waypoint finishes the agent.
// A move never overshoots the waypoint.
func (a *Agent) Advance(dt, speedFactor, epsilon float64) {
	if a.Status != StatusActive {
		return
	}
	target, ok := a.Path.Next()
	if !ok {
		return
	}
	a.ActiveTime += dt

	tp := PointOf(target)
	d := planar.Distance(a.Position, tp)
	if d < epsilon {
		a.Traveled += d
		a.Position = tp
		a.Path = a.Path[1:]
		if len(a.Path) == 0 {
			a.Status = StatusFinished
		}
		return
	}

	step := a.Speed * speedFactor * dt
	if step <= 0 {
		return
	}
	if step >= d {
		a.Traveled += d
		a.Position = tp
		return
	}
	a.Traveled += step
	a.Position = orb.Point{
		a.Position[0] + (tp[0]-a.Position[0])*step/d,
		a.Position[1] + (tp[1]-a.Position[1])*step/d,
	}
}
