package analysis

import (
	"fmt"
	"os"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/michaelbinary/advanced-pathfinding/internal/agents"
	"github.com/michaelbinary/advanced-pathfinding/internal/engine"
)

// Feature kinds set in the "kind" property.
const (
	KindAgent    = "agent"
	KindPath     = "path"
	KindObstacle = "obstacle"
)

// Frame renders a snapshot for an external renderer. Coordinates are grid
// units. Each agent yields a point and, while it has waypoints left, a line
// from its position through the remaining path. Each live obstacle yields a
// point carrying its radius.
func Frame(s engine.Snapshot) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	ids := make([]string, 0, len(s.Agents))
	for id := range s.Agents {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		a := s.Agents[id]
		f := geojson.NewFeature(a.Position)
		f.Properties["kind"] = KindAgent
		f.Properties["id"] = a.ID
		f.Properties["status"] = string(a.Status)
		f.Properties["priority"] = a.Constraints.Priority
		fc.Append(f)

		if len(a.Path) == 0 {
			continue
		}
		line := make(orb.LineString, 0, len(a.Path)+1)
		line = append(line, a.Position)
		for _, c := range a.Path {
			line = append(line, agents.PointOf(c))
		}
		pf := geojson.NewFeature(line)
		pf.Properties["kind"] = KindPath
		pf.Properties["id"] = a.ID
		fc.Append(pf)
	}

	for _, o := range s.Obstacles {
		if o.Expired() {
			continue
		}
		f := geojson.NewFeature(o.Position)
		f.Properties["kind"] = KindObstacle
		f.Properties["id"] = o.ID
		f.Properties["radius"] = o.Radius
		fc.Append(f)
	}
	fc.ExtraMembers = geojson.Properties{"time": s.Time}
	return fc
}

// WriteFrame writes Frame(s) to path.
func WriteFrame(path string, s engine.Snapshot) error {
	data, err := Frame(s).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
