package cost

import (
	"math"
	"math/rand"
	"testing"

	"github.com/michaelbinary/advanced-pathfinding/internal/grid"
	"github.com/michaelbinary/advanced-pathfinding/internal/weather"
)

func TestTraversalComponents(t *testing.T) {
	cell := grid.Cell{Terrain: grid.TerrainUrban, Elevation: 2, Risk: 0.1}
	storm := weather.Condition{RainIntensity: 0.5, Visibility: 0.5, WindSpeed: 12}

	want := 1.2 + 0.2 + (0.5*2 + 0.5*3 + 2*0.5) + 3*0.2 + 0.1*5
	got := Traversal(cell, &storm, 3)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Traversal = %v, want %v", got, want)
	}
}

func TestTraversalElevationFloor(t *testing.T) {
	cell := grid.Cell{Terrain: grid.TerrainHighway, Elevation: -5}
	if got := Traversal(cell, nil, 0); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("Traversal = %v, want 0.8 (negative elevation floored)", got)
	}
}

func TestTraversalNonNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		cell := grid.Cell{
			Terrain:   grid.AllTerrains()[rng.Intn(len(grid.AllTerrains()))],
			Elevation: rng.NormFloat64() * 3,
			Risk:      rng.Float64(),
		}
		w := weather.Condition{
			RainIntensity: rng.Float64(),
			Visibility:    rng.Float64(),
			WindSpeed:     rng.Float64() * 30,
			Temperature:   rng.NormFloat64() * 20,
		}
		got := Traversal(cell, &w, rng.Intn(50))
		if got < 0 || math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("Traversal(%+v, %+v) = %v", cell, w, got)
		}
	}
}

func TestViewUsesFrozenInputs(t *testing.T) {
	g, err := grid.New(4, 4)
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	f := weather.NewField(4, 4, rand.New(rand.NewSource(1)))
	fog, _ := weather.Preset(weather.KindFog)
	_ = f.SetLocal(grid.Coord{X: 1, Y: 1}, fog)

	visits := map[grid.Coord]int{{X: 2, Y: 2}: 5}
	v := NewView(g, f.State(), visits)

	if got := v.Cost(grid.Coord{X: 0, Y: 0}); math.Abs(got-1.2) > 1e-9 {
		t.Errorf("plain cost = %v, want 1.2", got)
	}
	if got := v.Cost(grid.Coord{X: 1, Y: 1}); math.Abs(got-(1.2+fog.Penalty())) > 1e-9 {
		t.Errorf("fog cost = %v, want %v", got, 1.2+fog.Penalty())
	}
	if got := v.Cost(grid.Coord{X: 2, Y: 2}); math.Abs(got-2.2) > 1e-9 {
		t.Errorf("congested cost = %v, want 2.2", got)
	}

	// Later field changes must not leak into the view.
	_ = f.SetLocal(grid.Coord{X: 0, Y: 0}, fog)
	if got := v.Cost(grid.Coord{X: 0, Y: 0}); math.Abs(got-1.2) > 1e-9 {
		t.Errorf("view picked up later weather: %v", got)
	}
	if !math.IsInf(v.Cost(grid.Coord{X: 9, Y: 9}), 1) {
		t.Error("out-of-bounds cost is finite")
	}
}
