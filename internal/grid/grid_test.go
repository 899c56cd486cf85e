package grid

import (
	"errors"
	"math"
	"testing"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := DefaultGenConfig(30, 30)
	cfg.Seed = 7

	a, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for x := 0; x < cfg.Width; x++ {
		for y := 0; y < cfg.Height; y++ {
			c := Coord{X: x, Y: y}
			ca, _ := a.Cell(c)
			cb, _ := b.Cell(c)
			if ca != cb {
				t.Fatalf("cell %s differs: %+v vs %+v", c, ca, cb)
			}
		}
	}
}

func TestGenerateHighways(t *testing.T) {
	g, err := Generate(SmallTestConfig())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i := 0; i < 10; i++ {
		for _, c := range []Coord{{X: 0, Y: i}, {X: i, Y: 0}} {
			cell, ok := g.Cell(c)
			if !ok {
				t.Fatalf("cell %s missing", c)
			}
			if cell.Terrain != TerrainHighway {
				t.Errorf("terrain at %s = %s, want Highway", c, cell.Terrain)
			}
		}
	}
}

func TestGenerateRestrictedOnlyInDisc(t *testing.T) {
	cfg := DefaultGenConfig(60, 60)
	cfg.Seed = 3
	g, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	restricted := 0
	for x := 0; x < 60; x++ {
		for y := 0; y < 60; y++ {
			cell, _ := g.Cell(Coord{X: x, Y: y})
			if cell.Terrain != TerrainRestricted {
				continue
			}
			restricted++
			if !cfg.inRestricted(x, y) {
				t.Errorf("restricted cell %s outside disc", cell.Coord)
			}
		}
	}
	if restricted == 0 {
		t.Error("expected at least one restricted cell in a 60x60 grid")
	}
}

func TestGenerateElevationFinite(t *testing.T) {
	g, err := Generate(SmallTestConfig())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for x := 0; x < g.Width(); x++ {
		for y := 0; y < g.Height(); y++ {
			cell, _ := g.Cell(Coord{X: x, Y: y})
			if math.IsNaN(cell.Elevation) || math.IsInf(cell.Elevation, 0) {
				t.Errorf("elevation at %s = %v", cell.Coord, cell.Elevation)
			}
		}
	}
}

func TestNewRejectsBadDimensions(t *testing.T) {
	if _, err := New(0, 5); err == nil {
		t.Error("New(0, 5) succeeded, want error")
	}
}

func TestCheckBounds(t *testing.T) {
	g, _ := New(5, 4)
	tests := []struct {
		c    Coord
		want bool
	}{
		{Coord{X: 0, Y: 0}, true},
		{Coord{X: 4, Y: 3}, true},
		{Coord{X: 5, Y: 0}, false},
		{Coord{X: 0, Y: 4}, false},
		{Coord{X: -1, Y: 2}, false},
	}
	for _, tt := range tests {
		err := g.Check(tt.c)
		if (err == nil) != tt.want {
			t.Errorf("Check(%s) = %v, want in-bounds %v", tt.c, err, tt.want)
		}
		if err != nil && !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Check(%s) error %v does not wrap ErrOutOfBounds", tt.c, err)
		}
	}
}

func TestSetRisk(t *testing.T) {
	g, _ := New(3, 3)
	if err := g.SetRisk(Coord{X: 1, Y: 1}, 0.5); err != nil {
		t.Fatalf("SetRisk: %v", err)
	}
	cell, _ := g.Cell(Coord{X: 1, Y: 1})
	if cell.Risk != 0.5 {
		t.Errorf("risk = %v, want 0.5", cell.Risk)
	}
	if err := g.SetRisk(Coord{X: 1, Y: 1}, -1); err == nil {
		t.Error("negative risk accepted")
	}
	if err := g.SetRisk(Coord{X: 9, Y: 1}, 1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("SetRisk out of bounds = %v, want ErrOutOfBounds", err)
	}
}

func TestTerrainTable(t *testing.T) {
	min := math.Inf(1)
	for _, tr := range AllTerrains() {
		if tr.BaseCost() <= 0 {
			t.Errorf("%s base cost = %v, want > 0", tr, tr.BaseCost())
		}
		if tr.Color() == "" {
			t.Errorf("%s has no color", tr)
		}
		min = math.Min(min, tr.BaseCost())
	}
	if min != MinBaseCost {
		t.Errorf("min base cost = %v, want MinBaseCost %v", min, MinBaseCost)
	}
}

func TestAdjacent(t *testing.T) {
	if !Adjacent(Coord{X: 1, Y: 1}, Coord{X: 2, Y: 2}) {
		t.Error("diagonal neighbours not adjacent")
	}
	if Adjacent(Coord{X: 1, Y: 1}, Coord{X: 3, Y: 1}) {
		t.Error("cells two apart reported adjacent")
	}
}
