// Grid generation: terrain by seeded draws over fixed road/park/restricted
// layouts, elevation from low-frequency simplex noise plus Gaussian jitter.
package grid

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/michaelbinary/advanced-pathfinding/internal/entropy"
)

// GenConfig holds grid generation parameters.
type GenConfig struct {
	Width  int
	Height int
	Seed   int64 // 0 = random

	HighwaySpacing int // rows/columns that are multiples of this become highway

	// Park rectangle [ParkMin, ParkMax] on both axes.
	ParkMin  int
	ParkMax  int
	ParkProb float64

	// Restricted disc: squared distance to center strictly below radius².
	RestrictedCenter Coord
	RestrictedRadius float64
	RestrictedProb   float64

	ConstructionProb float64
	UrbanProb        float64 // otherwise residential

	ElevationFreq  float64 // noise frequency (cycles per cell)
	ElevationNoise float64 // Gaussian jitter standard deviation
}

// DefaultGenConfig returns the standard city layout for a grid of the given size.
func DefaultGenConfig(width, height int) GenConfig {
	return GenConfig{
		Width:            width,
		Height:           height,
		HighwaySpacing:   10,
		ParkMin:          15,
		ParkMax:          25,
		ParkProb:         0.7,
		RestrictedCenter: Coord{X: 40, Y: 40},
		RestrictedRadius: 5,
		RestrictedProb:   0.8,
		ConstructionProb: 0.1,
		UrbanProb:        0.7,
		ElevationFreq:    0.1,
		ElevationNoise:   0.1,
	}
}

// SmallTestConfig returns a tiny seeded grid for rapid iteration.
func SmallTestConfig() GenConfig {
	cfg := DefaultGenConfig(10, 10)
	cfg.Seed = 42
	return cfg
}

// Generate creates a grid from cfg. The same config (including a non-zero
// seed) always produces an identical grid.
func Generate(cfg GenConfig) (*Grid, error) {
	g, err := New(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}

	src := entropy.New(cfg.Seed)
	terrainRng := src.Stream(entropy.StreamTerrain)
	elevRng := src.Stream(entropy.StreamElevation)
	elevNoise := opensimplex.New(src.Seed())

	for x := 0; x < cfg.Width; x++ {
		for y := 0; y < cfg.Height; y++ {
			var terrain Terrain
			switch {
			case cfg.isHighway(x, y):
				terrain = TerrainHighway
			case cfg.inPark(x, y) && terrainRng.Float64() < cfg.ParkProb:
				terrain = TerrainPark
			case cfg.inRestricted(x, y) && terrainRng.Float64() < cfg.RestrictedProb:
				terrain = TerrainRestricted
			case terrainRng.Float64() < cfg.ConstructionProb:
				terrain = TerrainConstruction
			case terrainRng.Float64() < cfg.UrbanProb:
				terrain = TerrainUrban
			default:
				terrain = TerrainResidential
			}

			base := octaveNoise(elevNoise, float64(x), float64(y), 2, cfg.ElevationFreq, 0.5)
			elev := base + elevRng.NormFloat64()*cfg.ElevationNoise

			g.set(Cell{
				Coord:     Coord{X: x, Y: y},
				Terrain:   terrain,
				Elevation: elev,
			})
		}
	}

	return g, nil
}

func (cfg GenConfig) isHighway(x, y int) bool {
	if cfg.HighwaySpacing <= 0 {
		return false
	}
	return x%cfg.HighwaySpacing == 0 || y%cfg.HighwaySpacing == 0
}

func (cfg GenConfig) inPark(x, y int) bool {
	return x >= cfg.ParkMin && x <= cfg.ParkMax && y >= cfg.ParkMin && y <= cfg.ParkMax
}

func (cfg GenConfig) inRestricted(x, y int) bool {
	dx := float64(x - cfg.RestrictedCenter.X)
	dy := float64(y - cfg.RestrictedCenter.Y)
	return dx*dx+dy*dy < cfg.RestrictedRadius*cfg.RestrictedRadius
}

// octaveNoise layers a few simplex frequencies; the result stays in [-1, 1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	if maxVal == 0 {
		return 0
	}
	return math.Max(-1, math.Min(1, total/maxVal))
}
