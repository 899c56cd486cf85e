// Package grid provides the rectangular cost grid, terrain classes, and
// seeded procedural generation.
// Coordinates are (x, y) with 0 <= x < width and 0 <= y < height.
package grid

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfBounds is returned when a coordinate lies outside the grid.
var ErrOutOfBounds = errors.New("coordinate out of bounds")

// Coord is an integer grid coordinate.
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// String implements fmt.Stringer.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// NeighborDirections lists the eight 8-connected offsets. Orthogonal moves
// come first, then diagonals.
var NeighborDirections = [8]Coord{
	{X: 0, Y: 1},
	{X: 1, Y: 0},
	{X: 0, Y: -1},
	{X: -1, Y: 0},
	{X: 1, Y: 1},
	{X: 1, Y: -1},
	{X: -1, Y: 1},
	{X: -1, Y: -1},
}

// Neighbors returns the eight surrounding coordinates. Some may be out of bounds.
func (c Coord) Neighbors() [8]Coord {
	var result [8]Coord
	for i, dir := range NeighborDirections {
		result[i] = Coord{X: c.X + dir.X, Y: c.Y + dir.Y}
	}
	return result
}

// Adjacent reports whether a and b differ by at most one unit on each axis.
func Adjacent(a, b Coord) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
}

// Euclidean returns the straight-line distance between two cell centers.
func Euclidean(a, b Coord) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Cell is a single grid tile. Terrain and elevation are fixed after generation.
type Cell struct {
	Coord     Coord   `json:"coord"`
	Terrain   Terrain `json:"terrain"`
	Elevation float64 `json:"elevation"`
	Risk      float64 `json:"risk"` // >= 0
}

// Grid holds a dense, fixed-size array of cells.
type Grid struct {
	width  int
	height int
	cells  []Cell // indexed x*height + y
}

// New creates a grid of the given dimensions filled with urban cells.
func New(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid dimensions %dx%d must be positive", width, height)
	}
	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			g.cells[x*height+y] = Cell{Coord: Coord{X: x, Y: y}, Terrain: TerrainUrban}
		}
	}
	return g, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds returns true if the coordinate lies within the grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

// InBoundsPoint returns true if the real-valued position lies within
// [0, width-1] x [0, height-1].
func (g *Grid) InBoundsPoint(x, y float64) bool {
	return x >= 0 && x <= float64(g.width-1) && y >= 0 && y <= float64(g.height-1)
}

// Check returns ErrOutOfBounds (wrapped with the coordinate) if c is outside the grid.
func (g *Grid) Check(c Coord) error {
	if !g.InBounds(c) {
		return fmt.Errorf("%s on %dx%d grid: %w", c, g.width, g.height, ErrOutOfBounds)
	}
	return nil
}

// Cell returns the cell at c. The second result is false when c is out of bounds.
func (g *Grid) Cell(c Coord) (Cell, bool) {
	if !g.InBounds(c) {
		return Cell{}, false
	}
	return g.cells[c.X*g.height+c.Y], true
}

// SetRisk updates the risk factor of a cell. Risk must be finite and non-negative.
func (g *Grid) SetRisk(c Coord, risk float64) error {
	if err := g.Check(c); err != nil {
		return err
	}
	if risk < 0 || math.IsNaN(risk) || math.IsInf(risk, 0) {
		return fmt.Errorf("risk %v at %s must be finite and non-negative", risk, c)
	}
	g.cells[c.X*g.height+c.Y].Risk = risk
	return nil
}

func (g *Grid) set(cell Cell) {
	g.cells[cell.Coord.X*g.height+cell.Coord.Y] = cell
}

// TerrainCounts returns a summary of terrain class distribution.
func (g *Grid) TerrainCounts() map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, c := range g.cells {
		counts[c.Terrain]++
	}
	return counts
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d)", g.width, g.height)
}
