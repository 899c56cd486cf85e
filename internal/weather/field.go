package weather

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/michaelbinary/advanced-pathfinding/internal/grid"
)

// ErrDimensionMismatch is returned when a saved State was taken from a grid
// of a different size.
var ErrDimensionMismatch = errors.New("weather state dimensions differ from field")

// Field random-walk and decay parameters.
const (
	noiseStdDev      = 0.05
	rainNoiseScale   = 0.1
	visibilityScale  = 0.1
	tempNoiseScale   = 0.5
	minVisibility    = 0.1
	LocalClearChance = 0.1 // per tick, per local override
)

// Field holds one optional global condition plus sparse local overrides.
// It is owned by a single goroutine; readers that run concurrently take a
// State copy first.
type Field struct {
	width  int
	height int
	rng    *rand.Rand

	global *Condition
	local  map[grid.Coord]Condition
}

// NewField creates an empty field for a width x height grid. rng drives the
// random walk and override expiry and must not be shared.
func NewField(width, height int, rng *rand.Rand) *Field {
	return &Field{
		width:  width,
		height: height,
		rng:    rng,
		local:  make(map[grid.Coord]Condition),
	}
}

func (f *Field) inBounds(c grid.Coord) bool {
	return c.X >= 0 && c.X < f.width && c.Y >= 0 && c.Y < f.height
}

// SetGlobal replaces the ambient condition and clears all local overrides.
func (f *Field) SetGlobal(c Condition) {
	f.global = &c
	clear(f.local)
}

// ClearGlobal removes the ambient condition. Local overrides are kept.
func (f *Field) ClearGlobal() {
	f.global = nil
}

// Global returns the ambient condition, if any.
func (f *Field) Global() (Condition, bool) {
	if f.global == nil {
		return Condition{}, false
	}
	return *f.global, true
}

// SetLocal installs an override at coord.
func (f *Field) SetLocal(coord grid.Coord, c Condition) error {
	if !f.inBounds(coord) {
		return fmt.Errorf("local weather at %s: %w", coord, grid.ErrOutOfBounds)
	}
	f.local[coord] = c
	return nil
}

// At returns the condition in effect at coord: the local override if present,
// otherwise the global condition. ok is false when neither exists.
func (f *Field) At(coord grid.Coord) (c Condition, ok bool) {
	if lc, found := f.local[coord]; found {
		return lc, true
	}
	return f.Global()
}

// LocalCount returns the number of active local overrides.
func (f *Field) LocalCount() int {
	return len(f.local)
}

// CreateFront installs local overrides for every cell within radius of
// center. Rain and wind fade linearly to zero at the edge; visibility rises
// toward 1 by the complementary fraction; temperature is unchanged.
func (f *Field) CreateFront(center grid.Coord, c Condition, radius float64) error {
	if !f.inBounds(center) {
		return fmt.Errorf("weather front at %s: %w", center, grid.ErrOutOfBounds)
	}
	if !(radius > 0) || math.IsInf(radius, 0) {
		return fmt.Errorf("weather front radius %v must be positive and finite", radius)
	}

	r := int(math.Ceil(radius))
	for x := max(0, center.X-r); x <= min(f.width-1, center.X+r); x++ {
		for y := max(0, center.Y-r); y <= min(f.height-1, center.Y+r); y++ {
			coord := grid.Coord{X: x, Y: y}
			d := grid.Euclidean(coord, center)
			if d > radius {
				continue
			}
			intensity := 1.0 - d/radius
			f.local[coord] = Condition{
				RainIntensity: c.RainIntensity * intensity,
				Visibility:    math.Min(1.0, c.Visibility+(1-intensity)),
				WindSpeed:     c.WindSpeed * intensity,
				Temperature:   c.Temperature,
			}
		}
	}
	return nil
}

// Advance perturbs the global condition by a small zero-mean random walk and
// clears each local override with probability LocalClearChance. The step is
// per tick; dt does not scale it.
func (f *Field) Advance(_ float64) {
	if f.global != nil {
		noise := f.rng.NormFloat64() * noiseStdDev
		g := *f.global
		f.global = &Condition{
			RainIntensity: clamp(g.RainIntensity+noise*rainNoiseScale, 0, 1),
			Visibility:    clamp(g.Visibility+noise*visibilityScale, minVisibility, 1),
			WindSpeed:     math.Max(0, g.WindSpeed+noise),
			Temperature:   g.Temperature + noise*tempNoiseScale,
		}
	}

	// Sorted so the same seed clears the same cells.
	for _, coord := range sortedCoords(f.local) {
		if f.rng.Float64() < LocalClearChance {
			delete(f.local, coord)
		}
	}
}

// LocalEntry is one serialized local override.
type LocalEntry struct {
	Coord     grid.Coord `json:"coord"`
	Condition Condition  `json:"condition"`
}

// State is an immutable copy of a field, suitable for saving and for
// concurrent readers.
type State struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Global *Condition   `json:"global,omitempty"`
	Local  []LocalEntry `json:"local"`
}

// State returns a copy of the field. Local entries are sorted by coordinate.
func (f *Field) State() State {
	s := State{Width: f.width, Height: f.height, Local: make([]LocalEntry, 0, len(f.local))}
	if f.global != nil {
		g := *f.global
		s.Global = &g
	}
	for _, coord := range sortedCoords(f.local) {
		s.Local = append(s.Local, LocalEntry{Coord: coord, Condition: f.local[coord]})
	}
	return s
}

// Restore replaces the field's contents with s, which must have been taken
// from a field of the same size.
func (f *Field) Restore(s State) error {
	if s.Width != f.width || s.Height != f.height {
		return fmt.Errorf("restoring %dx%d state into %dx%d field: %w",
			s.Width, s.Height, f.width, f.height, ErrDimensionMismatch)
	}
	local := make(map[grid.Coord]Condition, len(s.Local))
	for _, e := range s.Local {
		if e.Coord.X < 0 || e.Coord.X >= s.Width || e.Coord.Y < 0 || e.Coord.Y >= s.Height {
			return fmt.Errorf("weather state entry %s: %w", e.Coord, grid.ErrOutOfBounds)
		}
		local[e.Coord] = e.Condition
	}
	f.local = local
	f.global = nil
	if s.Global != nil {
		g := *s.Global
		f.global = &g
	}
	return nil
}

// Lookup returns a read-only view for concurrent readers.
func (s State) Lookup() Lookup {
	l := Lookup{local: make(map[grid.Coord]Condition, len(s.Local))}
	if s.Global != nil {
		g := *s.Global
		l.global = &g
	}
	for _, e := range s.Local {
		l.local[e.Coord] = e.Condition
	}
	return l
}

// Lookup answers At queries against a frozen State. Safe for concurrent use.
type Lookup struct {
	global *Condition
	local  map[grid.Coord]Condition
}

// At returns the condition in effect at coord, as Field.At does.
func (l Lookup) At(coord grid.Coord) (Condition, bool) {
	if c, ok := l.local[coord]; ok {
		return c, true
	}
	if l.global == nil {
		return Condition{}, false
	}
	return *l.global, true
}

func sortedCoords(m map[grid.Coord]Condition) []grid.Coord {
	coords := make([]grid.Coord, 0, len(m))
	for c := range m {
		coords = append(coords, c)
	}
	slices.SortFunc(coords, func(a, b grid.Coord) int {
		if n := cmp.Compare(a.X, b.X); n != 0 {
			return n
		}
		return cmp.Compare(a.Y, b.Y)
	})
	return coords
}
