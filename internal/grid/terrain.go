package grid

// Terrain classes for grid cells.
type Terrain uint8

const (
	TerrainUrban        Terrain = iota // City streets
	TerrainHighway                     // Fast routes on every tenth row/column
	TerrainResidential
	TerrainPark
	TerrainConstruction
	TerrainRestricted // Nearly impassable zone
)

// terrainInfo carries the fixed per-class data.
type terrainInfo struct {
	name  string
	cost  float64
	color string // display only
}

var terrainTable = [...]terrainInfo{
	TerrainUrban:        {name: "Urban", cost: 1.2, color: "#A0A0A0"},
	TerrainHighway:      {name: "Highway", cost: 0.8, color: "#404040"},
	TerrainResidential:  {name: "Residential", cost: 1.5, color: "#C0C0C0"},
	TerrainPark:         {name: "Park", cost: 1.3, color: "#90EE90"},
	TerrainConstruction: {name: "Construction", cost: 2.5, color: "#FFA500"},
	TerrainRestricted:   {name: "Restricted", cost: 10.0, color: "#FF0000"},
}

// MinBaseCost is the lowest base multiplier of any terrain class (highway).
const MinBaseCost = 0.8

// AllTerrains lists every terrain class in declaration order.
func AllTerrains() []Terrain {
	return []Terrain{
		TerrainUrban, TerrainHighway, TerrainResidential,
		TerrainPark, TerrainConstruction, TerrainRestricted,
	}
}

// BaseCost returns the base traversal multiplier of the terrain class.
func (t Terrain) BaseCost() float64 {
	if int(t) >= len(terrainTable) {
		return terrainTable[TerrainRestricted].cost
	}
	return terrainTable[t].cost
}

// Color returns the display color for renderers.
func (t Terrain) Color() string {
	if int(t) >= len(terrainTable) {
		return "#000000"
	}
	return terrainTable[t].color
}

// String returns a human-readable name for the terrain class.
func (t Terrain) String() string {
	if int(t) >= len(terrainTable) {
		return "Unknown"
	}
	return terrainTable[t].name
}
