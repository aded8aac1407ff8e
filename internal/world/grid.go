// Package world generates a planetary surface on a square grid wrapped onto a
// sphere: elevation, temperature, humidity, biomes and optional territories.
// Grids are flat row-major buffers indexed by y*size+x; x wraps (longitude),
// y does not (poles are boundaries).
package world

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Coord addresses a grid cell. X is the longitude index, Y the latitude index.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ElevationGrid is the output of the elevation pass.
type ElevationGrid struct {
	Size      int
	SeaLevel  float64
	Elevation []float64
}

// Index returns the flat buffer index of (x, y).
func (g ElevationGrid) Index(x, y int) int {
	return y*g.Size + x
}

// CellCount returns the number of cells in the grid.
func (g ElevationGrid) CellCount() int {
	return g.Size * g.Size
}

// IsOcean reports whether the cell at flat index i lies below sea level.
func (g ElevationGrid) IsOcean(i int) bool {
	return g.Elevation[i] < g.SeaLevel
}

// ClimateGrid extends an elevation grid with the temperature and humidity passes.
// Humidity is nil until GenerateHumidity has run.
type ClimateGrid struct {
	ElevationGrid
	Temperature []float64 // °C
	Humidity    []float64 // 0.0 (arid) to 1.0 (saturated)
}

// World is a finished, immutable generation snapshot.
// It is never modified after being returned by Generate.
type World struct {
	ID          uuid.UUID
	Seed        int64 // Master seed actually used
	Config      GenConfig
	GeneratedAt time.Time
	Elapsed     time.Duration

	ClimateGrid
	Biomes []Biome

	// TerritoryIDs holds the owner of each cell, 0 for ocean or unclaimed.
	TerritoryIDs []int
	// Territories is indexed by territory ID; entry 0 is reserved.
	Territories []Territory
}

// Cell is a read-only view of one grid cell.
type Cell struct {
	Coord
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Elevation   float64 `json:"elevation"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Biome       Biome   `json:"biome"`
	TerritoryID int     `json:"territory_id"`
}

// InBounds returns true if (x, y) addresses a cell without wrapping.
func (w *World) InBounds(x, y int) bool {
	return x >= 0 && x < w.Size && y >= 0 && y < w.Size
}

// Cell returns the cell at (x, y), or false if out of bounds.
func (w *World) Cell(x, y int) (Cell, bool) {
	if !w.InBounds(x, y) {
		return Cell{}, false
	}
	i := w.Index(x, y)
	lat, lon := LatLon(x, y, w.Size)
	return Cell{
		Coord:       Coord{X: x, Y: y},
		Lat:         lat,
		Lon:         lon,
		Elevation:   w.Elevation[i],
		Temperature: w.Temperature[i],
		Humidity:    w.Humidity[i],
		Biome:       w.Biomes[i],
		TerritoryID: w.TerritoryIDs[i],
	}, true
}

// Territory returns the territory with the given ID, or false for 0 and unknown IDs.
func (w *World) Territory(id int) (Territory, bool) {
	if id <= 0 || id >= len(w.Territories) {
		return Territory{}, false
	}
	return w.Territories[id], true
}

// IsBorder reports whether the land cell at (x, y) touches ocean or a cell
// owned by a different territory. Ocean and out-of-bounds cells are never borders.
func (w *World) IsBorder(x, y int) bool {
	if !w.InBounds(x, y) {
		return false
	}
	i := w.Index(x, y)
	if w.IsOcean(i) {
		return false
	}
	owner := w.TerritoryIDs[i]
	var buf [4]int
	for _, n := range appendNeighbors(buf[:0], i, w.Size) {
		if w.IsOcean(n) || w.TerritoryIDs[n] != owner {
			return true
		}
	}
	return false
}

// String returns a summary of the world.
func (w *World) String() string {
	return fmt.Sprintf("World(id=%s, seed=%d, size=%d, territories=%d)",
		w.ID, w.Seed, w.Size, len(w.Territories)-1)
}
