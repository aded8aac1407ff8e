// World generation using layered noise sampled on a sphere.
// Passes run in dependency order: elevation, temperature (reads elevation),
// humidity (reads elevation and temperature), biomes, then territories.
package world

import (
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/mini-planet/internal/entropy"
	"github.com/talgya/mini-planet/internal/noise"
)

// Field base frequencies and climate constants.
const (
	temperatureFrequency = 0.5  // Smooth, continent-scale temperature systems
	temperatureVariation = 10.0 // ±10 °C noise perturbation
	humidityFrequency    = 0.8

	equatorTemp   = 30.0    // °C at the equator
	latitudeRange = 60.0    // °C drop from equator to pole
	peakAltitude  = 8000.0  // Metres at normalized elevation 1.0
	lapseRate     = -0.0065 // °C per metre
)

// Seed offsets for independent layers derived from the master seed.
const (
	elevationSeedOffset   = 0
	temperatureSeedOffset = 1
	humiditySeedOffset    = 2
	territorySeedOffset   = 100
)

// Generate runs the full pipeline and returns a new World.
// The config is validated before anything is allocated; on error no World is returned.
func Generate(cfg GenConfig) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = entropy.Seed(nil)
	}
	start := time.Now()

	// Three noise generators for independent layers.
	elevNoise, err := noise.New(cfg.Noise, seed+elevationSeedOffset)
	if err != nil {
		return nil, fmt.Errorf("elevation noise: %w", err)
	}
	tempNoise, err := noise.New(cfg.Noise, seed+temperatureSeedOffset)
	if err != nil {
		return nil, fmt.Errorf("temperature noise: %w", err)
	}
	humidNoise, err := noise.New(cfg.Noise, seed+humiditySeedOffset)
	if err != nil {
		return nil, fmt.Errorf("humidity noise: %w", err)
	}

	eg := GenerateElevation(cfg, elevNoise)
	cg := GenerateTemperature(eg, tempNoise, cfg.Workers)
	cg = GenerateHumidity(cg, humidNoise, cfg.Workers)
	biomes := ClassifyGrid(cg, cfg.Workers)

	w := &World{
		ID:          uuid.New(),
		Seed:        seed,
		Config:      cfg,
		ClimateGrid: cg,
		Biomes:      biomes,
	}
	w.Config.Seed = seed

	if cfg.GenerateTerritories && cfg.NumTerritories > 0 {
		tm, err := GrowTerritories(eg, TerritoryOptions{
			Count:        cfg.NumTerritories,
			Names:        cfg.TerritoryNames,
			PlainsCost:   cfg.PlainsCost,
			MountainCost: cfg.MountainCost,
			Seed:         seed + territorySeedOffset,
		})
		if err != nil {
			return nil, err
		}
		w.TerritoryIDs = tm.IDs
		w.Territories = tm.Territories
	} else {
		w.TerritoryIDs = make([]int, eg.CellCount())
		w.Territories = make([]Territory, 1)
	}

	w.GeneratedAt = time.Now()
	w.Elapsed = w.GeneratedAt.Sub(start)
	return w, nil
}

// GenerateElevation fills elevation with fractal noise sampled on the sphere,
// normalized to [0, 1].
func GenerateElevation(cfg GenConfig, field noise.Field) ElevationGrid {
	g := ElevationGrid{
		Size:      cfg.Size,
		SeaLevel:  cfg.SeaLevel,
		Elevation: make([]float64, cfg.Size*cfg.Size),
	}
	forEachRow(g.Size, cfg.Workers, func(y int) {
		for x := 0; x < g.Size; x++ {
			p := SpherePoint(x, y, g.Size)
			e := octaveNoise3(field, p, cfg.Octaves, cfg.Scale, 0.5)
			g.Elevation[g.Index(x, y)] = clamp01((e + 1) / 2)
		}
	})
	return g
}

// GenerateTemperature derives temperature in °C from latitude, altitude above
// sea level and a noise perturbation. It consumes the finished elevation grid.
func GenerateTemperature(g ElevationGrid, field noise.Field, workers int) ClimateGrid {
	cg := ClimateGrid{
		ElevationGrid: g,
		Temperature:   make([]float64, g.CellCount()),
	}
	size := float64(g.Size)
	forEachRow(g.Size, workers, func(y int) {
		// 0 at the equator, 1 at the poles.
		latNorm := math.Abs(float64(y)/size-0.5) * 2
		baseTemp := equatorTemp - latNorm*latitudeRange

		for x := 0; x < g.Size; x++ {
			i := g.Index(x, y)
			elev := g.Elevation[i]

			altMod := 0.0
			if elev > g.SeaLevel {
				altMod = (elev - g.SeaLevel) * (1.0 / (1.0 - g.SeaLevel)) * peakAltitude * lapseRate
			}

			p := SpherePoint(x, y, g.Size).Mul(temperatureFrequency)
			n := field.Sample3(p[0], p[1], p[2]) * temperatureVariation

			cg.Temperature[i] = baseTemp + altMod + n
		}
	})
	return cg
}

// GenerateHumidity fills humidity in [0, 1]. Ocean is saturated; land humidity
// is noise scaled by how much moisture the local air can hold.
func GenerateHumidity(cg ClimateGrid, field noise.Field, workers int) ClimateGrid {
	cg.Humidity = make([]float64, cg.CellCount())
	forEachRow(cg.Size, workers, func(y int) {
		for x := 0; x < cg.Size; x++ {
			i := cg.Index(x, y)
			if cg.IsOcean(i) {
				cg.Humidity[i] = 1.0
				continue
			}

			p := SpherePoint(x, y, cg.Size).Mul(humidityFrequency)
			base := (field.Sample3(p[0], p[1], p[2]) + 1) / 2.0

			// Warm air holds more moisture.
			tempMod := (cg.Temperature[i] + 30) / 70.0

			cg.Humidity[i] = clamp01(base * tempMod)
		}
	})
	return cg
}

// ClassifyGrid assigns a biome to every cell of a finished climate grid.
func ClassifyGrid(cg ClimateGrid, workers int) []Biome {
	biomes := make([]Biome, cg.CellCount())
	forEachRow(cg.Size, workers, func(y int) {
		for x := 0; x < cg.Size; x++ {
			i := cg.Index(x, y)
			biomes[i] = Classify(cg.Elevation[i], cg.Temperature[i], cg.Humidity[i], cg.SeaLevel)
		}
	})
	return biomes
}

// octaveNoise3 generates fractal noise by layering multiple frequencies.
// The result is normalized by the total amplitude.
func octaveNoise3(field noise.Field, p mgl64.Vec3, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += field.Sample3(p[0]*frequency, p[1]*frequency, p[2]*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// forEachRow calls fn for every row, splitting rows into disjoint bands that
// run concurrently. Each band writes only its own rows.
func forEachRow(size, workers int, fn func(y int)) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > size {
		workers = size
	}
	if workers <= 1 {
		for y := 0; y < size; y++ {
			fn(y)
		}
		return
	}

	band := (size + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for y0 := 0; y0 < size; y0 += band {
		y1 := min(y0+band, size)
		g.Go(func() error {
			for y := y0; y < y1; y++ {
				fn(y)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// clamp01 limits v to [0, 1]. NaN maps to 0.
func clamp01(v float64) float64 {
	if !(v >= 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
