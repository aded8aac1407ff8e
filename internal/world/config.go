package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/talgya/mini-planet/internal/noise"
)

// Validation and seeding failures.
var (
	ErrInvalidConfig = errors.New("invalid world config")
	ErrNoLand        = errors.New("no land available")
)

// MaxSize bounds the grid side length so a single run stays within memory.
const MaxSize = 8192

// MaxOctaves bounds fractal detail. Each octave doubles the frequency, so
// past this the finest layer is far below one cell and adds only rounding.
const MaxOctaves = 32

// MountainLevel is the elevation above which land is mountain, for both
// biome classification and territory movement cost.
const MountainLevel = 0.75

// GenConfig holds world generation parameters.
type GenConfig struct {
	Size     int     // Grid side length; cells = Size*Size
	SeaLevel float64 // Elevation threshold for ocean, exclusive (0, 1)
	Scale    float64 // Base frequency of elevation noise
	Octaves  int     // Fractal detail layers for elevation

	GenerateTerritories bool
	NumTerritories      int
	TerritoryNames      []string // Optional, index 0 names territory 1

	Seed    int64      // Master seed (0 = draw one)
	Noise   noise.Kind // Noise backend for all three fields
	Workers int        // Row-band workers per pass (0 = GOMAXPROCS)

	// Territory movement costs by destination terrain (0 = default).
	PlainsCost   float64
	MountainCost float64
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Size:                256,
		SeaLevel:            0.5,
		Scale:               2.0,
		Octaves:             5,
		GenerateTerritories: true,
		NumTerritories:      8,
		Noise:               noise.KindSimplex,
		PlainsCost:          defaultPlainsCost,
		MountainCost:        defaultMountainCost,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Size:                48,
		SeaLevel:            0.5,
		Scale:               1.5,
		Octaves:             3,
		GenerateTerritories: true,
		NumTerritories:      3,
		Seed:                42,
		Noise:               noise.KindSimplex,
		Workers:             2,
		PlainsCost:          defaultPlainsCost,
		MountainCost:        defaultMountainCost,
	}
}

// Validate rejects configurations that would produce a degenerate grid.
// It runs before any allocation.
func (c GenConfig) Validate() error {
	if c.Size <= 0 || c.Size > MaxSize {
		return fmt.Errorf("%w: size %d outside (0, %d]", ErrInvalidConfig, c.Size, MaxSize)
	}
	// Negated comparisons also reject NaN.
	if !(c.SeaLevel > 0 && c.SeaLevel < 1) {
		return fmt.Errorf("%w: sea level %v outside (0, 1)", ErrInvalidConfig, c.SeaLevel)
	}
	if !(c.Scale > 0) || math.IsInf(c.Scale, 0) {
		return fmt.Errorf("%w: scale %v must be positive and finite", ErrInvalidConfig, c.Scale)
	}
	if c.Octaves < 1 || c.Octaves > MaxOctaves {
		return fmt.Errorf("%w: octaves %d outside [1, %d]", ErrInvalidConfig, c.Octaves, MaxOctaves)
	}
	// The finest octave samples at Scale*2^(Octaves-1); it must stay finite.
	if math.IsInf(math.Ldexp(c.Scale, c.Octaves-1), 0) {
		return fmt.Errorf("%w: scale %v overflows at %d octaves", ErrInvalidConfig, c.Scale, c.Octaves)
	}
	if c.GenerateTerritories && c.NumTerritories < 0 {
		return fmt.Errorf("%w: territory count %d < 0", ErrInvalidConfig, c.NumTerritories)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d < 0", ErrInvalidConfig, c.Workers)
	}
	for _, cost := range []float64{c.PlainsCost, c.MountainCost} {
		if !(cost >= 0) || math.IsInf(cost, 0) {
			return fmt.Errorf("%w: movement cost %v must be finite and non-negative", ErrInvalidConfig, cost)
		}
	}
	if !c.Noise.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, noise.ErrUnknownKind)
	}
	return nil
}
