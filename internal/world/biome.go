package world

// Biome classifies a cell from its elevation, temperature and humidity.
type Biome uint8

const (
	BiomeOcean Biome = iota
	BiomeTundra
	BiomeTaiga
	BiomeGrassland
	BiomeTemperateForest
	BiomeTropicalRainforest
	BiomeDesert
	BiomeSavanna
	BiomeMediterranean
	BiomeMountain
)

// AllBiomes lists every biome in declaration order.
var AllBiomes = [...]Biome{
	BiomeOcean, BiomeTundra, BiomeTaiga, BiomeGrassland, BiomeTemperateForest,
	BiomeTropicalRainforest, BiomeDesert, BiomeSavanna, BiomeMediterranean, BiomeMountain,
}

// Classify determines the biome from environmental parameters.
// Cut points are strict; sea level and mountain level take precedence over climate.
func Classify(elev, temp, humid, seaLevel float64) Biome {
	if elev < seaLevel {
		return BiomeOcean
	}
	if elev > MountainLevel {
		return BiomeMountain
	}

	// Temperature-humidity matrix.
	switch {
	case temp < -10:
		return BiomeTundra
	case temp < 0:
		return BiomeTaiga
	case temp < 15:
		if humid > 0.5 {
			return BiomeTemperateForest
		}
		return BiomeGrassland
	case temp < 25:
		if humid > 0.6 {
			return BiomeTemperateForest
		}
		if humid > 0.3 {
			return BiomeMediterranean
		}
		return BiomeGrassland
	default:
		if humid > 0.7 {
			return BiomeTropicalRainforest
		}
		if humid > 0.3 {
			return BiomeSavanna
		}
		return BiomeDesert
	}
}

// String returns a human-readable name for a biome.
func (b Biome) String() string {
	switch b {
	case BiomeOcean:
		return "Ocean"
	case BiomeTundra:
		return "Tundra"
	case BiomeTaiga:
		return "Taiga"
	case BiomeGrassland:
		return "Grassland"
	case BiomeTemperateForest:
		return "Temperate Forest"
	case BiomeTropicalRainforest:
		return "Tropical Rainforest"
	case BiomeDesert:
		return "Desert"
	case BiomeSavanna:
		return "Savanna"
	case BiomeMediterranean:
		return "Mediterranean"
	case BiomeMountain:
		return "Mountain"
	default:
		return "Unknown"
	}
}

// BiomeCounts returns a summary of biome distribution.
func BiomeCounts(w *World) map[Biome]int {
	counts := make(map[Biome]int)
	for _, b := range w.Biomes {
		counts[b]++
	}
	return counts
}
