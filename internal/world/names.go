package world

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"
)

// Color is an RGB display color. It marshals as "#rrggbb".
type Color color.RGBA

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(b []byte) error {
	var r, g, bl uint8
	if _, err := fmt.Sscanf(string(b), "#%02x%02x%02x", &r, &g, &bl); err != nil {
		return fmt.Errorf("parse color %q: %w", b, err)
	}
	*c = Color{R: r, G: g, B: bl, A: 255}
	return nil
}

// hsvColor converts hue in degrees, saturation and value in [0, 1] to RGB.
func hsvColor(h, s, v float64) Color {
	c := v * s
	hp := h / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))

	var r, g, b float64
	switch {
	case hp < 1:
		r, g = c, x
	case hp < 2:
		r, g = x, c
	case hp < 3:
		g, b = c, x
	case hp < 4:
		g, b = x, c
	case hp < 5:
		r, b = x, c
	default:
		r, b = c, x
	}
	m := v - c
	return Color{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 255,
	}
}

// generateNames produces procedural territory names by combining syllables.
// Once the combinations run thin, names get a numeric suffix to stay unique.
func generateNames(rng *rand.Rand, count int) []string {
	prefixes := []string{
		"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
		"Silver", "Red", "White", "Dark", "Bright", "High", "Low",
		"Old", "New", "Far", "Deep", "Long", "Broad", "Gold", "Frost",
		"Storm", "Thorn", "Elm", "Oak", "Pine", "Copper", "River",
	}
	suffixes := []string{
		"march", "reach", "hold", "mark", "land", "vale", "crown",
		"shire", "moor", "realm", "fell", "wold", "coast", "haven",
		"gard", "heim", "field", "dale", "crest", "watch", "rest",
	}

	used := make(map[string]bool)
	names := make([]string, 0, count)

	for len(names) < count {
		name := prefixes[rng.Intn(len(prefixes))] + suffixes[rng.Intn(len(suffixes))]
		for retry := 0; used[name] && retry < 8; retry++ {
			name = prefixes[rng.Intn(len(prefixes))] + suffixes[rng.Intn(len(suffixes))]
		}
		if used[name] {
			name = fmt.Sprintf("%s %d", name, len(names)+1)
		}
		used[name] = true
		names = append(names, name)
	}

	return names
}
