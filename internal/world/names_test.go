package world

import "testing"

func TestHSVColor(t *testing.T) {
	tests := []struct {
		h, s, v float64
		want    Color
	}{
		{0, 1, 1, Color{R: 255, A: 255}},
		{60, 1, 1, Color{R: 255, G: 255, A: 255}},
		{120, 1, 1, Color{G: 255, A: 255}},
		{180, 1, 0.5, Color{G: 128, B: 128, A: 255}},
		{240, 1, 1, Color{B: 255, A: 255}},
		{300, 1, 1, Color{R: 255, B: 255, A: 255}},
		{90, 0, 1, Color{R: 255, G: 255, B: 255, A: 255}},
		{200, 0.7, 0, Color{A: 255}},
	}
	for _, tt := range tests {
		if got := hsvColor(tt.h, tt.s, tt.v); got != tt.want {
			t.Errorf("hsvColor(%v, %v, %v) = %s, want %s", tt.h, tt.s, tt.v, got.Hex(), tt.want.Hex())
		}
	}
}

func TestTerritoryColorsDistinct(t *testing.T) {
	const size, count = 8, 16
	capitals := make([]int, count)
	for k := range capitals {
		capitals[k] = k
	}
	territories := buildRegistry(size, capitals, make([]int, size*size), nil, newTestRand(9))

	seen := make(map[string]int)
	for _, tr := range territories[1:] {
		hex := tr.Color.Hex()
		if prev, dup := seen[hex]; dup {
			t.Errorf("territories %d and %d share color %s", prev, tr.ID, hex)
		}
		seen[hex] = tr.ID
	}
}

func TestColorTextRoundTrip(t *testing.T) {
	c := Color{R: 0x12, G: 0xab, B: 0xef, A: 255}
	text, err := c.MarshalText()
	if err != nil || string(text) != "#12abef" {
		t.Fatalf("MarshalText = %q, %v", text, err)
	}
	var back Color
	if err := back.UnmarshalText(text); err != nil || back != c {
		t.Errorf("UnmarshalText = %+v, %v, want %+v", back, err, c)
	}
	if err := back.UnmarshalText([]byte("teal")); err == nil {
		t.Error("UnmarshalText accepted a non-hex color")
	}
}
