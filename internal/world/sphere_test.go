package world

import (
	"math"
	"testing"
)

func TestSpherePointOnUnitSphere(t *testing.T) {
	const size = 64
	for y := 0; y < size; y += 3 {
		for x := 0; x < size; x += 5 {
			p := SpherePoint(x, y, size)
			r := p.Len()
			if math.Abs(r-1) > 1e-12 {
				t.Errorf("SpherePoint(%d, %d) radius = %v, want 1", x, y, r)
			}
		}
	}
}

func TestSpherePointLongitudeSeam(t *testing.T) {
	// Column size (one past the last) lands exactly on column 0.
	const size = 32
	for y := 0; y < size; y++ {
		a := SpherePoint(0, y, size)
		b := SpherePoint(size, y, size)
		if !a.ApproxEqualThreshold(b, 1e-12) {
			t.Errorf("row %d: seam points differ: %v vs %v", y, a, b)
		}
	}
}

func TestSpherePointPoles(t *testing.T) {
	const size = 16
	south := SpherePoint(5, 0, size)
	if math.Abs(south.Z()+1) > 1e-12 {
		t.Errorf("row 0 z = %v, want -1", south.Z())
	}
	equator := SpherePoint(0, size/2, size)
	if math.Abs(equator.Z()) > 1e-12 || math.Abs(equator.X()-1) > 1e-12 {
		t.Errorf("equator at column 0 = %v, want (1, 0, 0)", equator)
	}
	// Rows approach but never wrap past the far pole.
	last := SpherePoint(0, size-1, size)
	if last.Z() >= 1 || last.Z() <= equator.Z() {
		t.Errorf("last row z = %v, want in (0, 1)", last.Z())
	}
}

func TestLatLon(t *testing.T) {
	lat, lon := LatLon(0, 0, 360)
	if lat != 90 || lon != -180 {
		t.Errorf("LatLon(0, 0) = %v, %v, want 90, -180", lat, lon)
	}
	lat, lon = LatLon(180, 180, 360)
	if lat != 0 || lon != 0 {
		t.Errorf("LatLon(180, 180) = %v, %v, want 0, 0", lat, lon)
	}
}

func TestSpherePointScaleIsExact(t *testing.T) {
	// Frequency scaling must match per-component multiplication bit for bit.
	p := SpherePoint(7, 3, 32)
	got := p.Mul(0.8)
	want := [3]float64{p[0] * 0.8, p[1] * 0.8, p[2] * 0.8}
	if [3]float64(got) != want {
		t.Errorf("Mul = %v, want %v", got, want)
	}
}
