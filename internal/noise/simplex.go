// Package noise provides seeded gradient noise samplers for terrain fields.
// Simplex is the reference backend: identical seeds give bit-identical output.
package noise

import (
	"math"
	"math/rand"
)

// Gradient directions: the 12 edge midpoints of a cube.
// The 2D sampler uses only the first two components.
var grad3 = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

// Skew and unskew factors.
var (
	f2 = 0.5 * (math.Sqrt(3.0) - 1.0)
	g2 = (3.0 - math.Sqrt(3.0)) / 6.0
)

const (
	f3 = 1.0 / 3.0
	g3 = 1.0 / 6.0
)

// Simplex samples 2D and 3D simplex noise from a seeded permutation table.
// It is immutable after construction and safe for concurrent use.
type Simplex struct {
	perm [512]int
}

// NewSimplex builds the permutation table with a seeded Fisher–Yates shuffle
// of 0..255, replicated to 512 entries so lookups never wrap.
func NewSimplex(seed int64) *Simplex {
	rng := rand.New(rand.NewSource(seed))

	var table [256]int
	for i := range table {
		table[i] = i
	}
	for i := 255; i > 0; i-- {
		j := rng.Intn(i + 1)
		table[i], table[j] = table[j], table[i]
	}

	s := &Simplex{}
	for i := range s.perm {
		s.perm[i] = table[i&255]
	}
	return s
}

// Permutation returns a copy of the 512-entry lookup table.
func (s *Simplex) Permutation() [512]int {
	return s.perm
}

// Sample2 returns 2D simplex noise at (x, y), approximately in [-1, 1].
func (s *Simplex) Sample2(xin, yin float64) float64 {
	sk := (xin + yin) * f2
	i := fastFloor(xin + sk)
	j := fastFloor(yin + sk)
	t := float64(i+j) * g2
	x0 := xin - (float64(i) - t)
	y0 := yin - (float64(j) - t)

	// Lower or upper triangle of the skewed cell.
	i1, j1 := 0, 1
	if x0 > y0 {
		i1, j1 = 1, 0
	}

	x1 := x0 - float64(i1) + g2
	y1 := y0 - float64(j1) + g2
	x2 := x0 - 1.0 + 2.0*g2
	y2 := y0 - 1.0 + 2.0*g2

	ii := i & 255
	jj := j & 255
	p := &s.perm
	gi0 := p[ii+p[jj]] % 12
	gi1 := p[ii+i1+p[jj+j1]] % 12
	gi2 := p[ii+1+p[jj+1]] % 12

	n := corner2(gi0, x0, y0) + corner2(gi1, x1, y1) + corner2(gi2, x2, y2)
	return 70.0 * n
}

// Sample3 returns 3D simplex noise at (x, y, z), approximately in [-1, 1].
func (s *Simplex) Sample3(xin, yin, zin float64) float64 {
	sk := (xin + yin + zin) * f3
	i := fastFloor(xin + sk)
	j := fastFloor(yin + sk)
	k := fastFloor(zin + sk)
	t := float64(i+j+k) * g3
	x0 := xin - (float64(i) - t)
	y0 := yin - (float64(j) - t)
	z0 := zin - (float64(k) - t)

	// Pick the simplex by ordering the local coordinates.
	var i1, j1, k1, i2, j2, k2 int
	if x0 >= y0 {
		switch {
		case y0 >= z0:
			i1, j1, k1, i2, j2, k2 = 1, 0, 0, 1, 1, 0
		case x0 >= z0:
			i1, j1, k1, i2, j2, k2 = 1, 0, 0, 1, 0, 1
		default:
			i1, j1, k1, i2, j2, k2 = 0, 0, 1, 1, 0, 1
		}
	} else {
		switch {
		case y0 < z0:
			i1, j1, k1, i2, j2, k2 = 0, 0, 1, 0, 1, 1
		case x0 < z0:
			i1, j1, k1, i2, j2, k2 = 0, 1, 0, 0, 1, 1
		default:
			i1, j1, k1, i2, j2, k2 = 0, 1, 0, 1, 1, 0
		}
	}

	x1 := x0 - float64(i1) + g3
	y1 := y0 - float64(j1) + g3
	z1 := z0 - float64(k1) + g3
	x2 := x0 - float64(i2) + 2.0*g3
	y2 := y0 - float64(j2) + 2.0*g3
	z2 := z0 - float64(k2) + 2.0*g3
	x3 := x0 - 1.0 + 3.0*g3
	y3 := y0 - 1.0 + 3.0*g3
	z3 := z0 - 1.0 + 3.0*g3

	ii := i & 255
	jj := j & 255
	kk := k & 255
	p := &s.perm
	gi0 := p[ii+p[jj+p[kk]]] % 12
	gi1 := p[ii+i1+p[jj+j1+p[kk+k1]]] % 12
	gi2 := p[ii+i2+p[jj+j2+p[kk+k2]]] % 12
	gi3 := p[ii+1+p[jj+1+p[kk+1]]] % 12

	n := corner3(gi0, x0, y0, z0) + corner3(gi1, x1, y1, z1) +
		corner3(gi2, x2, y2, z2) + corner3(gi3, x3, y3, z3)
	return 32.0 * n
}

func corner2(gi int, x, y float64) float64 {
	t := 0.5 - x*x - y*y
	if t < 0 {
		return 0
	}
	t *= t
	g := &grad3[gi]
	return t * t * (g[0]*x + g[1]*y)
}

func corner3(gi int, x, y, z float64) float64 {
	t := 0.6 - x*x - y*y - z*z
	if t < 0 {
		return 0
	}
	t *= t
	g := &grad3[gi]
	return t * t * (g[0]*x + g[1]*y + g[2]*z)
}

// fastFloor rounds toward negative infinity.
func fastFloor(x float64) int {
	xi := int(x)
	if x < float64(xi) {
		return xi - 1
	}
	return xi
}
