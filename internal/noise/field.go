package noise

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// ErrUnknownKind is returned by New and ParseKind for an unrecognized backend.
var ErrUnknownKind = errors.New("unknown noise kind")

// Field is a seeded, immutable noise sampler. Outputs are approximately in [-1, 1].
type Field interface {
	Sample2(x, y float64) float64
	Sample3(x, y, z float64) float64
}

// Kind selects a noise backend.
type Kind uint8

const (
	KindSimplex     Kind = iota // Reference simplex, bit-exact across platforms
	KindOpenSimplex             // OpenSimplex (github.com/ojrac/opensimplex-go)
	KindPerlin                  // Classic Perlin (github.com/aquilax/go-perlin)
)

// Perlin parameters: alpha 2, beta 2, 3 octaves.
const (
	perlinAlpha = 2.0
	perlinBeta  = 2.0
	perlinN     = 3
)

// New constructs a Field of the given kind from a 64-bit seed.
func New(kind Kind, seed int64) (Field, error) {
	switch kind {
	case KindSimplex:
		return NewSimplex(seed), nil
	case KindOpenSimplex:
		return openSimplexField{n: opensimplex.New(seed)}, nil
	case KindPerlin:
		return perlinField{p: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinN, seed)}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
}

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSimplex:
		return "simplex"
	case KindOpenSimplex:
		return "opensimplex"
	case KindPerlin:
		return "perlin"
	default:
		return "unknown"
	}
}

// ParseKind maps a configuration name to a Kind. The empty string is simplex.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "simplex":
		return KindSimplex, nil
	case "opensimplex":
		return KindOpenSimplex, nil
	case "perlin":
		return KindPerlin, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

type openSimplexField struct {
	n opensimplex.Noise
}

func (f openSimplexField) Sample2(x, y float64) float64    { return f.n.Eval2(x, y) }
func (f openSimplexField) Sample3(x, y, z float64) float64 { return f.n.Eval3(x, y, z) }

type perlinField struct {
	p *perlin.Perlin
}

func (f perlinField) Sample2(x, y float64) float64    { return f.p.Noise2D(x, y) }
func (f perlinField) Sample3(x, y, z float64) float64 { return f.p.Noise3D(x, y, z) }

// Valid reports whether k names a known backend.
func (k Kind) Valid() bool {
	return k <= KindPerlin
}
