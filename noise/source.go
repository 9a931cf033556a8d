package noise

import (
	"fmt"
	"hash/fnv"

	"github.com/ojrac/opensimplex-go"
)

// Source is a coherent noise basis returning values in [-1, 1].
// Both *Perlin and the OpenSimplex source satisfy it.
type Source interface {
	Eval2(x, y float64) float64
	Eval3(x, y, z float64) float64
}

// Basis selects the noise algorithm behind a Source.
type Basis uint8

const (
	BasisPerlin Basis = iota
	BasisSimplex
)

// String returns the config name of the basis.
func (b Basis) String() string {
	switch b {
	case BasisPerlin:
		return "perlin"
	case BasisSimplex:
		return "simplex"
	default:
		return "unknown"
	}
}

// ParseBasis parses a basis name. The empty string selects Perlin.
func ParseBasis(s string) (Basis, error) {
	switch s {
	case "", "perlin":
		return BasisPerlin, nil
	case "simplex", "opensimplex":
		return BasisSimplex, nil
	default:
		return BasisPerlin, fmt.Errorf("unknown noise basis %q", s)
	}
}

// NewSource creates a seeded Source of the given basis.
func NewSource(b Basis, seed int64) Source {
	if b == BasisSimplex {
		return NewSimplex(seed)
	}
	return NewPerlin(seed)
}

// Simplex wraps OpenSimplex noise, clamped to [-1, 1].
type Simplex struct {
	n opensimplex.Noise
}

// NewSimplex creates an OpenSimplex source.
func NewSimplex(seed int64) *Simplex {
	return &Simplex{n: opensimplex.New(seed)}
}

// Eval2 returns 2D noise in [-1, 1].
func (s *Simplex) Eval2(x, y float64) float64 {
	return clampSigned(s.n.Eval2(x, y))
}

// Eval3 returns 3D noise in [-1, 1].
func (s *Simplex) Eval3(x, y, z float64) float64 {
	return clampSigned(s.n.Eval3(x, y, z))
}

// Normalize maps a raw [-1, 1] sample to [0, 1].
func Normalize(v float64) float64 {
	return clamp01((v + 1) * 0.5)
}

// HashSeed mixes an identity string into a base seed with FNV-1a,
// so each named body gets a stable, distinct surface.
func HashSeed(base int64, identity string) int64 {
	h := fnv.New64a()
	h.Write([]byte(identity))
	return base ^ int64(h.Sum64()&0x7fffffffffffffff)
}
