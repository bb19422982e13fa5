package strategy

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mathrand "math/rand/v2"
)

// RandSource provides the randomness used by Random and Godlike.
// This interface enables dependency injection for deterministic testing.
type RandSource interface {
	// Intn returns a random integer in [0, n). Panics if n <= 0.
	Intn(n int) int
	// Float64 returns a random float in [0.0, 1.0).
	Float64() float64
}

// cryptoRandSource wraps crypto/rand for production use
type cryptoRandSource struct{}

// Intn returns a cryptographically secure random integer in [0, n).
// Panics if n <= 0 (programmer error).
func (cryptoRandSource) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("cryptoRandSource.Intn: n must be positive, got %d", n))
	}
	// rand.Int does not error when using rand.Reader
	// https://pkg.go.dev/crypto/rand#Int
	nBig, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(nBig.Int64())
}

// Float64 draws 53 random bits, the precision of a float64 mantissa.
func (cryptoRandSource) Float64() float64 {
	nBig, _ := rand.Int(rand.Reader, big.NewInt(1<<53))
	return float64(nBig.Int64()) / (1 << 53)
}

// defaultRandSource provides a cryptographically secure random source for production
var defaultRandSource RandSource = cryptoRandSource{}

// seededSource is a reproducible PCG-backed source.
type seededSource struct {
	rng *mathrand.Rand
}

// NewSeededSource returns a deterministic RandSource. Two sources built from
// the same seed produce the same sequence.
func NewSeededSource(seed uint64) RandSource {
	return &seededSource{rng: mathrand.New(mathrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("seededSource.Intn: n must be positive, got %d", n))
	}
	return s.rng.IntN(n)
}

func (s *seededSource) Float64() float64 {
	return s.rng.Float64()
}
