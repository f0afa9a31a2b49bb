// Package noise supplies the uniform random fields the spectrum is drawn from.
// Every source returns four independent row-major n×n fields with values in [0,1).
package noise

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// FieldCount is the number of independent fields a source provides.
const FieldCount = 4

// Source produces FieldCount uniform fields of size n×n.
type Source interface {
	Fields(n int) ([FieldCount][]float64, error)
}

// Reseeder is implemented by sources whose fields are derived from a seed.
// Reseed returns an independent source of the same kind for seed.
type Reseeder interface {
	Source
	Reseed(seed int64) Source
}

// ErrInvalidSize is returned for non-positive field sizes.
var ErrInvalidSize = errors.New("noise: field size must be positive")

func alloc(n int) ([FieldCount][]float64, error) {
	var out [FieldCount][]float64
	if n <= 0 {
		return out, fmt.Errorf("%w: got %d", ErrInvalidSize, n)
	}
	for i := range out {
		out[i] = make([]float64, n*n)
	}
	return out, nil
}

// Seeded draws from a math/rand stream. The same seed yields the same fields.
type Seeded struct {
	Seed int64
}

func NewSeeded(seed int64) *Seeded {
	return &Seeded{Seed: seed}
}

func (s *Seeded) Reseed(seed int64) Source {
	return NewSeeded(seed)
}

func (s *Seeded) Fields(n int) ([FieldCount][]float64, error) {
	out, err := alloc(n)
	if err != nil {
		return out, err
	}
	rng := rand.New(rand.NewSource(s.Seed))
	for f := range out {
		for i := range out[f] {
			out[f][i] = rng.Float64()
		}
	}
	return out, nil
}

// Constant fills every sample with the same value, clamped into [0,1).
type Constant float64

func (c Constant) Fields(n int) ([FieldCount][]float64, error) {
	out, err := alloc(n)
	if err != nil {
		return out, err
	}
	v := clampUnit(float64(c))
	for f := range out {
		for i := range out[f] {
			out[f][i] = v
		}
	}
	return out, nil
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v >= 1 {
		return math.Nextafter(1, 0)
	}
	return v
}
