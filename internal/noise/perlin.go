package noise

import (
	"math"

	perlin "github.com/aquilax/go-perlin"
)

// Perlin hashes go-perlin samples into uniforms. Samples are taken at
// irrational offsets so neighbouring cells land in unrelated lattice cells,
// and the fractional part of a large multiple spreads the smooth noise value
// over [0,1).
type Perlin struct {
	Seed int64
}

const (
	perlinAlpha = 2
	perlinBeta  = 2
	perlinN     = 3

	perlinStep    = 1.6180339887
	perlinSpread  = 43758.5453
	perlinFieldDz = 17.31
)

func NewPerlin(seed int64) *Perlin {
	return &Perlin{Seed: seed}
}

func (p *Perlin) Reseed(seed int64) Source {
	return NewPerlin(seed)
}

func (p *Perlin) Fields(n int) ([FieldCount][]float64, error) {
	out, err := alloc(n)
	if err != nil {
		return out, err
	}
	gen := perlin.NewPerlin(perlinAlpha, perlinBeta, perlinN, p.Seed)
	for f := range out {
		z := float64(f) * perlinFieldDz
		for row := 0; row < n; row++ {
			for col := 0; col < n; col++ {
				v := gen.Noise3D(float64(col)*perlinStep+0.5, float64(row)*perlinStep+0.25, z)
				h := v * perlinSpread
				out[f][row*n+col] = clampUnit(h - math.Floor(h))
			}
		}
	}
	return out, nil
}
