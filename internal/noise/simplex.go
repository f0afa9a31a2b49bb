package noise

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Simplex hashes OpenSimplex samples into uniforms the same way Perlin does.
// Each field is a separate slice of the 3D noise volume.
type Simplex struct {
	Seed int64
}

const (
	simplexStep    = 2.2360679775
	simplexSpread  = 24634.6345
	simplexFieldDz = 11.07
)

func NewSimplex(seed int64) *Simplex {
	return &Simplex{Seed: seed}
}

func (s *Simplex) Reseed(seed int64) Source {
	return NewSimplex(seed)
}

func (s *Simplex) Fields(n int) ([FieldCount][]float64, error) {
	out, err := alloc(n)
	if err != nil {
		return out, err
	}
	gen := opensimplex.New(s.Seed)
	for f := range out {
		z := float64(f) * simplexFieldDz
		for row := 0; row < n; row++ {
			for col := 0; col < n; col++ {
				v := gen.Eval3(float64(col)*simplexStep+0.3, float64(row)*simplexStep+0.7, z)
				h := v * simplexSpread
				out[f][row*n+col] = clampUnit(h - math.Floor(h))
			}
		}
	}
	return out, nil
}
