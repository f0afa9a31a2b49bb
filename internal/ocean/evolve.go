package ocean

import (
	"OceanFFT/internal/compute"
	"fmt"
	"math"
)

// Channels are the per-frame frequency-domain fields, one per output axis.
// Slope channels exist only in spectral normal mode.
type Channels struct {
	N      int
	Height []complex128
	DispX  []complex128
	DispZ  []complex128
	SlopeX []complex128
	SlopeZ []complex128
}

// NewChannels allocates the fields for an N×N grid.
func NewChannels(n int, slopes bool) *Channels {
	c := &Channels{
		N:      n,
		Height: make([]complex128, n*n),
		DispX:  make([]complex128, n*n),
		DispZ:  make([]complex128, n*n),
	}
	if slopes {
		c.SlopeX = make([]complex128, n*n)
		c.SlopeZ = make([]complex128, n*n)
	}
	return c
}

// HasSlopes reports whether the slope channels are allocated.
func (c *Channels) HasSlopes() bool {
	return c.SlopeX != nil && c.SlopeZ != nil
}

// Fields lists the allocated channels in transform order.
func (c *Channels) Fields() [][]complex128 {
	out := [][]complex128{c.DispX, c.Height, c.DispZ}
	if c.HasSlopes() {
		out = append(out, c.SlopeX, c.SlopeZ)
	}
	return out
}

// Evolve writes h̃(k,t) = ĥ₀(k)e^{iωt} + conj(ĥ₀(−k))e^{−iωt} into the height
// channel and the choppy displacement −i·k̂·h̃·λ into the horizontal ones.
// Components along an axis whose index is the Nyquist frequency have no
// conjugate partner and are zeroed so the spatial result stays real.
func Evolve(dev *compute.Dispatcher, s *Spectrum, p Params, t float64, out *Channels) error {
	n := s.N
	if out.N != n {
		return fmt.Errorf("ocean: channels sized for N=%d, spectrum for N=%d", out.N, n)
	}
	chop := complex(p.Choppiness, 0)
	slopes := out.HasSlopes()

	return dev.Dispatch("spectrum.evolve", n, func(z int) {
		for x := 0; x < n; x++ {
			i := z*n + x
			sin, cos := math.Sincos(s.Omega[i] * t)
			h0 := s.H0[i]
			h0m := s.H0Minus[i]
			h := h0*complex(cos, sin) + complex(real(h0m), -imag(h0m))*complex(cos, -sin)
			out.Height[i] = h

			k := s.KLen[i]
			var dx, dz, sx, sz complex128
			if k > 0 {
				if x != 0 {
					dx = complex(0, -s.KX[i]/k) * h * chop
					sx = complex(0, s.KX[i]) * h
				}
				if z != 0 {
					dz = complex(0, -s.KZ[i]/k) * h * chop
					sz = complex(0, s.KZ[i]) * h
				}
			}
			out.DispX[i] = dx
			out.DispZ[i] = dz
			if slopes {
				out.SlopeX[i] = sx
				out.SlopeZ[i] = sz
			}
		}
	})
}
