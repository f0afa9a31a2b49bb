package ocean

import (
	"OceanFFT/internal/compute"
	"OceanFFT/internal/logger"
	"OceanFFT/internal/noise"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// minUniform keeps Box-Muller away from log(0).
const minUniform = 1e-12

// Spectrum is the initial amplitude pair ĥ₀(k), ĥ₀(−k) over the N×N lattice
// plus per-cell wavevectors and angular frequencies. It is immutable once
// built and regenerated only when the parameters it depends on change.
type Spectrum struct {
	N         int
	PatchSize float64

	KX, KZ, KLen []float64
	Omega        []float64
	H0           []complex128
	H0Minus      []complex128
}

// Wavevector returns k for lattice cell (x, z): 2π(n − N/2)/L per axis.
func Wavevector(x, z, n int, patchSize float64) (float64, float64) {
	dk := 2 * math.Pi / patchSize
	return float64(x-n/2) * dk, float64(z-n/2) * dk
}

// Mirror returns the flat index of the cell holding −k for cell (x, z).
// The Nyquist row and column are their own partners.
func Mirror(x, z, n int) int {
	return ((n-z)%n)*n + (n-x)%n
}

// Phillips evaluates the directional wind spectrum for wavevector k,
// multiplied by the lattice cell area (2π/L)². It is exactly zero at k = 0
// and without wind.
func Phillips(kx, kz float64, p Params) float64 {
	k2 := kx*kx + kz*kz
	if k2 == 0 || p.WindSpeed == 0 || p.Amplitude == 0 {
		return 0
	}
	lw := p.WindSpeed * p.WindSpeed / p.Gravity
	wx, wz := math.Cos(p.WindDirection), math.Sin(p.WindDirection)
	kw := kx*wx + kz*wz
	align := kw * kw / k2

	l := p.SmallWaveCutoff * lw
	dk := 2 * math.Pi / p.PatchSize

	return p.Amplitude * dk * dk *
		math.Exp(-1/(k2*lw*lw)) / (k2 * k2) *
		align *
		math.Exp(-k2*l*l)
}

// Dispersion returns ω(k) = sqrt(g·k·tanh(k·d)), the deep-water
// sqrt(g·k) when depth is 0. With a loop period the result is snapped down
// to a multiple of 2π/T so the animation repeats every T seconds.
func Dispersion(k float64, p Params) float64 {
	w2 := p.Gravity * k
	if p.Depth > 0 {
		w2 *= math.Tanh(k * p.Depth)
	}
	w := math.Sqrt(w2)
	if p.LoopPeriod > 0 {
		w0 := 2 * math.Pi / p.LoopPeriod
		w = math.Floor(w/w0) * w0
	}
	return w
}

// gaussian turns a uniform pair into a standard normal sample (Box-Muller).
func gaussian(u0, u1 float64) float64 {
	if u0 < minUniform {
		u0 = minUniform
	}
	return math.Sqrt(-2*math.Log(u0)) * math.Cos(2*math.Pi*u1)
}

// NewSpectrum runs the initializer: one stage drawing ĥ₀(k) per cell, then
// one stage gathering ĥ₀(−k) from the mirrored cells. The second stage reads
// other rows' output, so it only starts after the first is fenced.
func NewSpectrum(p Params, fields [noise.FieldCount][]float64, dev *compute.Dispatcher) (*Spectrum, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n := p.GridResolution
	for i, f := range fields {
		if len(f) < n*n {
			return nil, fmt.Errorf("ocean: noise field %d has %d samples, need %d", i, len(f), n*n)
		}
	}

	start := time.Now()
	s := &Spectrum{
		N:         n,
		PatchSize: p.PatchSize,
		KX:        make([]float64, n*n),
		KZ:        make([]float64, n*n),
		KLen:      make([]float64, n*n),
		Omega:     make([]float64, n*n),
		H0:        make([]complex128, n*n),
		H0Minus:   make([]complex128, n*n),
	}

	err := dev.Dispatch("spectrum.init", n, func(z int) {
		for x := 0; x < n; x++ {
			i := z*n + x
			kx, kz := Wavevector(x, z, n, p.PatchSize)
			k := math.Hypot(kx, kz)
			s.KX[i], s.KZ[i], s.KLen[i] = kx, kz, k
			s.Omega[i] = Dispersion(k, p)

			ph := Phillips(kx, kz, p)
			if ph == 0 {
				continue
			}
			xr := gaussian(fields[0][i], fields[1][i])
			xi := gaussian(fields[2][i], fields[3][i])
			s.H0[i] = complex(xr, xi) * complex(math.Sqrt(ph/2), 0)
		}
	})
	if err != nil {
		return nil, err
	}

	err = dev.Dispatch("spectrum.mirror", n, func(z int) {
		for x := 0; x < n; x++ {
			s.H0Minus[z*n+x] = s.H0[Mirror(x, z, n)]
		}
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Spectrum initialized",
		zap.Int("n", n),
		zap.Float64("patchSize", p.PatchSize),
		zap.Float64("windSpeed", p.WindSpeed),
		zap.Float64("energy", s.Energy()),
		zap.Duration("elapsed", time.Since(start)))

	return s, nil
}

// Energy is Σ|ĥ₀(k)|², zero for a flat sea.
func (s *Spectrum) Energy() float64 {
	e := 0.0
	for _, h := range s.H0 {
		e += real(h)*real(h) + imag(h)*imag(h)
	}
	return e
}
