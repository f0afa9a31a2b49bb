// Package ocean synthesizes a Tessendorf ocean: a Phillips spectrum drawn
// from noise, evolved in time with the dispersion relation and inverted with
// a 2D FFT into displacement, normal and Jacobian maps every frame.
package ocean

import (
	"OceanFFT/internal/fft"
	"fmt"
	"math"
)

const (
	// DefaultGravity is standard gravitational acceleration in m/s².
	DefaultGravity = 9.81

	NormalsFiniteDifference = "finite_difference"
	NormalsSpectral         = "spectral"
)

// Params is an immutable snapshot of the simulation tunables. A frame only
// ever reads one snapshot.
type Params struct {
	GridResolution int     // N, power of two
	PatchSize      float64 // L, world size of one tile in metres
	WindSpeed      float64 // m/s
	WindDirection  float64 // radians, 0 = +X
	Choppiness     float64 // horizontal displacement scale
	// Amplitude is the Phillips constant A. The spectrum is evaluated per
	// lattice cell (density × Δk²), so A does not depend on N or L.
	Amplitude float64
	// SmallWaveCutoff is the damping length l as a fraction of the largest
	// wind-driven wave L_w = V²/g.
	SmallWaveCutoff float64
	Gravity         float64
	Depth           float64 // 0 = deep water
	LoopPeriod      float64 // seconds; 0 disables frequency quantization
	// Seed selects the noise realization. Changing it redraws the spectrum
	// from a reseeded source.
	Seed            int64
	FFTStrategy     string
	NormalMode      string
}

// DefaultParams returns a 256² grid over a 1 km patch with a 20 m/s wind.
func DefaultParams() Params {
	return Params{
		GridResolution:  256,
		PatchSize:       1000,
		WindSpeed:       20,
		WindDirection:   0,
		Choppiness:      1,
		Amplitude:       2e-4,
		SmallWaveCutoff: 0.001,
		Gravity:         DefaultGravity,
		FFTStrategy:     fft.StrategyButterfly,
		NormalMode:      NormalsFiniteDifference,
	}
}

// ConfigError reports a rejected parameter with the limit it violated.
type ConfigError struct {
	Param string
	Value any
	Limit string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("ocean: invalid %s %v: %s", e.Param, e.Value, e.Limit)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate rejects parameters that would produce a wrong or undefined
// spectrum. It runs before anything is dispatched.
func (p Params) Validate() error {
	if _, ok := fft.Log2(p.GridResolution); !ok || p.GridResolution > fft.MaxSize {
		return &ConfigError{"grid_resolution", p.GridResolution, fmt.Sprintf("must be a power of two in [2, %d]", fft.MaxSize)}
	}
	if !finite(p.PatchSize) || p.PatchSize <= 0 {
		return &ConfigError{"patch_size", p.PatchSize, "must be a finite value > 0"}
	}
	if !finite(p.WindSpeed) || p.WindSpeed < 0 {
		return &ConfigError{"wind_speed", p.WindSpeed, "must be a finite value >= 0"}
	}
	if !finite(p.WindDirection) {
		return &ConfigError{"wind_direction", p.WindDirection, "must be finite"}
	}
	if !finite(p.Choppiness) {
		return &ConfigError{"choppiness", p.Choppiness, "must be finite"}
	}
	if !finite(p.Amplitude) || p.Amplitude < 0 {
		return &ConfigError{"amplitude", p.Amplitude, "must be a finite value >= 0"}
	}
	if !finite(p.SmallWaveCutoff) || p.SmallWaveCutoff < 0 {
		return &ConfigError{"small_wave_cutoff", p.SmallWaveCutoff, "must be a finite value >= 0"}
	}
	if !finite(p.Gravity) || p.Gravity <= 0 {
		return &ConfigError{"gravity", p.Gravity, "must be a finite value > 0"}
	}
	if !finite(p.Depth) || p.Depth < 0 {
		return &ConfigError{"depth", p.Depth, "must be a finite value >= 0"}
	}
	if !finite(p.LoopPeriod) || p.LoopPeriod < 0 {
		return &ConfigError{"loop_period", p.LoopPeriod, "must be a finite value >= 0"}
	}
	switch p.FFTStrategy {
	case fft.StrategyPingPong, fft.StrategyButterfly:
	default:
		return &ConfigError{"fft_strategy", p.FFTStrategy, "must be pingpong or butterfly"}
	}
	switch p.NormalMode {
	case NormalsFiniteDifference, NormalsSpectral:
	default:
		return &ConfigError{"normal_mode", p.NormalMode, "must be finite_difference or spectral"}
	}
	return nil
}

// NeedsTable reports whether moving from prev to p requires a new FFT engine
// (lookup table and working buffers).
func (p Params) NeedsTable(prev Params) bool {
	return p.GridResolution != prev.GridResolution || p.FFTStrategy != prev.FFTStrategy
}

// NeedsSpectrum reports whether moving from prev to p requires re-running
// the spectrum initializer.
func (p Params) NeedsSpectrum(prev Params) bool {
	return p.GridResolution != prev.GridResolution ||
		p.PatchSize != prev.PatchSize ||
		p.WindSpeed != prev.WindSpeed ||
		p.WindDirection != prev.WindDirection ||
		p.Amplitude != prev.Amplitude ||
		p.SmallWaveCutoff != prev.SmallWaveCutoff ||
		p.Gravity != prev.Gravity ||
		p.Depth != prev.Depth ||
		p.LoopPeriod != prev.LoopPeriod ||
		p.Seed != prev.Seed
}

// CellSize is the world distance between neighbouring samples, L/N.
func (p Params) CellSize() float64 {
	return p.PatchSize / float64(p.GridResolution)
}
