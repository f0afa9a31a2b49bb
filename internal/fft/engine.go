// Package fft implements the 2D radix-2 transform used to turn ocean spectra
// into spatial fields. Two strategies share the same contract: PingPong
// computes butterfly indices and twiddles on every pass, Butterfly gathers
// them from a precomputed table.
//
// Fields are row-major N×N slices transformed in place. Each 1D pass is one
// dispatch on the compute device; rows finish before columns start.
package fft

import (
	"OceanFFT/internal/compute"
	"fmt"
)

// Direction selects the exponent sign.
type Direction int

const (
	// Inverse is the unnormalized synthesis sum with e^{+2πi·kx/N}.
	Inverse Direction = iota
	// Forward uses e^{-2πi·kx/N} and scales by 1/N², so Inverse undoes it.
	Forward
)

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "inverse"
}

// Strategy names accepted by New.
const (
	StrategyPingPong  = "pingpong"
	StrategyButterfly = "butterfly"
)

// Engine transforms N×N complex fields.
// An Engine owns scratch buffers and must not be used from two goroutines at once.
type Engine interface {
	N() int
	Strategy() string
	Inverse(field []complex128) error
	Forward(field []complex128) error
}

// ResolutionMismatchError reports a field whose size does not match the
// engine, typically a buffer allocated before a resolution change.
type ResolutionMismatchError struct {
	N    int
	Want int
	Got  int
}

func (e *ResolutionMismatchError) Error() string {
	return fmt.Sprintf("fft: field has %d samples, engine for N=%d expects %d", e.Got, e.N, e.Want)
}

// New returns the engine for the named strategy.
func New(strategy string, n int, dev *compute.Dispatcher) (Engine, error) {
	switch strategy {
	case StrategyPingPong:
		return NewPingPong(n, dev)
	case StrategyButterfly:
		return NewButterfly(n, dev)
	default:
		return nil, fmt.Errorf("fft: unknown strategy %q", strategy)
	}
}

// lineIndex maps sample i of line l to a flat index. Horizontal lines are
// rows, vertical lines are columns.
func lineIndex(n, l, i int, vertical bool) int {
	if vertical {
		return i*n + l
	}
	return l*n + i
}

// buffers is the ping-pong pair. Pass p reads buf[p%2] and writes buf[(p+1)%2];
// roles come from the pass index, never from a toggled flag.
type buffers [2][]complex128

func (b *buffers) src(pass int) []complex128 { return b[pass%2] }
func (b *buffers) dst(pass int) []complex128 { return b[(pass+1)%2] }

// finish copies the result back into the caller's field when an odd number of
// passes left it in scratch.
func (b *buffers) finish(passes int) {
	if passes%2 == 1 {
		copy(b[0], b[1])
	}
}

func checkField(n int, field []complex128) error {
	if len(field) != n*n {
		return &ResolutionMismatchError{N: n, Want: n * n, Got: len(field)}
	}
	return nil
}

func scale(dev *compute.Dispatcher, n int, field []complex128) error {
	f := complex(1/float64(n*n), 0)
	return dev.Dispatch("fft.scale", n, func(row int) {
		base := row * n
		for i := base; i < base+n; i++ {
			field[i] *= f
		}
	})
}
