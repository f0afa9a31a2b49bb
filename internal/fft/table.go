package fft

import (
	"OceanFFT/internal/logger"
	"fmt"
	"math"
	"math/bits"

	"go.uber.org/zap"
)

// MaxSize bounds the transform size so butterfly indices fit in int32.
const MaxSize = 1 << 12

// Log2 returns log2(n) and whether n is a power of two of at least 2.
func Log2(n int) (int, bool) {
	if n < 2 || n&(n-1) != 0 {
		return 0, false
	}
	return bits.TrailingZeros(uint(n)), true
}

func checkSize(n int) (int, error) {
	stages, ok := Log2(n)
	if !ok {
		return 0, fmt.Errorf("fft: size %d is not a power of two >= 2", n)
	}
	if n > MaxSize {
		return 0, fmt.Errorf("fft: size %d exceeds maximum %d", n, MaxSize)
	}
	return stages, nil
}

// reverse reverses the low `width` bits of i.
func reverse(i, width int) int {
	return int(bits.Reverse(uint(i)) >> (bits.UintSize - width))
}

// BitReversal returns the bit-reversal permutation of 0..n-1.
func BitReversal(n int) ([]int, error) {
	stages, err := checkSize(n)
	if err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i := range out {
		out[i] = reverse(i, stages)
	}
	return out, nil
}

// Entry is one table entry: out[i] = in[A] + W*in[B].
type Entry struct {
	A, B int32
	W    complex128
}

// ButterflyTable holds the per-stage source indices and twiddle factors of a
// radix-2 decimation-in-time transform of size N. Stage 0 folds in the
// bit-reversal permutation. Twiddles are for the inverse (positive exponent)
// direction; the forward transform uses their conjugates.
//
// A table depends only on N and is read-only once built.
type ButterflyTable struct {
	n       int
	stages  int
	entries []Entry
}

// NewButterflyTable precomputes the table for size n.
func NewButterflyTable(n int) (*ButterflyTable, error) {
	stages, err := checkSize(n)
	if err != nil {
		return nil, err
	}
	rev, _ := BitReversal(n)

	t := &ButterflyTable{
		n:       n,
		stages:  stages,
		entries: make([]Entry, stages*n),
	}
	for s := 0; s < stages; s++ {
		span := 1 << s
		block := span << 1
		for i := 0; i < n; i++ {
			k := (i * n / block) % n
			theta := 2 * math.Pi * float64(k) / float64(n)
			w := complex(math.Cos(theta), math.Sin(theta))

			top := i%block < span
			var a, b int
			switch {
			case s == 0 && top:
				a, b = rev[i], rev[i+1]
			case s == 0:
				a, b = rev[i-1], rev[i]
			case top:
				a, b = i, i+span
			default:
				a, b = i-span, i
			}
			t.entries[s*n+i] = Entry{A: int32(a), B: int32(b), W: w}
		}
	}

	logger.Log.Debug("Butterfly table built",
		zap.Int("n", n),
		zap.Int("stages", stages),
		zap.Int("entries", len(t.entries)))

	return t, nil
}

// N returns the transform size the table was built for.
func (t *ButterflyTable) N() int { return t.n }

// Stages returns log2(N).
func (t *ButterflyTable) Stages() int { return t.stages }

// At returns the entry for (stage, sample).
func (t *ButterflyTable) At(stage, i int) Entry {
	return t.entries[stage*t.n+i]
}
