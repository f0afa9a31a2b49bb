package fft

import (
	"OceanFFT/internal/compute"
	"fmt"
)

// Butterfly is the table-driven Stockham transform. Each pass is a pure
// gather: out[i] = in[A] + W*in[B] with (A, B, W) read from the table.
type Butterfly struct {
	table   *ButterflyTable
	dev     *compute.Dispatcher
	scratch []complex128
}

// NewButterfly builds the table and scratch buffer for size n.
func NewButterfly(n int, dev *compute.Dispatcher) (*Butterfly, error) {
	table, err := NewButterflyTable(n)
	if err != nil {
		return nil, err
	}
	return NewButterflyWithTable(table, dev), nil
}

// NewButterflyWithTable shares an existing table. Tables are read-only, so
// several engines may use the same one concurrently.
func NewButterflyWithTable(table *ButterflyTable, dev *compute.Dispatcher) *Butterfly {
	return &Butterfly{
		table:   table,
		dev:     dev,
		scratch: make([]complex128, table.n*table.n),
	}
}

func (b *Butterfly) N() int                 { return b.table.n }
func (b *Butterfly) Strategy() string       { return StrategyButterfly }
func (b *Butterfly) Table() *ButterflyTable { return b.table }

func (b *Butterfly) Inverse(field []complex128) error {
	return b.transform(field, Inverse)
}

func (b *Butterfly) Forward(field []complex128) error {
	if err := b.transform(field, Forward); err != nil {
		return err
	}
	return scale(b.dev, b.table.n, field)
}

func (b *Butterfly) transform(field []complex128, dir Direction) error {
	n := b.table.n
	if err := checkField(n, field); err != nil {
		return err
	}
	if len(b.scratch) != n*n {
		return fmt.Errorf("fft: scratch sized for %d samples, table for N=%d", len(b.scratch), n)
	}
	bufs := buffers{field, b.scratch}
	conj := dir == Forward

	pass := 0
	for _, vertical := range [2]bool{false, true} {
		name := "fft.butterfly.horizontal"
		if vertical {
			name = "fft.butterfly.vertical"
		}
		for s := 0; s < b.table.stages; s++ {
			src, dst := bufs.src(pass), bufs.dst(pass)
			if err := b.dev.Dispatch(name, n, func(line int) {
				b.gather(src, dst, line, s, conj, vertical)
			}); err != nil {
				return err
			}
			pass++
		}
	}
	bufs.finish(pass)
	return nil
}

func (b *Butterfly) gather(src, dst []complex128, line, stage int, conj, vertical bool) {
	n := b.table.n
	row := b.table.entries[stage*n : (stage+1)*n]
	for i, e := range row {
		w := e.W
		if conj {
			w = complex(real(w), -imag(w))
		}
		dst[lineIndex(n, line, i, vertical)] =
			src[lineIndex(n, line, int(e.A), vertical)] + w*src[lineIndex(n, line, int(e.B), vertical)]
	}
}
