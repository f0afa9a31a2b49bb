package fft

import (
	"OceanFFT/internal/compute"
	"math"
)

// PingPong is the runtime-indexed Cooley-Tukey transform: a bit-reversal pass
// followed by log2(N) butterfly passes per direction, alternating between the
// caller's field and a scratch buffer.
type PingPong struct {
	n       int
	stages  int
	dev     *compute.Dispatcher
	scratch []complex128
}

// NewPingPong allocates an engine for size n.
func NewPingPong(n int, dev *compute.Dispatcher) (*PingPong, error) {
	stages, err := checkSize(n)
	if err != nil {
		return nil, err
	}
	return &PingPong{
		n:       n,
		stages:  stages,
		dev:     dev,
		scratch: make([]complex128, n*n),
	}, nil
}

func (p *PingPong) N() int           { return p.n }
func (p *PingPong) Strategy() string { return StrategyPingPong }

func (p *PingPong) Inverse(field []complex128) error {
	return p.transform(field, Inverse)
}

func (p *PingPong) Forward(field []complex128) error {
	if err := p.transform(field, Forward); err != nil {
		return err
	}
	return scale(p.dev, p.n, field)
}

func (p *PingPong) transform(field []complex128, dir Direction) error {
	if err := checkField(p.n, field); err != nil {
		return err
	}
	bufs := buffers{field, p.scratch}
	sign := 1.0
	if dir == Forward {
		sign = -1.0
	}

	pass := 0
	for _, vertical := range [2]bool{false, true} {
		name := "fft.pingpong.horizontal"
		if vertical {
			name = "fft.pingpong.vertical"
		}

		src, dst := bufs.src(pass), bufs.dst(pass)
		if err := p.dev.Dispatch(name, p.n, func(line int) {
			p.reversePass(src, dst, line, vertical)
		}); err != nil {
			return err
		}
		pass++

		for s := 0; s < p.stages; s++ {
			src, dst := bufs.src(pass), bufs.dst(pass)
			if err := p.dev.Dispatch(name, p.n, func(line int) {
				p.butterflyPass(src, dst, line, s, sign, vertical)
			}); err != nil {
				return err
			}
			pass++
		}
	}
	bufs.finish(pass)
	return nil
}

func (p *PingPong) reversePass(src, dst []complex128, line int, vertical bool) {
	for i := 0; i < p.n; i++ {
		dst[lineIndex(p.n, line, i, vertical)] = src[lineIndex(p.n, line, reverse(i, p.stages), vertical)]
	}
}

func (p *PingPong) butterflyPass(src, dst []complex128, line, stage int, sign float64, vertical bool) {
	span := 1 << stage
	block := span << 1
	for i := 0; i < p.n; i++ {
		j := i & (block - 1)
		top := j < span
		if !top {
			j -= span
		}
		theta := sign * 2 * math.Pi * float64(j) / float64(block)
		w := complex(math.Cos(theta), math.Sin(theta))

		var a, b complex128
		if top {
			a = src[lineIndex(p.n, line, i, vertical)]
			b = src[lineIndex(p.n, line, i+span, vertical)]
			dst[lineIndex(p.n, line, i, vertical)] = a + w*b
		} else {
			a = src[lineIndex(p.n, line, i-span, vertical)]
			b = src[lineIndex(p.n, line, i, vertical)]
			dst[lineIndex(p.n, line, i, vertical)] = a - w*b
		}
	}
}
