package ocean

import (
	"OceanFFT/internal/compute"
	"OceanFFT/internal/fft"
	"OceanFFT/internal/logger"
	"OceanFFT/internal/noise"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrClosed is returned by Step after Close.
var ErrClosed = errors.New("ocean: pipeline is closed")

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDispatcher runs the pipeline on a shared compute device. The caller
// keeps ownership and closes it.
func WithDispatcher(dev *compute.Dispatcher) Option {
	return func(p *Pipeline) {
		p.dev = dev
		p.ownsDev = false
	}
}

// WithWorkers sets the size of the pipeline's own worker pool.
func WithWorkers(workers int) Option {
	return func(p *Pipeline) {
		p.workers = workers
	}
}

// Pipeline runs the per-frame stages: evolve, inverse FFT of every channel,
// sign correction and normals. Each stage is fenced before the next one reads
// its output.
//
// SetParams may be called from any goroutine; the new snapshot is applied at
// the start of the next Step, never in the middle of a frame.
type Pipeline struct {
	source  noise.Source
	dev     *compute.Dispatcher
	ownsDev bool
	workers int

	pendingMu sync.Mutex
	pending   *Params

	frameMu    sync.Mutex
	params     Params
	engine     fft.Engine
	spectrum   *Spectrum
	channels   *Channels
	frames     [2]*Frame
	frameCount uint64
	generation uint64
	closed     bool
}

// NewPipeline validates params, builds the FFT engine and runs the spectrum
// initializer once.
func NewPipeline(params Params, source noise.Source, opts ...Option) (*Pipeline, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, errors.New("ocean: noise source is required")
	}

	p := &Pipeline{source: source, ownsDev: true}
	for _, opt := range opts {
		opt(p)
	}
	if p.dev == nil {
		p.dev = compute.NewDispatcher(p.workers)
		p.ownsDev = true
	}

	if err := p.apply(params, true); err != nil {
		p.Close()
		return nil, err
	}

	logger.Log.Info("Ocean pipeline created",
		zap.Int("n", params.GridResolution),
		zap.String("strategy", params.FFTStrategy),
		zap.String("normals", params.NormalMode),
		zap.Int("workers", p.dev.Workers()))

	return p, nil
}

// SetParams validates p and queues it for the next frame boundary. Invalid
// parameters are rejected here and never reach a dispatch.
func (p *Pipeline) SetParams(params Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	p.pendingMu.Lock()
	p.pending = &params
	p.pendingMu.Unlock()
	return nil
}

// Params returns the snapshot used by the most recent frame.
func (p *Pipeline) Params() Params {
	p.frameMu.Lock()
	defer p.frameMu.Unlock()
	return p.params
}

// Engine returns the current FFT engine.
func (p *Pipeline) Engine() fft.Engine {
	p.frameMu.Lock()
	defer p.frameMu.Unlock()
	return p.engine
}

// Spectrum returns the current initial spectrum.
func (p *Pipeline) Spectrum() *Spectrum {
	p.frameMu.Lock()
	defer p.frameMu.Unlock()
	return p.spectrum
}

// TableGeneration counts how many times the FFT engine has been rebuilt.
func (p *Pipeline) TableGeneration() uint64 {
	p.frameMu.Lock()
	defer p.frameMu.Unlock()
	return p.generation
}

// Stats returns the compute device statistics.
func (p *Pipeline) Stats() []compute.StageStats {
	return p.dev.Stats()
}

// apply installs a new snapshot, rebuilding only what it invalidates.
// Everything is built aside and committed together, so a failure leaves the
// pipeline on its previous snapshot. Caller holds frameMu (or is the
// constructor).
func (p *Pipeline) apply(next Params, first bool) error {
	prev := p.params
	n := next.GridResolution
	slopes := next.NormalMode == NormalsSpectral

	engine := p.engine
	rebuilt := first || next.NeedsTable(prev)
	if rebuilt {
		var err error
		engine, err = fft.New(next.FFTStrategy, n, p.dev)
		if err != nil {
			return fmt.Errorf("ocean: build fft engine: %w", err)
		}
	}

	source := p.source
	if !first && next.Seed != prev.Seed {
		if r, ok := source.(noise.Reseeder); ok {
			source = r.Reseed(next.Seed)
		}
	}

	spectrum := p.spectrum
	if first || next.NeedsSpectrum(prev) {
		fields, err := source.Fields(n)
		if err != nil {
			return fmt.Errorf("ocean: noise source: %w", err)
		}
		spectrum, err = NewSpectrum(next, fields, p.dev)
		if err != nil {
			return err
		}
	}

	channels := p.channels
	if channels == nil || channels.N != n || channels.HasSlopes() != slopes {
		channels = NewChannels(n, slopes)
	}
	frames := p.frames
	for i, f := range frames {
		if f == nil || f.N != n || (f.slopes != nil) != slopes || f.PatchSize != next.PatchSize {
			frames[i] = newFrame(n, next.PatchSize, slopes)
		}
	}

	p.engine = engine
	p.source = source
	p.spectrum = spectrum
	p.channels = channels
	p.frames = frames
	p.params = next
	if rebuilt {
		p.generation++
		logger.Log.Info("FFT engine rebuilt",
			zap.Int("n", n),
			zap.String("strategy", next.FFTStrategy),
			zap.Uint64("generation", p.generation))
	}
	return nil
}

// Step applies any pending parameters and computes the frame for time t.
func (p *Pipeline) Step(t float64) (*Frame, error) {
	p.frameMu.Lock()
	defer p.frameMu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}

	p.pendingMu.Lock()
	pending := p.pending
	p.pending = nil
	p.pendingMu.Unlock()

	if pending != nil {
		if err := p.apply(*pending, false); err != nil {
			logger.Log.Warn("Pending params rejected, keeping previous snapshot",
				zap.Int("n", pending.GridResolution), zap.Error(err))
			return nil, err
		}
	}

	start := time.Now()
	params := p.params
	frame := p.frames[p.frameCount%2]

	if err := Evolve(p.dev, p.spectrum, params, t, p.channels); err != nil {
		return nil, err
	}
	for _, field := range p.channels.Fields() {
		if err := p.engine.Inverse(field); err != nil {
			return nil, err
		}
	}
	if err := Invert(p.dev, p.channels, frame.Displacement, frame.slopes); err != nil {
		return nil, err
	}
	if err := Normals(p.dev, params.GridResolution, params.CellSize(), params.NormalMode,
		frame.Displacement, frame.slopes, frame.Normals, frame.Jacobian); err != nil {
		return nil, err
	}

	frame.Index = p.frameCount
	frame.Time = t
	p.frameCount++

	logger.Log.Debug("Frame computed",
		zap.Uint64("frame", frame.Index),
		zap.Float64("t", t),
		zap.Duration("elapsed", time.Since(start)))

	return frame, nil
}

// Close releases the worker pool if the pipeline owns it.
func (p *Pipeline) Close() {
	p.frameMu.Lock()
	defer p.frameMu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.ownsDev && p.dev != nil {
		p.dev.Close()
	}
}
