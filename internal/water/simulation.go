// Package water runs the FFT ocean as a frame-driven behaviour.
// This package is shared between the headless runner and the viewer.
package water

import (
	"fmt"
	"math"
	"sync"
	"time"

	"OceanFFT/internal/logger"
	"OceanFFT/internal/ocean"
	"OceanFFT/internal/stream"

	"go.uber.org/zap"
)

// FrameSink receives every frame the simulation produces. Frames are only
// valid until the sink returns; copy or encode what must outlive the call.
type FrameSink interface {
	Publish(frame *ocean.Frame)
}

// Simulation owns an ocean pipeline and advances it from behaviour updates.
// With FixedStep zero, Update advances by wall-clock time. With FixedStep
// set, only UpdateFixed advances, by exactly FixedStep per call.
type Simulation struct {
	Pipeline  *ocean.Pipeline
	FixedStep time.Duration

	mu      sync.Mutex
	config  ocean.Config
	sinks   []FrameSink
	simTime float64
	latest  *ocean.Frame
	lastErr error

	clock func() time.Time
	last  time.Time
}

// NewSimulation builds the pipeline described by cfg.
func NewSimulation(cfg ocean.Config, opts ...ocean.Option) (*Simulation, error) {
	if err := checkTimeScale(cfg.TimeScale); err != nil {
		return nil, err
	}
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	source, err := cfg.NoiseSource()
	if err != nil {
		return nil, err
	}
	if cfg.Workers > 0 {
		opts = append([]ocean.Option{ocean.WithWorkers(cfg.Workers)}, opts...)
	}
	pipeline, err := ocean.NewPipeline(params, source, opts...)
	if err != nil {
		return nil, err
	}
	return &Simulation{
		Pipeline: pipeline,
		config:   cfg,
		clock:    time.Now,
	}, nil
}

// checkTimeScale keeps simulated time monotonic.
func checkTimeScale(scale float64) error {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale < 0 {
		return &ocean.ConfigError{Param: "time_scale", Value: scale, Limit: "must be a finite value >= 0"}
	}
	return nil
}

// AddSink registers a frame consumer.
func (ws *Simulation) AddSink(sink FrameSink) {
	ws.mu.Lock()
	ws.sinks = append(ws.sinks, sink)
	ws.mu.Unlock()
}

// Start implements the Behaviour interface. It only resets the wall clock;
// the first frame comes from the first Update or UpdateFixed.
func (ws *Simulation) Start() {
	ws.last = ws.clock()
}

// Update implements the Behaviour interface - called every frame
func (ws *Simulation) Update() {
	if ws.FixedStep > 0 {
		return
	}
	now := ws.clock()
	dt := now.Sub(ws.last).Seconds()
	ws.last = now
	ws.advance(dt)
}

// UpdateFixed implements the Behaviour interface
func (ws *Simulation) UpdateFixed() {
	if ws.FixedStep <= 0 {
		return
	}
	ws.advance(ws.FixedStep.Seconds())
}

func (ws *Simulation) advance(dt float64) {
	ws.mu.Lock()
	ws.simTime += dt * ws.config.TimeScale
	t := ws.simTime
	sinks := ws.sinks
	ws.mu.Unlock()

	frame, err := ws.Pipeline.Step(t)

	ws.mu.Lock()
	ws.lastErr = err
	if err == nil {
		ws.latest = frame
	}
	ws.mu.Unlock()

	if err != nil {
		logger.Log.Error("Ocean step failed", zap.Float64("t", t), zap.Error(err))
		return
	}
	for _, sink := range sinks {
		sink.Publish(frame)
	}
}

// Latest returns the most recent frame, or nil before Start.
func (ws *Simulation) Latest() *ocean.Frame {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.latest
}

// Time returns the simulated time in seconds.
func (ws *Simulation) Time() float64 {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.simTime
}

// Err returns the error of the last step, if it failed.
func (ws *Simulation) Err() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.lastErr
}

// GetConfig returns the current configuration for saving
func (ws *Simulation) GetConfig() ocean.Config {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.config
}

// ApplyConfig queues cfg for the next frame. A new seed redraws the
// spectrum from the same kind of noise source. The noise kind and worker
// count are fixed when the simulation is created; changes to them are kept
// in the config but take effect only for a new simulation.
func (ws *Simulation) ApplyConfig(cfg ocean.Config) error {
	if err := checkTimeScale(cfg.TimeScale); err != nil {
		return err
	}
	params, err := cfg.Params()
	if err != nil {
		return err
	}
	if err := ws.Pipeline.SetParams(params); err != nil {
		return err
	}

	ws.mu.Lock()
	ws.config = cfg
	ws.mu.Unlock()

	logger.Log.Info("Ocean config applied",
		zap.Int("n", cfg.GridResolution),
		zap.Float64("wind_speed", cfg.WindSpeed),
		zap.Float64("wind_direction", cfg.WindDirection),
		zap.Float64("choppiness", cfg.Choppiness),
		zap.Int64("seed", cfg.Seed),
		zap.Float64("time_scale", cfg.TimeScale))
	return nil
}

// ApplyControl merges a client control message into the current config.
func (ws *Simulation) ApplyControl(c stream.Control) error {
	cfg := ws.GetConfig()
	if c.TimeScale != nil {
		cfg.TimeScale = *c.TimeScale
	}
	if c.WindSpeed != nil {
		cfg.WindSpeed = *c.WindSpeed
	}
	if c.WindDirection != nil {
		cfg.WindDirection = *c.WindDirection
	}
	if c.Choppiness != nil {
		cfg.Choppiness = *c.Choppiness
	}
	if err := ws.ApplyConfig(cfg); err != nil {
		return fmt.Errorf("water: control rejected: %w", err)
	}
	return nil
}

// Close releases the pipeline.
func (ws *Simulation) Close() {
	ws.Pipeline.Close()
}
