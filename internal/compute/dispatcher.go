// Package compute runs data-parallel stages on a worker pool. A stage is a
// kernel applied to a range of independent work items; every dispatch ends
// with a fence, so the next stage always observes all writes of the previous one.
package compute

import (
	"OceanFFT/internal/logger"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
)

// ErrClosed is returned when dispatching on a closed Dispatcher.
var ErrClosed = errors.New("compute: dispatcher is closed")

// Kernel processes a single work item. Kernels of one dispatch must not
// depend on each other's output.
type Kernel func(item int)

// StageStats aggregates the dispatches issued under one stage name.
type StageStats struct {
	Stage      string
	Dispatches int
	Fences     int
	Items      int
	Elapsed    time.Duration
}

// Dispatcher is the compute device: a bounded worker pool plus per-stage
// bookkeeping.
type Dispatcher struct {
	pool    pond.Pool
	workers int

	mu     sync.Mutex
	closed bool
	stats  map[string]*StageStats
}

// NewDispatcher creates a device with the given number of workers.
// Non-positive values use GOMAXPROCS.
func NewDispatcher(workers int) *Dispatcher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Dispatcher{
		pool:    pond.NewPool(workers),
		workers: workers,
		stats:   make(map[string]*StageStats),
	}
}

// Workers returns the pool size.
func (d *Dispatcher) Workers() int {
	return d.workers
}

// Dispatch runs kernel for items 0..items-1 and returns once every item has
// completed. There is no way to issue a stage without waiting on it.
func (d *Dispatcher) Dispatch(stage string, items int, kernel Kernel) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.mu.Unlock()

	start := time.Now()
	if items > 0 {
		group := d.pool.NewGroup()
		for i := 0; i < items; i++ {
			group.Submit(func() {
				kernel(i)
			})
		}
		if err := group.Wait(); err != nil {
			return fmt.Errorf("compute: stage %q: %w", stage, err)
		}
	}
	elapsed := time.Since(start)

	d.mu.Lock()
	s, ok := d.stats[stage]
	if !ok {
		s = &StageStats{Stage: stage}
		d.stats[stage] = s
	}
	s.Dispatches++
	s.Fences++
	s.Items += items
	s.Elapsed += elapsed
	d.mu.Unlock()

	return nil
}

// Stats returns a copy of the per-stage statistics sorted by stage name.
func (d *Dispatcher) Stats() []StageStats {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]StageStats, 0, len(d.stats))
	for _, s := range d.stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stage < out[j].Stage })
	return out
}

// ResetStats clears the collected statistics.
func (d *Dispatcher) ResetStats() {
	d.mu.Lock()
	d.stats = make(map[string]*StageStats)
	d.mu.Unlock()
}

// LogStats writes the statistics at debug level.
func (d *Dispatcher) LogStats() {
	for _, s := range d.Stats() {
		logger.Log.Debug("Stage stats",
			zap.String("stage", s.Stage),
			zap.Int("dispatches", s.Dispatches),
			zap.Int("fences", s.Fences),
			zap.Int("items", s.Items),
			zap.Duration("elapsed", s.Elapsed))
	}
}

// Close waits for in-flight work and stops the pool. Further dispatches fail
// with ErrClosed.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.pool.StopAndWait()
}
