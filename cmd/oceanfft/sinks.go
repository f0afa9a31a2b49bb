package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"OceanFFT/internal/logger"
	"OceanFFT/internal/ocean"
	"OceanFFT/internal/snapshot"

	"go.uber.org/zap"
)

// statsSink logs per-frame timing and height statistics.
type statsSink struct {
	last time.Time
}

func (s *statsSink) Publish(frame *ocean.Frame) {
	now := time.Now()
	var elapsed time.Duration
	if !s.last.IsZero() {
		elapsed = now.Sub(s.last)
	}
	s.last = now

	lo, hi, mean := frame.HeightStats()
	logger.Log.Info("Frame",
		zap.Uint64("index", frame.Index),
		zap.Float64("t", frame.Time),
		zap.Duration("interval", elapsed),
		zap.Float32("min_height", lo),
		zap.Float32("max_height", hi),
		zap.Float32("mean_height", mean),
		zap.Float64("folded", frame.FoldedFraction()))
}

// dumpSink writes each frame to dir/frame_NNNNN.ocn.
type dumpSink struct {
	dir string
}

func newDumpSink(dir string) (*dumpSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dump directory: %w", err)
	}
	return &dumpSink{dir: dir}, nil
}

func (d *dumpSink) Publish(frame *ocean.Frame) {
	path := filepath.Join(d.dir, fmt.Sprintf("frame_%05d.ocn", frame.Index))
	if err := snapshot.WriteFile(path, frame); err != nil {
		logger.Log.Error("Failed to write snapshot", zap.String("path", path), zap.Error(err))
	}
}
