package engine

import (
	"testing"

	"OceanFFT/internal/ocean"
)

type stubFrames struct{}

func (stubFrames) Latest() *ocean.Frame { return nil }

func TestNewViewerDefaults(t *testing.T) {
	v := NewViewer(stubFrames{})

	if v.Behaviours == nil {
		t.Fatal("Viewer should own a behaviour manager")
	}
	if v.GridDim%2 != 0 || v.GridDim <= 0 {
		t.Errorf("Default grid dimension must be even and positive, got %d", v.GridDim)
	}
	if !v.EnableCameraInput {
		t.Error("Camera input should be enabled by default")
	}
}

func TestRunWithoutFrames(t *testing.T) {
	v := NewViewer(nil)
	if err := v.Run(); err == nil {
		t.Error("Run should fail without a frame source")
	}
}

func TestRunRejectsBadGrid(t *testing.T) {
	v := NewViewer(stubFrames{})
	v.GridDim = 3
	if err := v.Run(); err == nil {
		t.Error("Run should fail on an odd grid dimension")
	}
}

func TestTiling(t *testing.T) {
	if got := Tiling(2048, 1000); got != 2.048 {
		t.Errorf("Expected 2.048 repeats, got %v", got)
	}
	if got := Tiling(2048, 0); got != 1 {
		t.Errorf("Expected fallback of 1, got %v", got)
	}
}

func TestFixedDue(t *testing.T) {
	due := 0
	for frame := 0; frame < 10; frame++ {
		if fixedDue(frame, 2) {
			due++
		}
	}
	if due != 5 {
		t.Errorf("Expected 5 fixed updates in 10 frames, got %d", due)
	}
	if !fixedDue(7, 0) {
		t.Error("FixedEvery <= 1 should run every frame")
	}
}
