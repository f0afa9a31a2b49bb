package ocean

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"OceanFFT/internal/fft"
	"OceanFFT/internal/noise"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipeline(t *testing.T, p Params) *Pipeline {
	t.Helper()
	pl, err := NewPipeline(p, noise.NewSeeded(1), WithDispatcher(newDevice(t)))
	require.NoError(t, err)
	t.Cleanup(pl.Close)
	return pl
}

func TestNewPipelineRejectsInvalidParams(t *testing.T) {
	p := DefaultParams()
	p.GridResolution = 48

	_, err := NewPipeline(p, noise.NewSeeded(1))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "grid_resolution", cfgErr.Param)
}

func TestNewPipelineRequiresSource(t *testing.T) {
	_, err := NewPipeline(DefaultParams(), nil)
	assert.Error(t, err)
}

type failingSource struct{}

func (failingSource) Fields(int) ([noise.FieldCount][]float64, error) {
	return [noise.FieldCount][]float64{}, errors.New("device lost")
}

func TestNewPipelineSurfacesResourceErrors(t *testing.T) {
	_, err := NewPipeline(testParams(8), failingSource{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device lost")
}

func TestFlatSea(t *testing.T) {
	p := testParams(16)
	p.WindSpeed = 0
	pl := newPipeline(t, p)

	frame, err := pl.Step(3.5)
	require.NoError(t, err)

	for i := range frame.Displacement {
		if frame.Displacement[i] != (mgl32.Vec3{}) {
			t.Fatalf("Expected zero displacement at %d, got %v", i, frame.Displacement[i])
		}
		if !frame.Normals[i].ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-6) {
			t.Fatalf("Expected up normal at %d, got %v", i, frame.Normals[i])
		}
		if frame.Jacobian[i] != 1 {
			t.Fatalf("Expected Jacobian 1 at %d, got %v", i, frame.Jacobian[i])
		}
	}
}

func TestSpatialFieldIsReal(t *testing.T) {
	const n = 64
	dev := newDevice(t)
	p := testParams(n)
	s := buildSpectrum(t, p, noise.NewSeeded(4), dev)
	ch := NewChannels(n, true)
	require.NoError(t, Evolve(dev, s, p, 2.5, ch))

	eng, err := fft.NewButterfly(n, dev)
	require.NoError(t, err)

	for _, field := range ch.Fields() {
		require.NoError(t, eng.Inverse(field))
		peak, worstImag := 0.0, 0.0
		for _, v := range field {
			peak = math.Max(peak, math.Abs(real(v)))
			worstImag = math.Max(worstImag, math.Abs(imag(v)))
		}
		assert.LessOrEqual(t, worstImag, 1e-9*math.Max(peak, 1))
	}
}

func TestFrameTiles(t *testing.T) {
	p := testParams(32)
	pl := newPipeline(t, p)
	frame, err := pl.Step(1)
	require.NoError(t, err)

	n := p.GridResolution
	for z := 0; z < n; z += 5 {
		for x := 0; x < n; x += 3 {
			assert.Equal(t, frame.DisplacementAt(x, z), frame.DisplacementAt(x+n, z))
			assert.Equal(t, frame.DisplacementAt(x, z), frame.DisplacementAt(x, z-n))
			assert.Equal(t, frame.NormalAt(x, z), frame.NormalAt(x-n, z+2*n))
		}
	}

	d0, n0 := frame.Sample(12.3, 45.6)
	d1, n1 := frame.Sample(12.3+p.PatchSize, 45.6-p.PatchSize)
	assert.True(t, d0.ApproxEqualThreshold(d1, 1e-4), "%v vs %v", d0, d1)
	assert.True(t, n0.ApproxEqualThreshold(n1, 1e-4), "%v vs %v", n0, n1)
}

func TestSampleHitsLatticePoints(t *testing.T) {
	p := testParams(16)
	pl := newPipeline(t, p)
	frame, err := pl.Step(0.5)
	require.NoError(t, err)

	cell := p.CellSize()
	d, _ := frame.Sample(3*cell, 7*cell)
	assert.True(t, d.ApproxEqualThreshold(frame.DisplacementAt(3, 7), 1e-5))
}

func TestStrategiesProduceSameFrame(t *testing.T) {
	p := testParams(64)
	a := newPipeline(t, p)
	p.FFTStrategy = fft.StrategyPingPong
	b := newPipeline(t, p)

	fa, err := a.Step(4)
	require.NoError(t, err)
	fb, err := b.Step(4)
	require.NoError(t, err)

	for i := range fa.Displacement {
		if !fa.Displacement[i].ApproxEqualThreshold(fb.Displacement[i], 1e-4) {
			t.Fatalf("Displacement differs at %d: %v vs %v", i, fa.Displacement[i], fb.Displacement[i])
		}
	}
}

func TestWavesMove(t *testing.T) {
	pl := newPipeline(t, testParams(32))

	f0, err := pl.Step(0)
	require.NoError(t, err)
	h0 := f0.DisplacementAt(5, 5)
	f1, err := pl.Step(2)
	require.NoError(t, err)

	assert.NotEqual(t, h0, f1.DisplacementAt(5, 5))
	lo, hi, _ := f1.HeightStats()
	assert.Less(t, lo, hi)
}

func TestLoopPeriodRepeats(t *testing.T) {
	p := testParams(32)
	p.LoopPeriod = 10
	pl := newPipeline(t, p)

	f0, err := pl.Step(1.25)
	require.NoError(t, err)
	first := append([]mgl32.Vec3(nil), f0.Displacement...)

	f1, err := pl.Step(1.25 + p.LoopPeriod)
	require.NoError(t, err)
	for i := range first {
		if !first[i].ApproxEqualThreshold(f1.Displacement[i], 1e-3) {
			t.Fatalf("Loop broken at %d: %v vs %v", i, first[i], f1.Displacement[i])
		}
	}
}

func TestOutputsAreDoubleBuffered(t *testing.T) {
	pl := newPipeline(t, testParams(8))

	f0, err := pl.Step(0)
	require.NoError(t, err)
	f1, err := pl.Step(1)
	require.NoError(t, err)
	f2, err := pl.Step(2)
	require.NoError(t, err)

	assert.NotSame(t, f0, f1)
	assert.Same(t, f0, f2)
	assert.Equal(t, uint64(1), f1.Index)
	assert.Equal(t, 1.0, f1.Time)
}

func TestSetParamsDeferredToFrameBoundary(t *testing.T) {
	pl := newPipeline(t, testParams(16))
	before := pl.Spectrum()

	next := testParams(16)
	next.WindSpeed = 35
	require.NoError(t, pl.SetParams(next))

	assert.Equal(t, 20.0, pl.Params().WindSpeed, "pending params must not apply mid-frame")
	assert.Same(t, before, pl.Spectrum())

	_, err := pl.Step(0)
	require.NoError(t, err)
	assert.Equal(t, 35.0, pl.Params().WindSpeed)
	assert.NotSame(t, before, pl.Spectrum())
}

func TestChoppinessChangeKeepsSpectrum(t *testing.T) {
	pl := newPipeline(t, testParams(16))
	before := pl.Spectrum()
	gen := pl.TableGeneration()

	next := testParams(16)
	next.Choppiness = 0.3
	require.NoError(t, pl.SetParams(next))
	_, err := pl.Step(0)
	require.NoError(t, err)

	assert.Same(t, before, pl.Spectrum())
	assert.Equal(t, gen, pl.TableGeneration())
}

func TestSetParamsRejectsInvalid(t *testing.T) {
	pl := newPipeline(t, testParams(16))

	bad := testParams(16)
	bad.PatchSize = -1
	var cfgErr *ConfigError
	require.ErrorAs(t, pl.SetParams(bad), &cfgErr)
	assert.Equal(t, "patch_size", cfgErr.Param)

	_, err := pl.Step(0)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, pl.Params().PatchSize)
}

func TestResolutionChangeRegeneratesTable(t *testing.T) {
	pl := newPipeline(t, testParams(16))
	oldGen := pl.TableGeneration()
	stale := make([]complex128, 16*16)

	require.NoError(t, pl.SetParams(testParams(32)))
	frame, err := pl.Step(0)
	require.NoError(t, err)

	assert.Equal(t, oldGen+1, pl.TableGeneration())
	assert.Equal(t, 32, pl.Engine().N())
	assert.Equal(t, 32, frame.N)
	assert.Len(t, frame.Displacement, 32*32)

	var mismatch *fft.ResolutionMismatchError
	require.ErrorAs(t, pl.Engine().Inverse(stale), &mismatch)
	assert.Equal(t, 32, mismatch.N)
}

// cappedSource only serves fields up to max×max.
type cappedSource struct {
	max int
}

func (c cappedSource) Fields(n int) ([noise.FieldCount][]float64, error) {
	if n > c.max {
		return [noise.FieldCount][]float64{}, fmt.Errorf("no noise above %d", c.max)
	}
	return noise.NewSeeded(1).Fields(n)
}

func TestFailedResizeKeepsPreviousSnapshot(t *testing.T) {
	pl, err := NewPipeline(testParams(16), cappedSource{max: 16}, WithDispatcher(newDevice(t)))
	require.NoError(t, err)
	t.Cleanup(pl.Close)
	gen := pl.TableGeneration()
	spectrum := pl.Spectrum()

	require.NoError(t, pl.SetParams(testParams(32)))
	_, err = pl.Step(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no noise above 16")

	assert.Equal(t, 16, pl.Params().GridResolution)
	assert.Equal(t, 16, pl.Engine().N())
	assert.Equal(t, gen, pl.TableGeneration())
	assert.Same(t, spectrum, pl.Spectrum())

	frame, err := pl.Step(1)
	require.NoError(t, err)
	assert.Equal(t, 16, frame.N)

	calmer := testParams(16)
	calmer.WindSpeed = 12
	require.NoError(t, pl.SetParams(calmer))
	frame, err = pl.Step(2)
	require.NoError(t, err)
	assert.Equal(t, 16, frame.N)
	assert.Equal(t, 12.0, pl.Params().WindSpeed)
}

func TestSeedChangeRedrawsSpectrum(t *testing.T) {
	p := testParams(16)
	p.Seed = 1
	pl := newPipeline(t, p)
	before := pl.Spectrum()
	gen := pl.TableGeneration()

	next := p
	next.Seed = 2
	require.NoError(t, pl.SetParams(next))
	assert.Same(t, before, pl.Spectrum())

	_, err := pl.Step(0)
	require.NoError(t, err)
	after := pl.Spectrum()
	assert.NotSame(t, before, after)
	assert.NotEqual(t, before.H0, after.H0)
	assert.Equal(t, gen, pl.TableGeneration())
	assert.Equal(t, int64(2), pl.Params().Seed)

	want := buildSpectrum(t, next, noise.NewSeeded(2), newDevice(t))
	assert.Equal(t, want.H0, after.H0)
}

func TestSpectralNormalsMatchFiniteDifferences(t *testing.T) {
	p := testParams(64)
	p.Choppiness = 0
	fd := newPipeline(t, p)
	p.NormalMode = NormalsSpectral
	sp := newPipeline(t, p)

	ff, err := fd.Step(3)
	require.NoError(t, err)
	fs, err := sp.Step(3)
	require.NoError(t, err)

	sum := 0.0
	for i := range ff.Normals {
		sum += float64(ff.Normals[i].Dot(fs.Normals[i]))
	}
	assert.Greater(t, sum/float64(len(ff.Normals)), 0.99)
}

func TestChoppyWavesFold(t *testing.T) {
	p := testParams(64)
	p.PatchSize = 200
	p.WindSpeed = 30
	p.Amplitude = 1e-2
	p.Choppiness = 3
	pl := newPipeline(t, p)

	frame, err := pl.Step(1)
	require.NoError(t, err)
	assert.Greater(t, frame.FoldedFraction(), 0.0)
	for i, nrm := range frame.Normals {
		if math.IsNaN(float64(nrm.Len())) {
			t.Fatalf("NaN normal at %d", i)
		}
	}
}

func TestEveryStageFenced(t *testing.T) {
	pl := newPipeline(t, testParams(16))
	_, err := pl.Step(0)
	require.NoError(t, err)

	stages := map[string]bool{}
	for _, s := range pl.Stats() {
		assert.Equal(t, s.Dispatches, s.Fences, s.Stage)
		stages[s.Stage] = true
	}
	for _, name := range []string{"spectrum.init", "spectrum.mirror", "spectrum.evolve",
		"fft.butterfly.horizontal", "fft.butterfly.vertical", "inversion", "normals"} {
		assert.True(t, stages[name], "missing stage %s", name)
	}
}

func TestStepAfterClose(t *testing.T) {
	pl, err := NewPipeline(testParams(8), noise.NewSeeded(1))
	require.NoError(t, err)
	pl.Close()

	_, err = pl.Step(0)
	assert.ErrorIs(t, err, ErrClosed)
}
