package snapshot

import (
	"bytes"
	"compress/gzip"
	"path/filepath"
	"testing"

	"OceanFFT/internal/noise"
	"OceanFFT/internal/ocean"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepFrame(t *testing.T) *ocean.Frame {
	t.Helper()
	p := ocean.DefaultParams()
	p.GridResolution = 16
	pl, err := ocean.NewPipeline(p, noise.NewSeeded(9), ocean.WithWorkers(2))
	require.NoError(t, err)
	t.Cleanup(pl.Close)

	pl.Step(0)
	frame, err := pl.Step(1.5)
	require.NoError(t, err)
	return frame
}

func TestEncodeDecode(t *testing.T) {
	frame := stepFrame(t)

	data, err := Encode(frame)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	s, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, frame.Index, s.Index)
	assert.Equal(t, frame.N, s.N)
	assert.Equal(t, frame.PatchSize, s.PatchSize)
	assert.Equal(t, frame.Time, s.Time)
	assert.Equal(t, frame.Displacement, s.Displacement)
	assert.Equal(t, frame.Normals, s.Normals)
	assert.Equal(t, frame.Jacobian, s.Jacobian)
}

func TestFileRoundTrip(t *testing.T) {
	frame := stepFrame(t)
	path := filepath.Join(t.TempDir(), "frame.ocn")

	require.NoError(t, WriteFile(path, frame))
	s, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, frame.Displacement, s.Displacement)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not gzip"))
	assert.Error(t, err)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write(make([]byte, 64))
	gz.Close()
	_, err = Decode(buf.Bytes())
	assert.ErrorContains(t, err, "magic")
}

func TestDecodeTruncated(t *testing.T) {
	frame := stepFrame(t)
	var raw bytes.Buffer
	require.NoError(t, Write(&raw, frame))

	// Re-compress only the first half of the payload.
	zr, err := gzip.NewReader(&raw)
	require.NoError(t, err)
	var plain bytes.Buffer
	_, err = plain.ReadFrom(zr)
	require.NoError(t, err)

	var cut bytes.Buffer
	gz := gzip.NewWriter(&cut)
	gz.Write(plain.Bytes()[:plain.Len()/2])
	gz.Close()

	_, err = Decode(cut.Bytes())
	assert.Error(t, err)
}

func TestEncodeRejectsInconsistentFrame(t *testing.T) {
	frame := &ocean.Frame{N: 4}
	_, err := Encode(frame)
	assert.Error(t, err)
}
