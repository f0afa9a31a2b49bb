// Package snapshot encodes ocean frames to a compact binary form for files
// and network clients.
package snapshot

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"OceanFFT/internal/ocean"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	magic   uint32 = 0x4F43454E // "OCEN"
	version uint32 = 1
)

// Snapshot is a decoded frame. It owns its slices, unlike ocean.Frame whose
// buffers are recycled by the pipeline.
type Snapshot struct {
	Index        uint64
	N            int
	PatchSize    float64
	Time         float64
	Displacement []mgl32.Vec3
	Normals      []mgl32.Vec3
	Jacobian     []float32
}

type header struct {
	Magic     uint32
	Version   uint32
	Index     uint64
	N         uint32
	PatchSize float64
	Time      float64
}

// Encode writes frame as gzip-compressed little-endian binary.
func Encode(frame *ocean.Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, frame); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write streams the encoding of frame to w.
func Write(w io.Writer, frame *ocean.Frame) error {
	count := frame.N * frame.N
	if len(frame.Displacement) != count || len(frame.Normals) != count || len(frame.Jacobian) != count {
		return fmt.Errorf("snapshot: frame buffers do not match N=%d", frame.N)
	}

	gz := gzip.NewWriter(w)
	h := header{
		Magic:     magic,
		Version:   version,
		Index:     frame.Index,
		N:         uint32(frame.N),
		PatchSize: frame.PatchSize,
		Time:      frame.Time,
	}
	if err := binary.Write(gz, binary.LittleEndian, &h); err != nil {
		return err
	}
	// mgl32.Vec3 is [3]float32, so the slices encode without copying.
	if err := binary.Write(gz, binary.LittleEndian, frame.Displacement); err != nil {
		return err
	}
	if err := binary.Write(gz, binary.LittleEndian, frame.Normals); err != nil {
		return err
	}
	if err := binary.Write(gz, binary.LittleEndian, frame.Jacobian); err != nil {
		return err
	}
	return gz.Close()
}

// Decode parses data produced by Encode.
func Decode(data []byte) (*Snapshot, error) {
	return Read(bytes.NewReader(data))
}

// Read parses one encoded frame from r.
func Read(r io.Reader) (*Snapshot, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	var h header
	if err := binary.Read(gz, binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if h.Magic != magic {
		return nil, fmt.Errorf("invalid snapshot magic: %x", h.Magic)
	}
	if h.Version != version {
		return nil, fmt.Errorf("unsupported snapshot version: %d", h.Version)
	}
	if h.N == 0 || h.N > 1<<12 {
		return nil, fmt.Errorf("snapshot: implausible grid resolution %d", h.N)
	}

	count := int(h.N) * int(h.N)
	s := &Snapshot{
		Index:        h.Index,
		N:            int(h.N),
		PatchSize:    h.PatchSize,
		Time:         h.Time,
		Displacement: make([]mgl32.Vec3, count),
		Normals:      make([]mgl32.Vec3, count),
		Jacobian:     make([]float32, count),
	}
	if err := binary.Read(gz, binary.LittleEndian, s.Displacement); err != nil {
		return nil, fmt.Errorf("snapshot: read displacement: %w", err)
	}
	if err := binary.Read(gz, binary.LittleEndian, s.Normals); err != nil {
		return nil, fmt.Errorf("snapshot: read normals: %w", err)
	}
	if err := binary.Read(gz, binary.LittleEndian, s.Jacobian); err != nil {
		return nil, fmt.Errorf("snapshot: read jacobian: %w", err)
	}
	return s, nil
}

// WriteFile encodes frame into path.
func WriteFile(path string, frame *ocean.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, frame); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile decodes the frame stored at path.
func ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
