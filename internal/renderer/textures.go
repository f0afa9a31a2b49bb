package renderer

import (
	"OceanFFT/internal/logger"
	"OceanFFT/internal/ocean"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

// TextureStats counts uploads for profiling.
type TextureStats struct {
	Allocations int
	Updates     int
	N           int
}

// OceanTextures holds the per-frame ocean maps on the GPU: displacement and
// normals as RGB32F, Jacobian as R32F. All wrap with REPEAT so the patch
// tiles across the grid.
type OceanTextures struct {
	Displacement uint32
	Normals      uint32
	Jacobian     uint32

	n     int
	stats TextureStats
}

// NewOceanTextures generates the texture names. Storage is allocated on the
// first Upload.
func NewOceanTextures() *OceanTextures {
	t := &OceanTextures{}
	ids := make([]uint32, 3)
	gl.GenTextures(3, &ids[0])
	t.Displacement, t.Normals, t.Jacobian = ids[0], ids[1], ids[2]
	for _, id := range ids {
		gl.BindTexture(gl.TEXTURE_2D, id)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	}
	return t
}

// Upload copies frame into the textures. Storage is re-specified only when
// the grid resolution changes.
func (t *OceanTextures) Upload(frame *ocean.Frame) error {
	n := frame.N
	count := n * n
	if n <= 0 || len(frame.Displacement) != count || len(frame.Normals) != count || len(frame.Jacobian) != count {
		return fmt.Errorf("renderer: frame buffers do not match N=%d", n)
	}

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	size := int32(n)
	realloc := n != t.n

	upload := func(id uint32, internal int32, format uint32, data *float32) {
		gl.BindTexture(gl.TEXTURE_2D, id)
		if realloc {
			gl.TexImage2D(gl.TEXTURE_2D, 0, internal, size, size, 0, format, gl.FLOAT, gl.Ptr(data))
		} else {
			gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, size, size, format, gl.FLOAT, gl.Ptr(data))
		}
	}
	upload(t.Displacement, gl.RGB32F, gl.RGB, &frame.Displacement[0][0])
	upload(t.Normals, gl.RGB32F, gl.RGB, &frame.Normals[0][0])
	upload(t.Jacobian, gl.R32F, gl.RED, &frame.Jacobian[0])

	if realloc {
		t.n = n
		t.stats.Allocations++
		logger.Log.Info("Ocean textures allocated", zap.Int("n", n))
	} else {
		t.stats.Updates++
	}
	t.stats.N = t.n
	return nil
}

// Bind attaches the textures to the units the ocean shader samples.
func (t *OceanTextures) Bind() {
	gl.ActiveTexture(gl.TEXTURE0 + DisplacementUnit)
	gl.BindTexture(gl.TEXTURE_2D, t.Displacement)
	gl.ActiveTexture(gl.TEXTURE0 + NormalUnit)
	gl.BindTexture(gl.TEXTURE_2D, t.Normals)
	gl.ActiveTexture(gl.TEXTURE0 + JacobianUnit)
	gl.BindTexture(gl.TEXTURE_2D, t.Jacobian)
}

// GetStats returns upload statistics.
func (t *OceanTextures) GetStats() TextureStats {
	return t.stats
}

// Delete frees the textures.
func (t *OceanTextures) Delete() {
	ids := []uint32{t.Displacement, t.Normals, t.Jacobian}
	gl.DeleteTextures(3, &ids[0])
	t.Displacement, t.Normals, t.Jacobian = 0, 0, 0
	t.n = 0

	logger.Log.Info("Ocean textures freed",
		zap.Int("allocations", t.stats.Allocations),
		zap.Int("updates", t.stats.Updates))
}
