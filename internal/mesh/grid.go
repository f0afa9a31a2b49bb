// Package mesh builds the flat grid the ocean frame is draped over.
package mesh

import (
	"fmt"

	"OceanFFT/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// MaxDim bounds the grid so indices fit comfortably in uint32.
const MaxDim = 8192

// Grid is an indexed triangle mesh in the XZ plane.
type Grid struct {
	Dim       int
	Spacing   float32
	Positions []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

// NewGrid creates a dim x dim quad grid centered at the origin. Texture
// coordinates run x/dim + 0.5, so the patch texture spans the grid once and
// repeats beyond it. Every quad is split as (top-left, bottom-left,
// top-right) and (top-right, bottom-left, bottom-right), the clockwise order
// in the viewer's screen space.
func NewGrid(dim int, spacing float32) (*Grid, error) {
	if dim <= 0 || dim%2 != 0 || dim > MaxDim {
		return nil, fmt.Errorf("mesh: grid dimension %d must be even and in (0, %d]", dim, MaxDim)
	}
	if spacing <= 0 {
		return nil, fmt.Errorf("mesh: grid spacing %v must be positive", spacing)
	}

	verts := dim + 1
	g := &Grid{
		Dim:       dim,
		Spacing:   spacing,
		Positions: make([]mgl32.Vec3, 0, verts*verts),
		UVs:       make([]mgl32.Vec2, 0, verts*verts),
		Indices:   make([]uint32, 0, dim*dim*6),
	}

	half := dim / 2
	for z := -half; z <= half; z++ {
		for x := -half; x <= half; x++ {
			g.Positions = append(g.Positions, mgl32.Vec3{float32(x) * spacing, 0, float32(z) * spacing})
			g.UVs = append(g.UVs, mgl32.Vec2{
				float32(x)/float32(dim) + 0.5,
				float32(z)/float32(dim) + 0.5,
			})
		}
	}

	stride := uint32(verts)
	for y := uint32(0); y < uint32(dim); y++ {
		for x := uint32(0); x < uint32(dim); x++ {
			topLeft := stride*y + x
			bottomLeft := stride*(y+1) + x
			g.Indices = append(g.Indices,
				topLeft, bottomLeft, topLeft+1,
				topLeft+1, bottomLeft, bottomLeft+1)
		}
	}

	logger.Log.Info("Ocean grid created",
		zap.Int("vertices", len(g.Positions)),
		zap.Int("triangles", len(g.Indices)/3),
		zap.Int("dim", dim),
		zap.Float32("spacing", spacing))

	return g, nil
}

// Interleaved packs position and uv per vertex (x, y, z, u, v) for a single
// vertex buffer.
func (g *Grid) Interleaved() []float32 {
	out := make([]float32, 0, len(g.Positions)*5)
	for i, p := range g.Positions {
		uv := g.UVs[i]
		out = append(out, p[0], p[1], p[2], uv[0], uv[1])
	}
	return out
}

// Extent is the world width covered by the grid.
func (g *Grid) Extent() float32 {
	return float32(g.Dim) * g.Spacing
}
