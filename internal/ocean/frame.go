package ocean

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Frame is the pipeline output for one simulation time. Consumers must treat
// it as read-only; it stays valid until the next-but-one Step, which reuses
// its buffers.
type Frame struct {
	Index     uint64
	N         int
	PatchSize float64
	Time      float64

	Displacement []mgl32.Vec3 // (Dx, height, Dz)
	Normals      []mgl32.Vec3
	Jacobian     []float32

	slopes []mgl32.Vec2
}

func newFrame(n int, patchSize float64, slopes bool) *Frame {
	f := &Frame{
		N:            n,
		PatchSize:    patchSize,
		Displacement: make([]mgl32.Vec3, n*n),
		Normals:      make([]mgl32.Vec3, n*n),
		Jacobian:     make([]float32, n*n),
	}
	if slopes {
		f.slopes = make([]mgl32.Vec2, n*n)
	}
	return f
}

func (f *Frame) index(x, z int) int {
	x %= f.N
	if x < 0 {
		x += f.N
	}
	z %= f.N
	if z < 0 {
		z += f.N
	}
	return z*f.N + x
}

// DisplacementAt returns the displacement of lattice cell (x, z). Indices
// wrap, so the field tiles with period N.
func (f *Frame) DisplacementAt(x, z int) mgl32.Vec3 {
	return f.Displacement[f.index(x, z)]
}

// NormalAt returns the normal of lattice cell (x, z) with wraparound.
func (f *Frame) NormalAt(x, z int) mgl32.Vec3 {
	return f.Normals[f.index(x, z)]
}

// JacobianAt returns the Jacobian of lattice cell (x, z) with wraparound.
func (f *Frame) JacobianAt(x, z int) float32 {
	return f.Jacobian[f.index(x, z)]
}

// Sample bilinearly interpolates displacement and normal at a world
// position. The patch repeats every PatchSize metres in both axes.
func (f *Frame) Sample(worldX, worldZ float64) (mgl32.Vec3, mgl32.Vec3) {
	cell := f.PatchSize / float64(f.N)
	u := worldX / cell
	v := worldZ / cell
	x0 := math.Floor(u)
	z0 := math.Floor(v)
	fx := float32(u - x0)
	fz := float32(v - z0)
	ix, iz := int(x0)%f.N, int(z0)%f.N

	lerp := func(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
		return a.Add(b.Sub(a).Mul(t))
	}
	d := lerp(
		lerp(f.DisplacementAt(ix, iz), f.DisplacementAt(ix+1, iz), fx),
		lerp(f.DisplacementAt(ix, iz+1), f.DisplacementAt(ix+1, iz+1), fx),
		fz)
	nrm := lerp(
		lerp(f.NormalAt(ix, iz), f.NormalAt(ix+1, iz), fx),
		lerp(f.NormalAt(ix, iz+1), f.NormalAt(ix+1, iz+1), fx),
		fz)
	if nrm.Len() > 0 {
		nrm = nrm.Normalize()
	} else {
		nrm = up
	}
	return d, nrm
}

// HeightStats returns the minimum, maximum and mean height.
func (f *Frame) HeightStats() (lo, hi, mean float32) {
	if len(f.Displacement) == 0 {
		return 0, 0, 0
	}
	lo, hi = f.Displacement[0].Y(), f.Displacement[0].Y()
	sum := 0.0
	for _, d := range f.Displacement {
		h := d.Y()
		if h < lo {
			lo = h
		}
		if h > hi {
			hi = h
		}
		sum += float64(h)
	}
	return lo, hi, float32(sum / float64(len(f.Displacement)))
}

// FoldedFraction is the share of cells with a negative Jacobian.
func (f *Frame) FoldedFraction() float64 {
	if len(f.Jacobian) == 0 {
		return 0
	}
	folded := 0
	for _, j := range f.Jacobian {
		if j < 0 {
			folded++
		}
	}
	return float64(folded) / float64(len(f.Jacobian))
}
