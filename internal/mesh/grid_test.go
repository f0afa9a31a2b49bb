package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestGridCounts(t *testing.T) {
	g, err := NewGrid(4, 1)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	if len(g.Positions) != 25 {
		t.Errorf("Expected 25 vertices, got %d", len(g.Positions))
	}
	if len(g.Indices) != 2*3*16 {
		t.Errorf("Expected %d indices, got %d", 2*3*16, len(g.Indices))
	}
	if len(g.Interleaved()) != 25*5 {
		t.Errorf("Expected %d interleaved floats, got %d", 25*5, len(g.Interleaved()))
	}
}

func TestGridCenteredWithUVs(t *testing.T) {
	g, err := NewGrid(8, 2)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}

	first, last := g.Positions[0], g.Positions[len(g.Positions)-1]
	if first != (mgl32.Vec3{-8, 0, -8}) || last != (mgl32.Vec3{8, 0, 8}) {
		t.Errorf("Grid not centered: first %v last %v", first, last)
	}
	if g.UVs[0] != (mgl32.Vec2{0, 0}) || g.UVs[len(g.UVs)-1] != (mgl32.Vec2{1, 1}) {
		t.Errorf("Unexpected uv range: %v .. %v", g.UVs[0], g.UVs[len(g.UVs)-1])
	}
	center := g.UVs[4*9+4]
	if center != (mgl32.Vec2{0.5, 0.5}) {
		t.Errorf("Expected center uv (0.5, 0.5), got %v", center)
	}
	if g.Extent() != 16 {
		t.Errorf("Expected extent 16, got %v", g.Extent())
	}
}

func TestGridConsistentWinding(t *testing.T) {
	g, err := NewGrid(2, 1)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	for i := 0; i < len(g.Indices); i += 3 {
		a := g.Positions[g.Indices[i]]
		b := g.Positions[g.Indices[i+1]]
		c := g.Positions[g.Indices[i+2]]
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Y() <= 0 {
			t.Fatalf("Triangle %d wound the other way: normal %v", i/3, n)
		}
	}
}

func TestGridIndicesInRange(t *testing.T) {
	g, err := NewGrid(16, 0.5)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	for i, idx := range g.Indices {
		if int(idx) >= len(g.Positions) {
			t.Fatalf("Index %d out of range at %d", idx, i)
		}
	}
}

func TestGridRejectsBadInput(t *testing.T) {
	for _, tc := range []struct {
		dim     int
		spacing float32
	}{{0, 1}, {3, 1}, {-2, 1}, {4, 0}, {MaxDim + 2, 1}} {
		if _, err := NewGrid(tc.dim, tc.spacing); err == nil {
			t.Errorf("Expected error for dim=%d spacing=%v", tc.dim, tc.spacing)
		}
	}
}
