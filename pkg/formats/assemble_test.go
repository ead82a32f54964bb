package formats

import (
	"math"
	"testing"

	"github.com/Faultbox/ghost-assets/pkg/mesh"
)

func TestBuildMesh_Quad(t *testing.T) {
	nod, err := ParseNOD(quadNOD())
	if err != nil {
		t.Fatalf("ParseNOD: %v", err)
	}

	m, err := nod.BuildMesh()
	if err != nil {
		t.Fatalf("BuildMesh: %v", err)
	}
	if m.Mode != mesh.ModeTriangleIndex {
		t.Errorf("mode = %v, want %v", m.Mode, mesh.ModeTriangleIndex)
	}
	if m.VertexCount() != 4 {
		t.Errorf("vertex count = %d, want 4", m.VertexCount())
	}
	if m.TriangleCount() != 2 {
		t.Errorf("triangle count = %d, want 2", m.TriangleCount())
	}
	if len(m.Normals) != 4 || len(m.UVs) != 4 {
		t.Errorf("attribute counts = %d normals, %d UVs, want 4 each", len(m.Normals), len(m.UVs))
	}
	// Fixture UV is (0.25, 0.25); V flips to the glTF convention.
	if m.UVs[0] != [2]float32{0.25, 0.75} {
		t.Errorf("UV 0 = %v, want (0.25, 0.75)", m.UVs[0])
	}
	if got := m.MaterialName(0); got != "body" {
		t.Errorf("material 0 = %q, want body", got)
	}
	if len(m.Groups[0]) != 6 {
		t.Errorf("material 0 group has %d indices, want 6", len(m.Groups[0]))
	}
}

func TestBuildMesh_NoGeometry(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NOD)
	}{
		{"no indices", func(n *NOD) { n.Indices = nil }},
		{"no mesh groups", func(n *NOD) { n.MeshGroups = nil }},
		{"too few vertices", func(n *NOD) {
			n.VertexGroups[0].Vertices = n.VertexGroups[0].Vertices[:2]
		}},
		{"nothing triangulates", func(n *NOD) {
			// Every window in a constant strip is degenerate.
			n.Indices = []uint16{0, 0, 0, 0}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nod, err := ParseNOD(quadNOD())
			if err != nil {
				t.Fatalf("ParseNOD: %v", err)
			}
			tt.mutate(nod)
			if _, err := nod.BuildMesh(); err != ErrNoGeometry {
				t.Errorf("got %v, want ErrNoGeometry", err)
			}
		})
	}
}

func TestSanitizePosition(t *testing.T) {
	nan := float32(math.NaN())
	if got := sanitizePosition([3]float32{nan, 1, 2}); got != [3]float32{} {
		t.Errorf("non-finite position = %v, want origin", got)
	}
	if got := sanitizePosition([3]float32{1, 2, 3}); got != [3]float32{1, 2, 3} {
		t.Errorf("finite position changed: %v", got)
	}
}

func TestSanitizeNormal(t *testing.T) {
	up := [3]float32{0, 1, 0}
	tests := []struct {
		name string
		in   [3]float32
		want [3]float32
	}{
		{"nan becomes up", [3]float32{float32(math.NaN()), 0, 0}, up},
		{"near-zero becomes up", [3]float32{0.0001, 0, 0}, up},
		{"unit passes through", [3]float32{0, 0, 1}, [3]float32{0, 0, 1}},
		{"long vector normalized", [3]float32{3, 0, 4}, [3]float32{0.6, 0, 0.8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeNormal(tt.in)
			for i := 0; i < 3; i++ {
				if diff := got[i] - tt.want[i]; diff > 1e-5 || diff < -1e-5 {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestSanitizeUV(t *testing.T) {
	tests := []struct {
		name string
		in   [2]float32
		want [2]float32
	}{
		{"v flipped", [2]float32{0.5, 0.2}, [2]float32{0.5, 0.8}},
		{"clamped then flipped", [2]float32{42, -42}, [2]float32{10, 11}},
		{"nan zeroed", [2]float32{float32(math.NaN()), 0}, [2]float32{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeUV(tt.in); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
