package formats

import (
	"errors"

	"github.com/chewxy/math32"

	"github.com/Faultbox/ghost-assets/pkg/mesh"
)

// ErrNoGeometry means a container parsed cleanly but held no usable
// triangles or vertices.
var ErrNoGeometry = errors.New("no valid geometry")

const uvClamp = 10.0

// BuildMesh flattens the vertex groups, sanitizes vertex attributes, and
// triangulates every mesh group into a normalized triangle mesh.
//
// Sanitation matches the engine tolerances: non-finite positions collapse
// to the origin, non-finite or near-zero normals become +Y, UVs are clamped
// to ±10 and V-flipped from the DirectX convention to the glTF one.
func (n *NOD) BuildMesh() (*mesh.Mesh, error) {
	total := n.TotalVertexCount()
	if total < 3 || len(n.Indices) == 0 || len(n.MeshGroups) == 0 {
		return nil, ErrNoGeometry
	}

	m := &mesh.Mesh{
		Positions: make([][3]float32, 0, total),
		Normals:   make([][3]float32, 0, total),
		UVs:       make([][2]float32, 0, total),
		Materials: n.Materials,
		Mode:      mesh.ModeTriangleIndex,
	}

	for gi := range n.VertexGroups {
		for _, v := range n.VertexGroups[gi].Vertices {
			m.Positions = append(m.Positions, sanitizePosition(v.Position))
			m.Normals = append(m.Normals, sanitizeNormal(v.Normal))
			m.UVs = append(m.UVs, sanitizeUV(v.UV))
		}
	}

	ts := n.Triangulate(total)
	if ts.TriangleCount() < 1 {
		return nil, ErrNoGeometry
	}
	m.Indices = ts.Indices
	m.Groups = ts.Groups

	return m, nil
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

func sanitizePosition(p [3]float32) [3]float32 {
	if !finite(p[0]) || !finite(p[1]) || !finite(p[2]) {
		return [3]float32{}
	}
	return p
}

func sanitizeNormal(n [3]float32) [3]float32 {
	up := [3]float32{0, 1, 0}
	if !finite(n[0]) || !finite(n[1]) || !finite(n[2]) {
		return up
	}
	length := math32.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if length < 0.001 {
		return up
	}
	return [3]float32{n[0] / length, n[1] / length, n[2] / length}
}

func sanitizeUV(uv [2]float32) [2]float32 {
	u, v := uv[0], uv[1]
	if !finite(u) || !finite(v) {
		u, v = 0, 0
	}
	u = clamp(u, -uvClamp, uvClamp)
	v = clamp(v, -uvClamp, uvClamp)
	// NOD uses the DirectX convention with V=0 at the top.
	return [2]float32{u, 1 - v}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
