// Package mesh defines the normalized geometry representation shared by the
// structured and heuristic decode paths, plus the confidence report attached
// to heuristically recovered geometry.
package mesh

import "fmt"

// Mode identifies the fidelity of a recovered mesh. The three terminal modes
// form a strictly descending ladder: TriangleIndex > Pointcloud > FallbackStub.
type Mode int

const (
	ModeTriangleIndex Mode = iota // indexed triangle geometry
	ModePointcloud                // vertex positions only, rendered as points
	ModeFallbackStub              // placeholder geometry, nothing recovered
)

// String returns the manifest name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeTriangleIndex:
		return "triangle_index"
	case ModePointcloud:
		return "pointcloud"
	case ModeFallbackStub:
		return "fallback_stub"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// Status classifies the outcome of a heuristic scan.
type Status int

const (
	StatusOK Status = iota
	StatusLowConfidence
	StatusNoCandidate
	StatusTooSmall
	StatusInsufficientVertices
)

// String returns the manifest name of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusLowConfidence:
		return "low_confidence"
	case StatusNoCandidate:
		return "no_candidate"
	case StatusTooSmall:
		return "too_small"
	case StatusInsufficientVertices:
		return "insufficient_vertices"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// ConfidenceReport describes how much a heuristically discovered vertex and
// index layout can be trusted. Attached only to heuristic-path output; the
// structured decoder either succeeds exactly or fails.
type ConfidenceReport struct {
	Status            Status
	Offset            int     // chosen vertex stream offset
	Stride            int     // chosen vertex stream stride
	Score             float64 // winning candidate score, 0..1
	AcceptedVertices  int
	IndexOffset       int     // chosen index region offset, -1 if none
	IndexWidth        int     // 2 or 4 bytes, 0 if none
	IndexValidRatio   float64
	DeadlineTruncated bool // index search hit its wall-clock budget
}

// Mesh is the normalized output shape handed to the serializer. Vertex
// identity is position in the slices; order is insertion order and is
// reproducible for identical input.
type Mesh struct {
	Positions [][3]float32
	Normals   [][3]float32 // empty when unknown
	UVs       [][2]float32 // empty when unknown
	Colors    [][4]uint8   // empty when unknown
	Indices   []uint32     // flat triangle list, empty for pointclouds
	// Groups partitions Indices by source material ID. Empty when the
	// decode path has no material information.
	Groups map[uint32][]uint32
	// Materials holds the material/shader name table when the container
	// declared one; Groups keys index into it.
	Materials []string
	Mode      Mode
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int { return len(m.Positions) }

// TriangleCount returns the number of whole triangles in the index list.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// MaterialName returns the name for a material ID, or "" when the ID is
// outside the declared table.
func (m *Mesh) MaterialName(id uint32) string {
	if int(id) < len(m.Materials) {
		return m.Materials[id]
	}
	return ""
}
