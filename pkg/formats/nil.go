// NIL (level geometry) format parser.
package formats

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/chewxy/math32"

	"github.com/Faultbox/ghost-assets/pkg/binread"
	"github.com/Faultbox/ghost-assets/pkg/mesh"
)

// NIL format errors.
var (
	ErrInvalidNILMagic = errors.New("invalid NIL magic")
	ErrTruncatedNIL    = errors.New("truncated NIL data")
	ErrNoNILGeometry   = errors.New("no vertex blocks found in NIL data")
)

// NIL layout constants.
const (
	nilHeaderSize   = 0x60
	nilNameWidth    = 0x20
	nilVertexStride = 36 // pos(3f) + normal(3f) + rgba(4B) + uv(2f)

	nilMaxMaterials = 200   // sanity cap on the header count
	nilMaxCoord     = 500.0 // level coordinates stay well inside this
	nilMinBlockLen  = 3     // shortest strip worth keeping
)

var nilMagic = []byte{'N', 'I', 'L', 0x10}

// NILVertex is one 36-byte level vertex.
type NILVertex struct {
	Position [3]float32
	Normal   [3]float32
	Color    [4]uint8
	UV       [2]float32
}

// NILBlock is one contiguous run of valid vertices forming a triangle strip.
type NILBlock struct {
	Offset      int  // byte offset of the first vertex
	HeaderCount int  // vertex count found at offset-4, 0 if absent
	Vertices    []NILVertex
}

// NIL is a parsed NIL level file.
type NIL struct {
	SectionCount    uint32
	Flags           uint32
	SubSectionCount uint32
	BBoxDims        [3]float32
	Orientation     [4]float32
	Materials       []string
	DataStart       int
	Blocks          []NILBlock
}

// ParseNIL parses NIL level data. The header and material table have a fixed
// layout; vertex blocks carry no table of contents, so they are located by a
// byte-granularity scan for runs of plausible 36-byte vertices.
func ParseNIL(data []byte) (*NIL, error) {
	if len(data) < nilHeaderSize {
		return nil, ErrTruncatedNIL
	}
	if !bytes.Equal(data[0:4], nilMagic) {
		return nil, ErrInvalidNILMagic
	}

	l := &NIL{
		SectionCount:    binread.U32(data, 0x04),
		Flags:           binread.U32(data, 0x08),
		SubSectionCount: binread.U32(data, 0x0C),
		BBoxDims:        binread.Vec3(data, 0x14),
		Orientation: [4]float32{
			binread.F32(data, 0x20), binread.F32(data, 0x24),
			binread.F32(data, 0x28), binread.F32(data, 0x2C),
		},
	}

	materialCount := binread.U32(data, 0x5C)
	if materialCount > nilMaxMaterials {
		return nil, fmt.Errorf("%w: implausible material count %d", ErrInvalidNILMagic, materialCount)
	}

	off := nilHeaderSize
	for i := uint32(0); i < materialCount; i++ {
		if !binread.Has(data, off, nilNameWidth) {
			break
		}
		l.Materials = append(l.Materials, binread.CString(data, off, nilNameWidth))
		off += nilNameWidth
	}
	l.DataStart = off

	l.Blocks = findNILBlocks(data, l.DataStart)
	return l, nil
}

// ParseNILFile parses a NIL file from disk.
func ParseNILFile(path string) (*NIL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading NIL file: %w", err)
	}
	return ParseNIL(data)
}

// isValidNILVertex checks whether 36 bytes at off look like a level vertex:
// finite in-bounds position with at least one meaningful axis, a roughly
// unit-length normal, and a near-opaque alpha byte.
func isValidNILVertex(data []byte, off int) bool {
	if !binread.Has(data, off, nilVertexStride) {
		return false
	}
	p := binread.Vec3(data, off)
	for _, v := range p {
		if !finite(v) || math32.Abs(v) >= nilMaxCoord {
			return false
		}
	}
	if math32.Abs(p[0]) <= 3.0 && math32.Abs(p[1]) <= 3.0 && math32.Abs(p[2]) <= 3.0 {
		return false
	}

	n := binread.Vec3(data, off+12)
	magSq := n[0]*n[0] + n[1]*n[1] + n[2]*n[2]
	if math32.IsNaN(magSq) || magSq <= 0.81 || magSq >= 1.21 {
		return false
	}
	for _, v := range n {
		if math32.Abs(v) > 1.05 {
			return false
		}
	}

	return data[off+27] >= 0xF0
}

// findNILBlocks scans at byte granularity for runs of valid vertices. A run
// of at least nilMinBlockLen vertices becomes a block; a u32 right before the
// run that covers the run length is recorded as its declared count.
func findNILBlocks(data []byte, start int) []NILBlock {
	var blocks []NILBlock
	off := start

	for off < len(data)-nilVertexStride {
		if !isValidNILVertex(data, off) {
			off++
			continue
		}

		blockStart := off
		count := 0
		for isValidNILVertex(data, off) {
			count++
			off += nilVertexStride
		}
		if count < nilMinBlockLen {
			continue
		}

		block := NILBlock{Offset: blockStart}
		if blockStart >= 4 {
			if hc := int(binread.U32(data, blockStart-4)); hc >= count && hc < 100000 {
				block.HeaderCount = hc
			}
		}
		block.Vertices = readNILVertices(data, blockStart, count)
		blocks = append(blocks, block)
	}

	return blocks
}

func readNILVertices(data []byte, off, count int) []NILVertex {
	verts := make([]NILVertex, 0, count)
	for i := 0; i < count; i++ {
		base := off + i*nilVertexStride
		if !binread.Has(data, base, nilVertexStride) {
			break
		}
		verts = append(verts, NILVertex{
			Position: binread.Vec3(data, base),
			Normal:   binread.Vec3(data, base+12),
			Color: [4]uint8{
				data[base+24], data[base+25], data[base+26], data[base+27],
			},
			UV: binread.Vec2(data, base+28),
		})
	}
	return verts
}

// triangulateNILStrip converts positional strip vertices to indices. The
// strip has no explicit indices; windows with two equal positions act as
// restart markers. Winding alternates by window position.
func triangulateNILStrip(verts []NILVertex) []uint32 {
	if len(verts) < 3 {
		return nil
	}
	var out []uint32
	for i := 0; i+2 < len(verts); i++ {
		p0, p1, p2 := verts[i].Position, verts[i+1].Position, verts[i+2].Position
		if p0 == p1 || p1 == p2 || p0 == p2 {
			continue
		}
		if i%2 == 0 {
			out = append(out, uint32(i), uint32(i+1), uint32(i+2))
		} else {
			out = append(out, uint32(i), uint32(i+2), uint32(i+1))
		}
	}
	return out
}

// BuildMesh merges all vertex blocks into one normalized triangle mesh.
// Positions and normals are converted from the DirectX left-handed
// convention by negating Z.
func (l *NIL) BuildMesh() (*mesh.Mesh, error) {
	if len(l.Blocks) == 0 {
		return nil, ErrNoNILGeometry
	}

	m := &mesh.Mesh{
		Materials: l.Materials,
		Mode:      mesh.ModeTriangleIndex,
	}

	vtxOffset := uint32(0)
	for bi := range l.Blocks {
		block := &l.Blocks[bi]
		indices := triangulateNILStrip(block.Vertices)
		if len(indices) == 0 {
			continue
		}
		for _, v := range block.Vertices {
			m.Positions = append(m.Positions, [3]float32{v.Position[0], v.Position[1], -v.Position[2]})
			m.Normals = append(m.Normals, [3]float32{v.Normal[0], v.Normal[1], -v.Normal[2]})
			m.UVs = append(m.UVs, v.UV)
			m.Colors = append(m.Colors, v.Color)
		}
		for _, idx := range indices {
			m.Indices = append(m.Indices, idx+vtxOffset)
		}
		vtxOffset += uint32(len(block.Vertices))
	}

	if len(m.Indices) == 0 {
		return nil, ErrNoNILGeometry
	}
	return m, nil
}
