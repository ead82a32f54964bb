// NOD (model mesh) format parser.
package formats

import (
	"errors"
	"fmt"
	"os"

	"github.com/Faultbox/ghost-assets/pkg/binread"
)

// NOD format errors.
var (
	// ErrFormatMismatch is a routing signal, not a failure: the buffer is
	// not a NOD container and the caller should try another decoder.
	ErrFormatMismatch = errors.New("not a NOD container")

	ErrTruncatedNOD      = errors.New("truncated NOD data")
	ErrUnknownVertexType = errors.New("unknown NOD vertex type")
)

// NOD layout constants.
const (
	NODVersion = 0xA // the only version the engine shipped

	nodHeaderSize     = 0x5C
	nodNameWidth      = 0x20
	nodBoneRecordSize = 0x40
	nodMeshGroupSize  = 0x38
	nodVertexGroupMax = 4
	nodLODSlots       = 4
)

// nodVertexStrides maps a vertex-group type byte to its record stride.
// Types 0 and 3 are the base pos+normal+uv layout; types 1 and 2 append
// extra bytes (likely skinning weights) that this decoder never interprets.
var nodVertexStrides = map[uint8]int{
	0: 0x20,
	1: 0x24,
	2: 0x30,
	3: 0x20,
}

// NODVertex is one decoded vertex record. Extra per-type bytes are skipped.
type NODVertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

// NODVertexGroup is one of up to four vertex buffers in the container.
type NODVertexGroup struct {
	Type     uint8
	Count    uint32
	Vertices []NODVertex
}

// NODLODRange locates one LOD's strip and list runs inside the flat index
// buffer. Ranges are laid out contiguously across mesh groups; the decoder
// resolves the running cursor so Start fields are absolute.
type NODLODRange struct {
	StripStart  int
	StripCount  int
	ListStart   int
	ListCount   int
	VertexCount uint16
}

// NODMeshGroup is one material-partitioned draw batch.
type NODMeshGroup struct {
	MaterialID      uint32
	LODs            [nodLODSlots]NODLODRange
	VertexCount     uint16 // declared vertex span consumed by this group
	Flags           uint8
	BlendShapeCount uint8
	BlendGroup      uint8
	BoneCount       uint8
	VertexGroup     uint8
}

// NOD is a parsed NOD model file.
type NOD struct {
	Version      uint32
	Flags        uint32
	BBoxMin      [3]float32
	BBoxMax      [3]float32
	Materials    []string // shader/material names, 0x20-byte slots
	BoneCount    int      // bone records are opaque to mesh reconstruction
	VertexGroups []NODVertexGroup
	IndexCount   uint32
	LODStarts    [4]uint32
	LODCount     uint8
	Indices      []uint16
	MeshGroups   []NODMeshGroup
}

// ParseNOD parses NOD data from a byte slice.
//
// A buffer that is too small or carries the wrong version fails with
// ErrFormatMismatch so callers can route it to the heuristic path. Any
// declared-but-absent byte range after that point fails the whole decode
// with ErrTruncatedNOD; no partial geometry is returned.
func ParseNOD(data []byte) (*NOD, error) {
	if len(data) < nodHeaderSize {
		return nil, ErrFormatMismatch
	}
	if binread.U32(data, 0x00) != NODVersion {
		return nil, ErrFormatMismatch
	}

	nod := &NOD{
		Version: binread.U32(data, 0x00),
		Flags:   binread.U32(data, 0x08),
		BBoxMin: binread.Vec3(data, 0x0C),
		BBoxMax: binread.Vec3(data, 0x18),
	}

	materialCount := int(binread.U8(data, 0x04))
	boneCount := int(binread.U8(data, 0x05))
	vertexGroupCount := int(binread.U8(data, 0x06))
	meshGroupCount := int(binread.U8(data, 0x07))

	if vertexGroupCount > nodVertexGroupMax {
		return nil, fmt.Errorf("%w: %d vertex groups declared, at most %d fit the header",
			ErrTruncatedNOD, vertexGroupCount, nodVertexGroupMax)
	}

	// Vertex group slots at 0x24: u8 type + 3 pad + u32 count, 8 bytes each.
	nod.VertexGroups = make([]NODVertexGroup, vertexGroupCount)
	for i := 0; i < vertexGroupCount; i++ {
		slot := 0x24 + i*8
		nod.VertexGroups[i].Type = binread.U8(data, slot)
		nod.VertexGroups[i].Count = binread.U32(data, slot+4)
	}

	nod.IndexCount = binread.U32(data, 0x44)
	for i := 0; i < 4; i++ {
		nod.LODStarts[i] = binread.U32(data, 0x48+i*4)
	}
	nod.LODCount = binread.U8(data, 0x58)
	nod.BoneCount = boneCount

	off := nodHeaderSize

	// Material name table.
	nod.Materials = make([]string, materialCount)
	for i := 0; i < materialCount; i++ {
		if !binread.Has(data, off, nodNameWidth) {
			return nil, fmt.Errorf("%w: material name %d", ErrTruncatedNOD, i)
		}
		nod.Materials[i] = binread.CString(data, off, nodNameWidth)
		off += nodNameWidth
	}

	// Bone table: fixed-width records, opaque here.
	boneBytes := boneCount * nodBoneRecordSize
	if !binread.Has(data, off, boneBytes) {
		return nil, fmt.Errorf("%w: bone table", ErrTruncatedNOD)
	}
	off += boneBytes

	// Per-group vertex records.
	for gi := range nod.VertexGroups {
		g := &nod.VertexGroups[gi]
		stride, ok := nodVertexStrides[g.Type]
		if !ok {
			return nil, fmt.Errorf("%w: type %d in group %d", ErrUnknownVertexType, g.Type, gi)
		}
		if !binread.Has(data, off, int(g.Count)*stride) {
			return nil, fmt.Errorf("%w: vertex group %d", ErrTruncatedNOD, gi)
		}
		g.Vertices = make([]NODVertex, g.Count)
		for vi := uint32(0); vi < g.Count; vi++ {
			g.Vertices[vi] = NODVertex{
				Position: binread.Vec3(data, off),
				Normal:   binread.Vec3(data, off+12),
				UV:       binread.Vec2(data, off+24),
			}
			off += stride
		}
	}

	// Flat index buffer, u16 little-endian.
	if !binread.Has(data, off, int(nod.IndexCount)*2) {
		return nil, fmt.Errorf("%w: index buffer", ErrTruncatedNOD)
	}
	nod.Indices = make([]uint16, nod.IndexCount)
	for i := range nod.Indices {
		nod.Indices[i] = binread.U16(data, off)
		off += 2
	}

	// Mesh group descriptors. LOD ranges are packed back to back in the
	// flat index buffer, so a running cursor resolves each group's ranges
	// to absolute positions.
	nod.MeshGroups = make([]NODMeshGroup, meshGroupCount)
	indexCursor := 0
	for mi := 0; mi < meshGroupCount; mi++ {
		if !binread.Has(data, off, nodMeshGroupSize) {
			return nil, fmt.Errorf("%w: mesh group %d", ErrTruncatedNOD, mi)
		}
		mg := &nod.MeshGroups[mi]
		mg.MaterialID = binread.U32(data, off)
		p := off + 4
		for li := 0; li < nodLODSlots; li++ {
			stripCount := int(binread.U16(data, p))
			listCount := int(binread.U16(data, p+2))
			mg.LODs[li] = NODLODRange{
				StripStart:  indexCursor,
				StripCount:  stripCount,
				ListStart:   indexCursor + stripCount,
				ListCount:   listCount,
				VertexCount: binread.U16(data, p+4),
			}
			indexCursor += stripCount + listCount
			p += 6
		}
		mg.VertexCount = binread.U16(data, p)
		mg.Flags = binread.U8(data, p+2)
		mg.BlendShapeCount = binread.U8(data, p+3)
		mg.BlendGroup = binread.U8(data, p+4)
		// 20 bytes of bone bindings, then counts and a pad byte.
		mg.BoneCount = binread.U8(data, p+25)
		mg.VertexGroup = binread.U8(data, p+26)
		off += nodMeshGroupSize
	}

	return nod, nil
}

// ParseNODFile parses a NOD file from disk.
func ParseNODFile(path string) (*NOD, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading NOD file: %w", err)
	}
	return ParseNOD(data)
}

// TotalVertexCount returns the number of vertices across all vertex groups.
func (n *NOD) TotalVertexCount() int {
	total := 0
	for i := range n.VertexGroups {
		total += len(n.VertexGroups[i].Vertices)
	}
	return total
}

// MaterialName returns the material name for an ID, or "" if out of range.
func (n *NOD) MaterialName(id uint32) string {
	if int(id) < len(n.Materials) {
		return n.Materials[id]
	}
	return ""
}
