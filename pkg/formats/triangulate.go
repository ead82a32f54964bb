package formats

// TriangleSet is the triangulated output of a NOD's mesh groups: a flat
// global triangle list plus per-material buckets into the same index space.
type TriangleSet struct {
	Indices []uint32
	Groups  map[uint32][]uint32
}

// TriangleCount returns the number of whole triangles in the set.
func (ts *TriangleSet) TriangleCount() int { return len(ts.Indices) / 3 }

// Triangulate converts every mesh group's LOD 0 strip and list runs into
// globally indexed triangles. vertexCount is the total flattened vertex
// count; indices at or above it are dropped without aborting the rest of
// the decode.
//
// Each group's local indices are translated by the running sum of prior
// groups' declared vertex counts, matching how the vertex groups were
// flattened. Strip triangles precede list triangles within a group.
func (n *NOD) Triangulate(vertexCount int) *TriangleSet {
	ts := &TriangleSet{Groups: make(map[uint32][]uint32)}
	vtxOffset := 0

	for mi := range n.MeshGroups {
		mg := &n.MeshGroups[mi]
		lod := &mg.LODs[0]

		if lod.StripCount > 0 {
			tris := triangulateStrip(n.Indices, lod.StripStart, lod.StripCount, vtxOffset, vertexCount)
			ts.append(mg.MaterialID, tris)
		}
		if lod.ListCount > 0 {
			tris := triangulateList(n.Indices, lod.ListStart, lod.ListCount, vtxOffset, vertexCount)
			ts.append(mg.MaterialID, tris)
		}

		// Declared count, not surviving count: the flattened vertex
		// buffer was laid out from the declarations.
		vtxOffset += int(mg.VertexCount)
	}

	return ts
}

func (ts *TriangleSet) append(materialID uint32, tris []uint32) {
	ts.Indices = append(ts.Indices, tris...)
	ts.Groups[materialID] = append(ts.Groups[materialID], tris...)
}

// triangulateStrip decodes a triangle-strip run with a sliding window of
// three consecutive indices. The winding flag flips on every window whether
// or not the window is accepted: winding parity is a property of position
// in the strip, so flipping only on acceptance would desynchronize every
// triangle after a rejected window.
func triangulateStrip(indices []uint16, start, count, vtxOffset, vertexCount int) []uint32 {
	var out []uint32
	flip := false

	for i := start + 2; i < start+count && i < len(indices); i++ {
		v1 := indices[i-2]
		v2 := indices[i-1]
		v3 := indices[i]

		// Duplicate indices mark strip restarts.
		if v1 == v2 || v2 == v3 || v1 == v3 {
			flip = !flip
			continue
		}

		a := uint32(int(v1) + vtxOffset)
		b := uint32(int(v2) + vtxOffset)
		c := uint32(int(v3) + vtxOffset)
		if int(a) >= vertexCount || int(b) >= vertexCount || int(c) >= vertexCount {
			flip = !flip
			continue
		}

		if flip {
			out = append(out, a, c, b)
		} else {
			out = append(out, a, b, c)
		}
		flip = !flip
	}

	return out
}

// triangulateList decodes a plain triangle-list run: index triples consumed
// directly in groups of three, each independently bounds-checked.
func triangulateList(indices []uint16, start, count, vtxOffset, vertexCount int) []uint32 {
	var out []uint32

	for t := 0; t < count/3; t++ {
		base := start + t*3
		if base+2 >= len(indices) {
			break
		}
		a := uint32(int(indices[base]) + vtxOffset)
		b := uint32(int(indices[base+1]) + vtxOffset)
		c := uint32(int(indices[base+2]) + vtxOffset)
		if int(a) >= vertexCount || int(b) >= vertexCount || int(c) >= vertexCount {
			continue
		}
		out = append(out, a, b, c)
	}

	return out
}
