package scan

// RemapTriangles rewrites original-space triangle indices into the compact
// space of an accepted vertex stream. origIndices[i] is the original index
// of compact vertex i. Triples referencing a dropped vertex, or degenerate
// after remapping, are discarded. The returned slice length is a multiple
// of three.
func RemapTriangles(indices []uint32, origIndices []int) []uint32 {
	remap := make(map[int]uint32, len(origIndices))
	for compact, orig := range origIndices {
		remap[orig] = uint32(compact)
	}

	out := make([]uint32, 0, len(indices))
	for i := 0; i+2 < len(indices); i += 3 {
		a, okA := remap[int(indices[i])]
		b, okB := remap[int(indices[i+1])]
		c, okC := remap[int(indices[i+2])]
		if !okA || !okB || !okC {
			continue
		}
		if a == b || b == c || a == c {
			continue
		}
		out = append(out, a, b, c)
	}
	return out
}
