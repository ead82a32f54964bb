// Package scan implements heuristic recovery of packed vertex and triangle
// index streams from undocumented binary blobs. Nothing in these formats
// describes the buffer layout, so candidate (offset, stride) pairs are
// scored statistically and only the best-scoring candidate survives.
//
// All scanning is pure: functions take a buffer and options and return
// immutable results plus a confidence report, so many files can be scanned
// in parallel with no coordination.
package scan

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/ghost-assets/pkg/binread"
)

// maxCoord bounds plausible model-space coordinates.
const maxCoord = 1e6

// BBoxHint is a bounding box probed from a header, used to judge whether
// candidate positions are plausible.
type BBoxHint struct {
	Min  [3]float32
	Max  [3]float32
	Span [3]float32
}

// ProbeBBox inspects the six floats at 0x0C, the bounding-box slot shared by
// the known mesh headers. Returns nil unless the values form a sane box:
// finite, bounded, min ≤ max, and not collapsed to a point.
func ProbeBBox(data []byte) *BBoxHint {
	if len(data) < 0x24 {
		return nil
	}
	min := binread.Vec3(data, 0x0C)
	max := binread.Vec3(data, 0x18)

	var span [3]float32
	for i := 0; i < 3; i++ {
		if !finite(min[i]) || !finite(max[i]) {
			return nil
		}
		if math32.Abs(min[i]) > maxCoord || math32.Abs(max[i]) > maxCoord {
			return nil
		}
		if min[i] > max[i] {
			return nil
		}
		span[i] = max[i] - min[i]
	}
	if span[0] == 0 && span[1] == 0 && span[2] == 0 {
		return nil
	}
	return &BBoxHint{Min: min, Max: max, Span: span}
}

// ProbeCountHint reads the u32 at 0x28, which in observed mesh headers holds
// a vertex count. Returns 0 when the value is implausible.
func ProbeCountHint(data []byte) int {
	if len(data) < 0x2C {
		return 0
	}
	v := int(binread.U32(data, 0x28))
	if v < 4 || v > 250000 {
		return 0
	}
	return v
}

// Contains reports whether a point lies inside the box expanded by
// max(0.25, 10% of span) per axis. The margin tolerates float noise in
// streams that hug the declared bounds.
func (h *BBoxHint) Contains(x, y, z float32) bool {
	p := [3]float32{x, y, z}
	for i := 0; i < 3; i++ {
		margin := h.Span[i] * 0.10
		if margin < 0.25 {
			margin = 0.25
		}
		if p[i] < h.Min[i]-margin || p[i] > h.Max[i]+margin {
			return false
		}
	}
	return true
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}
