package scan

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/ghost-assets/pkg/binread"
	"github.com/Faultbox/ghost-assets/pkg/mesh"
)

// Vertex scan tuning. The acceptance thresholds are the protocol here; the
// rest are budgets.
const (
	vertexEvalCap     = 256 // records examined per candidate
	vertexMinRecords  = 12  // candidate needs at least this many records
	vertexMinAccepted = 8   // survivors required for a usable stream
	vertexMinBuffer   = 256 // bytes; smaller blobs are not worth scanning

	// A bounding-box hint is strong corroborating evidence, so the bar is
	// lower with one than without.
	vertexThresholdHinted   = 0.80
	vertexThresholdUnhinted = 0.88
)

// vertexSeedOffsets are stream starts observed across the known containers.
var vertexSeedOffsets = []int{0x80, 0x90, 0xA0, 0xB0, 0xC0, 0xE0, 0x100, 0x120}

// vertexStrides are the packed-record sizes worth trying, covering bare
// positions through fat skinned layouts.
var vertexStrides = []int{12, 16, 20, 24, 28, 32, 36, 40, 48, 56, 64}

// VertexScanOptions tunes a vertex stream scan.
type VertexScanOptions struct {
	// MaxPoints caps how many surviving records are retained. Values
	// below vertexMinAccepted are raised to it.
	MaxPoints int
	// CountHint is a header-probed vertex count, 0 if unknown.
	CountHint int
	// BBox is a header-probed bounding box, nil if unknown.
	BBox *BBoxHint
}

// VertexCandidate is one scored (offset, stride) guess.
type VertexCandidate struct {
	Offset       int
	Stride       int
	Available    int // full records that fit after Offset
	Evaluated    int
	FiniteRatio  float64
	InBoxRatio   float64
	NonZeroRatio float64
	Score        float64
}

// VertexStream is an accepted vertex stream: the surviving positions plus
// each survivor's index in the original packed stream, which the remapper
// needs to translate recovered triangle indices.
type VertexStream struct {
	Positions   [][3]float32
	OrigIndices []int
	Offset      int
	Stride      int
	Available   int
	Candidate   VertexCandidate
}

// ScanVertexStream statistically locates the best packed float32×3 position
// stream in a buffer. Every candidate (offset, stride) pair is scored on the
// fraction of records that are finite, inside the hinted bounding box, and
// away from the origin; only the single best candidate is re-read in full.
//
// The returned stream is nil unless the report status is StatusOK.
func ScanVertexStream(data []byte, opts VertexScanOptions) (*VertexStream, mesh.ConfidenceReport) {
	if len(data) < vertexMinBuffer {
		return nil, mesh.ConfidenceReport{Status: mesh.StatusTooSmall}
	}

	best := (*VertexCandidate)(nil)
	for _, off := range candidateVertexOffsets(data) {
		for _, stride := range vertexStrides {
			cand := evaluateVertexCandidate(data, off, stride, opts)
			if cand == nil {
				continue
			}
			if best == nil || cand.Score > best.Score {
				best = cand
			}
		}
	}

	if best == nil {
		return nil, mesh.ConfidenceReport{Status: mesh.StatusNoCandidate}
	}

	threshold := vertexThresholdUnhinted
	if opts.BBox != nil {
		threshold = vertexThresholdHinted
	}
	report := mesh.ConfidenceReport{
		Offset: best.Offset,
		Stride: best.Stride,
		Score:  best.Score,
	}
	if best.Score < threshold {
		report.Status = mesh.StatusLowConfidence
		return nil, report
	}

	stream := readVertexStream(data, best, opts)
	if len(stream.Positions) < vertexMinAccepted {
		report.Status = mesh.StatusInsufficientVertices
		report.AcceptedVertices = len(stream.Positions)
		return nil, report
	}

	report.Status = mesh.StatusOK
	report.AcceptedVertices = len(stream.Positions)
	return stream, report
}

// candidateVertexOffsets returns the seed offsets plus a dense sweep of the
// low-offset region, deduplicated in stable order.
func candidateVertexOffsets(data []byte) []int {
	var offsets []int
	offsets = append(offsets, vertexSeedOffsets...)
	sweepEnd := len(data) - 12
	if sweepEnd > 0x400 {
		sweepEnd = 0x400
	}
	for off := 0x40; off < sweepEnd; off += 0x10 {
		offsets = append(offsets, off)
	}

	seen := make(map[int]bool, len(offsets))
	out := offsets[:0]
	for _, off := range offsets {
		if !seen[off] {
			seen[off] = true
			out = append(out, off)
		}
	}
	return out
}

func evaluateVertexCandidate(data []byte, off, stride int, opts VertexScanOptions) *VertexCandidate {
	available := (len(data) - off) / stride
	if available < vertexMinRecords {
		return nil
	}

	evalN := available
	if evalN > vertexEvalCap {
		evalN = vertexEvalCap
	}
	if opts.CountHint > 0 {
		hintCap := opts.CountHint
		if hintCap > vertexEvalCap {
			hintCap = vertexEvalCap
		}
		if hintCap < 24 {
			hintCap = 24
		}
		if evalN > hintCap {
			evalN = hintCap
		}
	}

	finiteCount := 0
	inBox := 0
	nonZero := 0
	for i := 0; i < evalN; i++ {
		x, y, z, ok := readPoint(data, off+i*stride)
		if !ok {
			continue
		}
		finiteCount++
		if math32.Abs(x)+math32.Abs(y)+math32.Abs(z) > 1e-6 {
			nonZero++
		}
		if opts.BBox == nil || opts.BBox.Contains(x, y, z) {
			inBox++
		}
	}

	cand := &VertexCandidate{
		Offset:      off,
		Stride:      stride,
		Available:   available,
		Evaluated:   evalN,
		FiniteRatio: float64(finiteCount) / float64(evalN),
	}
	if finiteCount > 0 {
		cand.InBoxRatio = float64(inBox) / float64(finiteCount)
		cand.NonZeroRatio = float64(nonZero) / float64(finiteCount)
	}
	if opts.BBox == nil {
		cand.Score = cand.FiniteRatio*0.75 + cand.NonZeroRatio*0.25
	} else {
		cand.Score = cand.FiniteRatio*0.45 + cand.InBoxRatio*0.45 + cand.NonZeroRatio*0.10
	}
	return cand
}

// readPoint reads a float triple and reports whether it is finite and inside
// the plausible coordinate range.
func readPoint(data []byte, off int) (x, y, z float32, ok bool) {
	if !binread.Has(data, off, 12) {
		return 0, 0, 0, false
	}
	x = binread.F32(data, off)
	y = binread.F32(data, off+4)
	z = binread.F32(data, off+8)
	if !finite(x) || !finite(y) || !finite(z) {
		return 0, 0, 0, false
	}
	if math32.Abs(x) > maxCoord || math32.Abs(y) > maxCoord || math32.Abs(z) > maxCoord {
		return 0, 0, 0, false
	}
	return x, y, z, true
}

// readVertexStream re-reads the accepted candidate sequentially, silently
// dropping individually invalid records while retaining each survivor's
// original stream index.
func readVertexStream(data []byte, cand *VertexCandidate, opts VertexScanOptions) *VertexStream {
	target := cand.Available
	if opts.CountHint >= 4 && opts.CountHint <= cand.Available {
		target = opts.CountHint
	}
	maxPoints := opts.MaxPoints
	if maxPoints < vertexMinAccepted {
		maxPoints = vertexMinAccepted
	}
	if target > maxPoints {
		target = maxPoints
	}

	stream := &VertexStream{
		Offset:    cand.Offset,
		Stride:    cand.Stride,
		Available: cand.Available,
		Candidate: *cand,
	}
	for i := 0; i < cand.Available && len(stream.Positions) < target; i++ {
		x, y, z, ok := readPoint(data, cand.Offset+i*cand.Stride)
		if !ok {
			continue
		}
		stream.Positions = append(stream.Positions, [3]float32{x, y, z})
		stream.OrigIndices = append(stream.OrigIndices, i)
	}
	return stream
}
