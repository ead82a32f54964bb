package scan

import (
	"time"

	"github.com/Faultbox/ghost-assets/pkg/binread"
	"github.com/Faultbox/ghost-assets/pkg/mesh"
)

// Index scan tuning. The 0.50 acceptance ratio is the protocol; the abort
// thresholds below are empirically tuned budgets, not format knowledge.
const (
	indexMinValidTriangles = 24
	indexAcceptRatio       = 0.50

	// Early-stop bar: once a candidate is this good and enough candidates
	// have been checked, further search is unlikely to beat it.
	indexEarlyStopRatio  = 0.92
	indexEarlyStopValid  = 240
	indexEarlyStopChecks = 96

	// Large vertex spans make candidate evaluation expensive, so they get
	// a tighter budget on every axis.
	largeSpanThreshold = 2048
)

type indexScanBudget struct {
	denseWindow int
	denseStep   int
	sparseStep  int
	triScanCap  int
	deadline    time.Duration
}

func budgetForSpan(vertexSpan int) indexScanBudget {
	if vertexSpan >= largeSpanThreshold {
		return indexScanBudget{
			denseWindow: 0x10000,
			denseStep:   0x20,
			sparseStep:  0x800,
			triScanCap:  3000,
			deadline:    850 * time.Millisecond,
		}
	}
	return indexScanBudget{
		denseWindow: 0x24000,
		denseStep:   0x10,
		sparseStep:  0x400,
		triScanCap:  6000,
		deadline:    1500 * time.Millisecond,
	}
}

// IndexScanOptions tunes an index stream scan.
type IndexScanOptions struct {
	// MaxTriangles caps how many valid triangles are collected from one
	// candidate. Zero means 10000.
	MaxTriangles int
	// CountHint is the header-probed vertex count, 0 if unknown.
	CountHint int
	// Deadline overrides the span-derived wall-clock budget when nonzero.
	// The deadline is only checked between candidate evaluations; the
	// per-candidate scan cap bounds how far a single evaluation can
	// overrun it.
	Deadline time.Duration
}

// IndexCandidate is one scored (offset, width) guess.
type IndexCandidate struct {
	Offset       int
	Width        int // bytes per index: 2 or 4
	Valid        int
	Invalid      int
	Degenerate   int
	ValidRatio   float64
	MaxIndexSeen uint32
	Score        float64
}

// IndexScanResult is the winning candidate plus its flat valid-triangle
// index list, still in original (pre-remap) vertex index space.
type IndexScanResult struct {
	Indices           []uint32
	Candidate         IndexCandidate
	Checks            int
	DeadlineTruncated bool
}

// ScanIndexStream statistically locates the triangle index region matching a
// discovered vertex stream. Candidates are a dense sweep around the estimated
// end of the vertex stream plus a coarse sweep of the low-offset region, each
// tried at 16-bit and 32-bit index widths.
//
// The result is nil unless the returned status is StatusOK;
// StatusLowConfidence and StatusNoCandidate are non-fatal (the caller
// degrades to a pointcloud).
func ScanIndexStream(data []byte, vertexSpan int, stream *VertexStream, opts IndexScanOptions) (*IndexScanResult, mesh.Status) {
	if vertexSpan < 8 {
		return nil, mesh.StatusTooSmall
	}

	budget := budgetForSpan(vertexSpan)
	if opts.Deadline > 0 {
		budget.deadline = opts.Deadline
	}
	maxTris := opts.MaxTriangles
	if maxTris <= 0 {
		maxTris = 10000
	}
	deadline := time.Now().Add(budget.deadline)

	offsets := candidateIndexOffsets(data, vertexSpan, stream, opts.CountHint, budget)

	var best *IndexCandidate
	var bestIndices []uint32
	checks := 0
	truncated := false

search:
	for _, off := range offsets {
		for _, width := range []int{2, 4} {
			checks++
			if time.Now().After(deadline) {
				truncated = true
				break search
			}
			cand, vals := evaluateIndexCandidate(data, off, width, vertexSpan, maxTris, budget.triScanCap)
			if cand == nil {
				continue
			}
			if best == nil || cand.Score > best.Score {
				best = cand
				bestIndices = vals
			}
			if best.ValidRatio >= indexEarlyStopRatio && best.Valid >= indexEarlyStopValid && checks >= indexEarlyStopChecks {
				break search
			}
		}
	}

	if best == nil || len(bestIndices) == 0 {
		return nil, mesh.StatusNoCandidate
	}
	if best.ValidRatio < indexAcceptRatio {
		return nil, mesh.StatusLowConfidence
	}

	return &IndexScanResult{
		Indices:           bestIndices,
		Candidate:         *best,
		Checks:            checks,
		DeadlineTruncated: truncated,
	}, mesh.StatusOK
}

// candidateIndexOffsets estimates where the index region plausibly begins
// (right after the packed vertex stream) and builds a dense local sweep
// around it plus a sparse sweep of the low file region, stably deduplicated.
func candidateIndexOffsets(data []byte, vertexSpan int, stream *VertexStream, countHint int, budget indexScanBudget) []int {
	streamCount := stream.Available
	if countHint >= 4 && countHint <= stream.Available {
		streamCount = countHint
	} else if streamCount > vertexSpan {
		streamCount = vertexSpan
	}
	stride := stream.Stride
	if stride < 1 {
		stride = 1
	}
	regionStart := stream.Offset + streamCount*stride
	if regionStart < 0x80 {
		regionStart = 0x80
	}
	if limit := len(data) - 6; regionStart > limit {
		regionStart = limit
		if regionStart < 0x80 {
			regionStart = 0x80
		}
	}

	var offsets []int
	denseStart := regionStart - 0x800
	if denseStart < 0x80 {
		denseStart = 0x80
	}
	denseEnd := regionStart + budget.denseWindow
	if limit := len(data) - 6; denseEnd > limit {
		denseEnd = limit
	}
	for off := denseStart; off < denseEnd; off += budget.denseStep {
		offsets = append(offsets, off)
	}

	sparseEnd := len(data) - 6
	if sparseEnd > 0x200000 {
		sparseEnd = 0x200000
	}
	for off := 0x80; off < sparseEnd; off += budget.sparseStep {
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

// evaluateIndexCandidate reads triples at (off, width), classifying each as
// invalid, degenerate, or valid, with early aborts when garbage dominates.
// Returns nil when the candidate never produces enough valid triangles.
func evaluateIndexCandidate(data []byte, off, width, vertexSpan, maxTris, triScanCap int) (*IndexCandidate, []uint32) {
	remain := len(data) - off
	if remain < width*24 {
		return nil, nil
	}
	maxValues := remain / width
	if limit := maxTris * 3 * 2; maxValues > limit {
		maxValues = limit
	}
	triCount := maxValues / 3
	if triCount > triScanCap {
		triCount = triScanCap
	}
	if triCount < indexMinValidTriangles {
		return nil, nil
	}

	var vals []uint32
	valid, invalid, degenerate := 0, 0, 0
	consecutiveInvalid := 0
	var maxSeen uint32

	for t := 0; t < triCount; t++ {
		base := off + t*3*width
		if !binread.Has(data, base, 3*width) {
			break
		}
		i0 := readIndex(data, base, width)
		i1 := readIndex(data, base+width, width)
		i2 := readIndex(data, base+2*width, width)

		if int(i0) >= vertexSpan || int(i1) >= vertexSpan || int(i2) >= vertexSpan {
			invalid++
			consecutiveInvalid++
			// Abort thresholds are tuned, not principled: bail when
			// invalid triples cluster or dominate.
			if consecutiveInvalid > 12 && valid >= 24 {
				break
			}
			if t > 192 && valid == 0 && invalid > 64 {
				break
			}
			if t > 256 && invalid > valid*4 {
				break
			}
			continue
		}
		consecutiveInvalid = 0
		if i0 > maxSeen {
			maxSeen = i0
		}
		if i1 > maxSeen {
			maxSeen = i1
		}
		if i2 > maxSeen {
			maxSeen = i2
		}

		if i0 == i1 || i1 == i2 || i0 == i2 {
			degenerate++
			if t > 384 && valid < 8 && degenerate > 192 {
				break
			}
			continue
		}

		vals = append(vals, i0, i1, i2)
		valid++
		if valid >= maxTris {
			break
		}
	}

	if valid < indexMinValidTriangles {
		return nil, nil
	}

	total := valid + invalid + degenerate
	ratio := float64(valid) / float64(total)
	cand := &IndexCandidate{
		Offset:       off,
		Width:        width,
		Valid:        valid,
		Invalid:      invalid,
		Degenerate:   degenerate,
		ValidRatio:   ratio,
		MaxIndexSeen: maxSeen,
		Score:        float64(valid) + ratio*150.0 - float64(invalid)*0.75 - float64(degenerate)*0.25,
	}
	return cand, vals
}

func readIndex(data []byte, off, width int) uint32 {
	if width == 2 {
		return uint32(binread.U16(data, off))
	}
	return binread.U32(data, off)
}
