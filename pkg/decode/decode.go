// Package decode routes a raw asset buffer through the structured parsers
// and, when those reject it, the heuristic scanners, always producing a mesh
// on the best rung of the fidelity ladder it can reach.
package decode

import (
	"errors"
	"os"
	"time"

	"github.com/Faultbox/ghost-assets/pkg/formats"
	"github.com/Faultbox/ghost-assets/pkg/mesh"
	"github.com/Faultbox/ghost-assets/pkg/scan"
)

// Source identifies which decode path produced a result.
type Source int

const (
	SourceNOD Source = iota
	SourceNIL
	SourceHeuristic
)

func (s Source) String() string {
	switch s {
	case SourceNOD:
		return "nod"
	case SourceNIL:
		return "nil"
	case SourceHeuristic:
		return "heuristic"
	default:
		return "unknown"
	}
}

// Options bounds the heuristic path. Zero values mean defaults.
type Options struct {
	// MaxPoints caps recovered pointcloud size. Zero means 20000.
	MaxPoints int
	// MaxTriangles caps recovered triangle count. Zero means 10000.
	MaxTriangles int
	// IndexDeadline overrides the span-derived index search budget.
	IndexDeadline time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxPoints <= 0 {
		o.MaxPoints = 20000
	}
	if o.MaxTriangles <= 0 {
		o.MaxTriangles = 10000
	}
	return o
}

// Result is a decode outcome. Mesh is never nil; when everything failed it
// is the fallback stub. Report is set only on the heuristic path, and
// StructuredErr records why the structured parsers were abandoned.
type Result struct {
	Mesh          *mesh.Mesh
	Source        Source
	Report        *mesh.ConfidenceReport
	StructuredErr error
}

// Decode never fails: any buffer yields a mesh, degrading from structured
// triangle geometry through recovered triangles and pointclouds down to a
// fallback stub.
func Decode(data []byte, opts Options) *Result {
	opts = opts.withDefaults()

	res, structuredErr := decodeStructured(data)
	if res != nil {
		return res
	}

	hres := decodeHeuristic(data, opts)
	hres.StructuredErr = structuredErr
	return hres
}

// DecodeFile reads and decodes one asset file. Only I/O can fail.
func DecodeFile(path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, opts), nil
}

// decodeStructured tries each structured container in turn. Any failure,
// truncation and bad geometry included, drops to the heuristic path; a file
// with a recognizable magic can still be damaged past structured recovery.
// The returned error records why the structured path was abandoned.
func decodeStructured(data []byte) (*Result, error) {
	nod, err := formats.ParseNOD(data)
	if err == nil {
		m, berr := nod.BuildMesh()
		if berr == nil {
			return &Result{Mesh: m, Source: SourceNOD}, nil
		}
		return nil, berr
	}
	if !errors.Is(err, formats.ErrFormatMismatch) {
		return nil, err
	}

	nl, err := formats.ParseNIL(data)
	if err == nil {
		m, berr := nl.BuildMesh()
		if berr == nil {
			return &Result{Mesh: m, Source: SourceNIL}, nil
		}
		return nil, berr
	}
	if !errors.Is(err, formats.ErrInvalidNILMagic) {
		return nil, err
	}
	return nil, formats.ErrFormatMismatch
}

func decodeHeuristic(data []byte, opts Options) *Result {
	bbox := scan.ProbeBBox(data)
	countHint := scan.ProbeCountHint(data)

	stream, report := scan.ScanVertexStream(data, scan.VertexScanOptions{
		MaxPoints: opts.MaxPoints,
		CountHint: countHint,
		BBox:      bbox,
	})
	report.IndexOffset = -1
	if stream == nil {
		return &Result{
			Mesh:   stubMesh(),
			Source: SourceHeuristic,
			Report: &report,
		}
	}

	span := stream.Available
	for _, orig := range stream.OrigIndices {
		if orig+1 > span {
			span = orig + 1
		}
	}

	m := &mesh.Mesh{Positions: stream.Positions, Mode: mesh.ModePointcloud}
	idx, idxStatus := scan.ScanIndexStream(data, span, stream, scan.IndexScanOptions{
		MaxTriangles: opts.MaxTriangles,
		CountHint:    countHint,
		Deadline:     opts.IndexDeadline,
	})
	if idx != nil && idxStatus == mesh.StatusOK {
		report.IndexOffset = idx.Candidate.Offset
		report.IndexWidth = idx.Candidate.Width
		report.IndexValidRatio = idx.Candidate.ValidRatio
		report.DeadlineTruncated = idx.DeadlineTruncated

		remapped := scan.RemapTriangles(idx.Indices, stream.OrigIndices)
		if len(remapped) >= 9 {
			m.Indices = remapped
			m.Mode = mesh.ModeTriangleIndex
		}
	}

	return &Result{Mesh: m, Source: SourceHeuristic, Report: &report}
}

// stubMesh is the bottom of the fidelity ladder: a fixed placeholder
// triangle so downstream tooling always has an asset to load.
func stubMesh() *mesh.Mesh {
	return &mesh.Mesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:   []uint32{0, 1, 2},
		Mode:      mesh.ModeFallbackStub,
	}
}
