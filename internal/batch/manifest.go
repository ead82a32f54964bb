package batch

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Summary aggregates a run by outcome. The three mode counters follow the
// fidelity ladder; a file counts toward exactly one of them unless it failed
// or was skipped.
type Summary struct {
	Total         int `json:"total"`
	TriangleIndex int `json:"triangle_index"`
	Pointcloud    int `json:"pointcloud"`
	FallbackStub  int `json:"fallback_stub"`
	Structured    int `json:"structured"`
	Heuristic     int `json:"heuristic"`
	Skipped       int `json:"skipped"`
	Failed        int `json:"failed"`
}

// Manifest is the JSON record written next to the converted files.
type Manifest struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	ElapsedMS int64     `json:"elapsed_ms"`
	Summary   Summary   `json:"summary"`
	Results   []Result  `json:"results"`
}

// BuildManifest assembles the manifest for a completed run.
func BuildManifest(results []Result, elapsed time.Duration) *Manifest {
	m := &Manifest{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		ElapsedMS: elapsed.Milliseconds(),
		Results:   results,
	}
	m.Summary = summarize(results)
	return m
}

func summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Error != "" {
			s.Failed++
			continue
		}
		if r.Skipped {
			s.Skipped++
			continue
		}
		switch r.Mode {
		case "triangle_index":
			s.TriangleIndex++
		case "pointcloud":
			s.Pointcloud++
		case "fallback_stub":
			s.FallbackStub++
		}
		switch r.Source {
		case "nod", "nil":
			s.Structured++
		case "heuristic":
			s.Heuristic++
		}
	}
	return s
}

// Write saves the manifest as indented JSON.
func (m *Manifest) Write(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding manifest")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
