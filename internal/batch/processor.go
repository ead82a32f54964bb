// Package batch converts whole asset trees with a worker pool and records
// every file's outcome in a run manifest.
package batch

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/Faultbox/ghost-assets/internal/export"
	"github.com/Faultbox/ghost-assets/internal/logger"
	"github.com/Faultbox/ghost-assets/pkg/decode"
	"github.com/Faultbox/ghost-assets/pkg/mesh"
)

// Config holds shared resources for a batch run.
type Config struct {
	OutputDir string
	Workers   int // 0 means all CPUs
	// StubPlaceholders keeps undecodable files in the output as
	// placeholder geometry; off, they are skipped and only recorded.
	StubPlaceholders bool
	Decode           decode.Options
}

// File is one discovered input: its absolute path plus the path relative to
// its asset root, which the converter mirrors under the output directory.
type File struct {
	Path string
	Rel  string
}

// Result holds the outcome of converting one file.
type Result struct {
	Input      string  `json:"input"`
	Output     string  `json:"output,omitempty"`
	Source     string  `json:"source"`
	Mode       string  `json:"mode"`
	ScanStatus string  `json:"scan_status,omitempty"`
	ScanScore  float64 `json:"scan_score,omitempty"`
	Vertices   int     `json:"vertices"`
	Triangles  int     `json:"triangles"`
	Skipped    bool    `json:"skipped,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// modelExts are the container extensions worth decoding.
var modelExts = map[string]bool{
	".nod": true,
	".nil": true,
}

// Discover walks the asset roots collecting model files, sorted by relative
// path so runs are reproducible.
func Discover(dirs []string) ([]File, error) {
	var files []File
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !modelExts[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			rel, rerr := filepath.Rel(dir, path)
			if rerr != nil {
				rel = filepath.Base(path)
			}
			files = append(files, File{Path: path, Rel: rel})
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walking %s", dir)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })
	return files, nil
}

// Run converts all files using a worker pool. Results are indexed like the
// input, one per file, regardless of per-file failures.
func Run(cfg Config, files []File) []Result {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	total := len(files)
	results := make([]Result, total)
	var processed atomic.Int64
	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					logger.Sugar.Infof("converted %d/%d (%.1f files/sec)", p, total, rate)
				}
			}
		}
	}()

	fileChan := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range fileChan {
				results[idx] = processFile(cfg, files[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range files {
		fileChan <- i
	}
	close(fileChan)

	wg.Wait()
	close(done)

	return results
}

func processFile(cfg Config, f File) Result {
	res := Result{Input: f.Path}

	dec, err := decode.DecodeFile(f.Path, cfg.Decode)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Source = dec.Source.String()
	res.Mode = dec.Mesh.Mode.String()
	res.Vertices = dec.Mesh.VertexCount()
	res.Triangles = dec.Mesh.TriangleCount()
	if dec.Report != nil {
		res.ScanStatus = dec.Report.Status.String()
		res.ScanScore = dec.Report.Score
	}

	if dec.Mesh.Mode == mesh.ModeFallbackStub && !cfg.StubPlaceholders {
		res.Skipped = true
		return res
	}

	outPath := filepath.Join(cfg.OutputDir, glbName(f.Rel))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		res.Error = err.Error()
		return res
	}
	if err := export.WriteGLB(dec.Mesh, outPath); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Output = outPath
	return res
}

// glbName swaps the model extension for .glb, keeping the relative layout.
func glbName(rel string) string {
	ext := filepath.Ext(rel)
	return rel[:len(rel)-len(ext)] + ".glb"
}
