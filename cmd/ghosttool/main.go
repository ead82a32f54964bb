// ghosttool is a CLI utility for recovering geometry from Nihilistic engine
// model and level containers and exporting it as glTF.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Faultbox/ghost-assets/internal/batch"
	"github.com/Faultbox/ghost-assets/internal/config"
	"github.com/Faultbox/ghost-assets/internal/export"
	"github.com/Faultbox/ghost-assets/internal/logger"
	"github.com/Faultbox/ghost-assets/pkg/decode"
	"github.com/Faultbox/ghost-assets/pkg/formats"
	"github.com/Faultbox/ghost-assets/pkg/mesh"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	if command == "help" || command == "-h" || command == "--help" {
		printUsage()
		return
	}

	config.ParseFlags(os.Args[2:])
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	switch command {
	case "info":
		cmdInfo(cfg, flag.Args())
	case "convert", "c":
		cmdConvert(cfg, flag.Args())
	case "batch", "b":
		cmdBatch(cfg, flag.Args())
	case "materials", "mat":
		cmdMaterials(cfg, flag.Args())
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`ghosttool - Nihilistic engine asset recovery utility

Usage:
  ghosttool <command> [options] [args]

Commands:
  info <file>              Decode a container and print what was recovered
  convert <file> [out.glb] Convert one container to binary glTF
  batch [dir ...]          Convert whole asset trees and write a manifest
  materials <dir ...>      Parse .nsa shader sets and resolve textures

Options are shared across commands:
  -config <path>           Explicit config file
  -out <dir>               Output directory
  -workers <n>             Batch worker count (0 = all CPUs)
  -no-stubs                Skip undecodable files instead of writing placeholders
  -index-deadline <dur>    Per-file index search budget, e.g. 1500ms
  -debug                   Debug logging
  -logfile <path>          Also log to this file

Examples:
  ghosttool info npc_marine.nod
  ghosttool convert npc_marine.nod marine.glb
  ghosttool batch -out converted ./extracted/models
  ghosttool materials ./extracted/materials`)
}

func scanOptions(cfg *config.Config) decode.Options {
	return decode.Options{
		MaxPoints:     cfg.Scan.MaxPoints,
		MaxTriangles:  cfg.Scan.MaxTriangles,
		IndexDeadline: cfg.Scan.IndexDeadline,
	}
}

func cmdInfo(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ghosttool info <file>")
		os.Exit(1)
	}

	res, err := decode.DecodeFile(args[0], scanOptions(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("File:      %s\n", args[0])
	fmt.Printf("Source:    %s\n", res.Source)
	fmt.Printf("Mode:      %s\n", res.Mesh.Mode)
	fmt.Printf("Vertices:  %d\n", res.Mesh.VertexCount())
	fmt.Printf("Triangles: %d\n", res.Mesh.TriangleCount())

	if len(res.Mesh.Materials) > 0 {
		fmt.Println("Materials:")
		for i, name := range res.Mesh.Materials {
			fmt.Printf("  [%d] %s\n", i, name)
		}
	}

	if res.StructuredErr != nil {
		fmt.Printf("Structured path: %v\n", res.StructuredErr)
	}
	if r := res.Report; r != nil {
		fmt.Println("Heuristic scan:")
		fmt.Printf("  status:   %s\n", r.Status)
		fmt.Printf("  vertices: offset %#x, stride %d, score %.3f\n",
			r.Offset, r.Stride, r.Score)
		if r.IndexOffset >= 0 {
			fmt.Printf("  indices:  offset %#x, width %d, valid ratio %.3f\n",
				r.IndexOffset, r.IndexWidth, r.IndexValidRatio)
		} else {
			fmt.Println("  indices:  none found")
		}
		if r.DeadlineTruncated {
			fmt.Println("  index search hit its time budget")
		}
	}
}

func cmdConvert(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ghosttool convert <file> [out.glb]")
		os.Exit(1)
	}

	input := args[0]
	output := ""
	if len(args) > 1 {
		output = args[1]
	} else {
		base := filepath.Base(input)
		ext := filepath.Ext(base)
		output = filepath.Join(cfg.Paths.OutputDir, base[:len(base)-len(ext)]+".glb")
	}

	res, err := decode.DecodeFile(input, scanOptions(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if res.Mesh.Mode == mesh.ModeFallbackStub && !cfg.Export.StubPlaceholders {
		fmt.Fprintf(os.Stderr, "Nothing recovered from %s, skipping\n", input)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}
	if err := export.WriteGLB(res.Mesh, output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Converted: %s -> %s (%s, %d vertices, %d triangles)\n",
		input, output, res.Mesh.Mode, res.Mesh.VertexCount(), res.Mesh.TriangleCount())
}

func cmdBatch(cfg *config.Config, args []string) {
	dirs := args
	if len(dirs) == 0 {
		dirs = cfg.Paths.AssetDirs
	}

	files, err := batch.Discover(dirs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "No model files found")
		os.Exit(1)
	}
	logger.Sugar.Infof("found %d model files under %v", len(files), dirs)

	start := time.Now()
	results := batch.Run(batch.Config{
		OutputDir:        cfg.Paths.OutputDir,
		Workers:          cfg.Batch.Workers,
		StubPlaceholders: cfg.Export.StubPlaceholders,
		Decode:           scanOptions(cfg),
	}, files)
	elapsed := time.Since(start)

	manifest := batch.BuildManifest(results, elapsed)
	manifestPath := filepath.Join(cfg.Paths.OutputDir, cfg.Batch.ManifestName)
	if err := manifest.Write(manifestPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	s := manifest.Summary
	fmt.Printf("Converted %d files in %s\n", s.Total, elapsed.Round(time.Millisecond))
	fmt.Printf("  triangle meshes: %d (%d structured, %d recovered)\n",
		s.TriangleIndex, s.Structured, s.TriangleIndex-s.Structured)
	fmt.Printf("  pointclouds:     %d\n", s.Pointcloud)
	fmt.Printf("  placeholders:    %d\n", s.FallbackStub)
	if s.Skipped > 0 {
		fmt.Printf("  skipped:         %d\n", s.Skipped)
	}
	if s.Failed > 0 {
		fmt.Printf("  failed:          %d\n", s.Failed)
	}
	fmt.Printf("Manifest: %s\n", manifestPath)
}

func cmdMaterials(cfg *config.Config, args []string) {
	dirs := args
	if len(dirs) == 0 {
		dirs = cfg.Paths.MaterialDirs
	}
	if len(dirs) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: ghosttool materials <dir ...>")
		os.Exit(1)
	}

	materials := make(map[string]formats.NSAMaterial)
	for _, dir := range dirs {
		parsed, err := formats.ParseNSADir(dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for name, mat := range parsed {
			materials[name] = mat
		}
	}

	textures := formats.FindTextures(cfg.Paths.TextureDirs...)
	resolved := formats.BuildMaterialMap(materials, textures)

	names := make([]string, 0, len(materials))
	for name := range materials {
		names = append(names, name)
	}
	sort.Strings(names)

	found := 0
	for _, name := range names {
		mat := materials[name]
		line := fmt.Sprintf("%-32s texture=%s", name, mat.Texture())
		if shader := mat.Shader(); shader != "" {
			line += " shader=" + shader
		}
		if path, ok := resolved[strings.ToLower(name)]; ok {
			line += " -> " + path
			found++
		}
		fmt.Println(line)
	}

	fmt.Fprintf(os.Stderr, "\n%d materials, %d with resolved textures\n", len(materials), found)
}
