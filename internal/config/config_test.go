package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if len(cfg.Paths.AssetDirs) != 1 || cfg.Paths.AssetDirs[0] != "." {
		t.Errorf("expected asset dirs [.], got %v", cfg.Paths.AssetDirs)
	}
	if cfg.Paths.OutputDir != "out" {
		t.Errorf("expected output dir 'out', got %s", cfg.Paths.OutputDir)
	}

	if cfg.Scan.MaxPoints != 20000 {
		t.Errorf("expected max points 20000, got %d", cfg.Scan.MaxPoints)
	}
	if cfg.Scan.MaxTriangles != 10000 {
		t.Errorf("expected max triangles 10000, got %d", cfg.Scan.MaxTriangles)
	}
	if cfg.Scan.IndexDeadline != 0 {
		t.Errorf("expected automatic index deadline, got %v", cfg.Scan.IndexDeadline)
	}

	if !cfg.Export.StubPlaceholders {
		t.Error("expected stub placeholders to be on by default")
	}

	if cfg.Batch.Workers != 0 {
		t.Errorf("expected workers 0 (all CPUs), got %d", cfg.Batch.Workers)
	}
	if cfg.Batch.ManifestName != "manifest.json" {
		t.Errorf("expected manifest name manifest.json, got %s", cfg.Batch.ManifestName)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
paths:
  asset_dirs:
    - /assets/models
    - /assets/levels
  output_dir: /tmp/converted
scan:
  max_points: 5000
batch:
  workers: 4
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}

	if len(cfg.Paths.AssetDirs) != 2 || cfg.Paths.AssetDirs[1] != "/assets/levels" {
		t.Errorf("asset dirs = %v", cfg.Paths.AssetDirs)
	}
	if cfg.Paths.OutputDir != "/tmp/converted" {
		t.Errorf("output dir = %s", cfg.Paths.OutputDir)
	}
	if cfg.Scan.MaxPoints != 5000 {
		t.Errorf("max points = %d, want 5000", cfg.Scan.MaxPoints)
	}
	if cfg.Batch.Workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.Batch.Workers)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %s, want debug", cfg.Logging.Level)
	}

	// Unspecified values keep their defaults.
	if cfg.Scan.MaxTriangles != 10000 {
		t.Errorf("max triangles = %d, want default 10000", cfg.Scan.MaxTriangles)
	}
	if cfg.Batch.ManifestName != "manifest.json" {
		t.Errorf("manifest name = %s, want default", cfg.Batch.ManifestName)
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("paths: ["), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if err := loadFromFile(Default(), path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestSaveTo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := Default()
	cfg.Batch.Workers = 8
	cfg.Paths.OutputDir = "/data/out"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Batch.Workers != 8 {
		t.Errorf("workers = %d, want 8 after round trip", loaded.Batch.Workers)
	}
	if loaded.Paths.OutputDir != "/data/out" {
		t.Errorf("output dir = %s, want /data/out after round trip", loaded.Paths.OutputDir)
	}
}
