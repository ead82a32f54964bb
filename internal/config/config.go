// Package config handles tool configuration loading and management.
package config

import "time"

// Config holds all tool settings.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Scan    ScanConfig    `yaml:"scan"`
	Export  ExportConfig  `yaml:"export"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig holds asset tree locations.
type PathsConfig struct {
	// AssetDirs are the roots scanned for model and level files.
	AssetDirs []string `yaml:"asset_dirs"`
	// MaterialDirs hold .nsa shader definition files.
	MaterialDirs []string `yaml:"material_dirs"`
	// TextureDirs hold .dds textures for material resolution.
	TextureDirs []string `yaml:"texture_dirs"`
	// OutputDir receives converted files and the run manifest.
	OutputDir string `yaml:"output_dir"`
}

// ScanConfig bounds the heuristic recovery path.
type ScanConfig struct {
	MaxPoints     int           `yaml:"max_points"`
	MaxTriangles  int           `yaml:"max_triangles"`
	IndexDeadline time.Duration `yaml:"index_deadline"` // 0 uses the span-derived budget
}

// ExportConfig holds serializer settings.
type ExportConfig struct {
	// StubPlaceholders controls whether undecodable files still produce
	// placeholder output instead of being skipped.
	StubPlaceholders bool `yaml:"stub_placeholders"`
}

// BatchConfig holds batch conversion settings.
type BatchConfig struct {
	Workers      int    `yaml:"workers"` // 0 means GOMAXPROCS
	ManifestName string `yaml:"manifest_name"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			AssetDirs: []string{"."},
			OutputDir: "out",
		},
		Scan: ScanConfig{
			MaxPoints:    20000,
			MaxTriangles: 10000,
		},
		Export: ExportConfig{
			StubPlaceholders: true,
		},
		Batch: BatchConfig{
			Workers:      0,
			ManifestName: "manifest.json",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
