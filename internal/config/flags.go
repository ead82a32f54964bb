package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagOut      = flag.String("out", "", "Output directory")
	flagWorkers  = flag.Int("workers", 0, "Batch worker count (0 = all CPUs)")
	flagNoStubs  = flag.Bool("no-stubs", false, "Skip undecodable files instead of writing placeholders")
	flagLogFile  = flag.String("logfile", "", "Also log to this file (rotated)")
	flagDeadline = flag.Duration("index-deadline", 0, "Per-file index search budget (0 = automatic)")
)

// ParseFlags parses the arguments following the subcommand name. Remaining
// positionals are available through flag.Args afterwards.
func ParseFlags(args []string) {
	flag.CommandLine.Parse(args)
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagOut != "" {
		cfg.Paths.OutputDir = *flagOut
	}
	if *flagWorkers > 0 {
		cfg.Batch.Workers = *flagWorkers
	}
	if *flagNoStubs {
		cfg.Export.StubPlaceholders = false
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagDeadline > 0 {
		cfg.Scan.IndexDeadline = *flagDeadline
	}
}
