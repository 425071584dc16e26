package config

import (
	"flag"
)

// flagToSource maps flag names to config field names.
var flagToSource = map[string]string{
	"backend":        "backend",
	"data-dir":       "data_dir",
	"namespace":      "namespace",
	"validate":       "validate",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// parseFlags defines and parses CLI flags. Only flags that were explicitly
// set override lower layers. If sources is non-nil, it tracks the source of
// each value.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("clarity", flag.ContinueOnError)
	}

	// Storage
	backend := cfg.Backend
	dataDir := cfg.DataDir
	namespace := cfg.Namespace
	validate := cfg.Validate
	fs.StringVar(&backend, "backend", backend, "Storage backend (file, sqlite, memory)")
	fs.StringVar(&dataDir, "data-dir", dataDir, "Data directory")
	fs.StringVar(&namespace, "namespace", namespace, "Storage key for the task list")
	fs.BoolVar(&validate, "validate", validate, "Validate stored snapshots against the schema")

	// Logging
	logLevel := cfg.LogLevel
	logFormat := cfg.LogFormat
	logTimestamps := cfg.LogTimestamps
	logCaller := cfg.LogCaller
	fs.StringVar(&logLevel, "log-level", logLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&logFormat, "log-format", logFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&logTimestamps, "log-timestamps", logTimestamps, "Show timestamps in logs")
	fs.BoolVar(&logCaller, "log-caller", logCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Apply only the flags that were set
	fs.Visit(func(f *flag.Flag) {
		name, ok := flagToSource[f.Name]
		if !ok {
			return
		}
		switch f.Name {
		case "backend":
			setSource(&cfg.Backend, backend, sources, name, SourceFlag)
		case "data-dir":
			setSource(&cfg.DataDir, dataDir, sources, name, SourceFlag)
		case "namespace":
			setSource(&cfg.Namespace, namespace, sources, name, SourceFlag)
		case "validate":
			setSource(&cfg.Validate, validate, sources, name, SourceFlag)
		case "log-level":
			setSource(&cfg.LogLevel, logLevel, sources, name, SourceFlag)
		case "log-format":
			setSource(&cfg.LogFormat, logFormat, sources, name, SourceFlag)
		case "log-timestamps":
			setSource(&cfg.LogTimestamps, logTimestamps, sources, name, SourceFlag)
		case "log-caller":
			setSource(&cfg.LogCaller, logCaller, sources, name, SourceFlag)
		}
	})

	return nil
}
