package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/clarity-go/internal/logging"
	"github.com/nibzard/clarity-go/internal/storage"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.clarity/clarity.toml or OS-specific config dir)
// 3. Project config file (clarity.toml or .clarity.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := load(fs, args, nil)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Returns ConfigWithSources containing the config and a map of field names to their sources.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}
	return load(fs, args, sources)
}

func load(fs *flag.FlagSet, args []string, sources map[string]ConfigSource) (*ConfigWithSources, error) {
	cfg := &Config{}
	cws := &ConfigWithSources{Config: cfg, Sources: sources}

	// 1. Set defaults
	setDefaults(cfg)

	// 2. Try to load from user config file
	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
		cws.Files = append(cws.Files, path)
	}

	// 3. Try to load from project config file (overrides user config)
	if path := findProjectConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
		cws.Files = append(cws.Files, path)
	}

	// 4. Override from environment
	if err := loadFromEnv(cfg, sources); err != nil {
		return nil, err
	}

	// 5. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cws, nil
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"backend",
		"data_dir",
		"namespace",
		"validate",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// loadConfigFile decodes a TOML file over cfg. Only keys present in the
// file are applied, so a user file is not clobbered by a sparse project file.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	applyFileString(&cfg.Backend, fc.Backend, sources, "backend", source)
	applyFileString(&cfg.DataDir, fc.DataDir, sources, "data_dir", source)
	applyFileString(&cfg.Namespace, fc.Namespace, sources, "namespace", source)
	applyFileBool(&cfg.Validate, fc.Validate, sources, "validate", source)
	applyFileString(&cfg.LogLevel, fc.LogLevel, sources, "log_level", source)
	applyFileString(&cfg.LogFormat, fc.LogFormat, sources, "log_format", source)
	applyFileBool(&cfg.LogTimestamps, fc.LogTimestamps, sources, "log_timestamps", source)
	applyFileBool(&cfg.LogCaller, fc.LogCaller, sources, "log_caller", source)
	return nil
}

func applyFileString(field *string, value *string, sources map[string]ConfigSource, name string, source ConfigSource) {
	if value == nil || *value == "" {
		return
	}
	setSource(field, *value, sources, name, source)
}

func applyFileBool(field *bool, value *bool, sources map[string]ConfigSource, name string, source ConfigSource) {
	if value == nil {
		return
	}
	setSource(field, *value, sources, name, source)
}

// setSource sets field and records where the value came from.
func setSource[T any](field *T, value T, sources map[string]ConfigSource, name string, source ConfigSource) {
	*field = value
	if sources != nil {
		sources[name] = source
	}
}

// finalizeConfig computes derived values and validates settings.
func finalizeConfig(cfg *Config) error {
	cfg.Backend = storage.NormalizeBackend(cfg.Backend)
	if !validBackend(cfg.Backend) {
		return fmt.Errorf("unknown backend %q, must be one of: %s", cfg.Backend, strings.Join(storage.Backends(), ", "))
	}
	if !logging.ValidLevel(cfg.LogLevel) {
		return fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	if !logging.ValidFormat(cfg.LogFormat) {
		return fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}
	if strings.TrimSpace(cfg.Namespace) == "" {
		cfg.Namespace = DefaultNamespace
	}

	// Expand ~ in paths
	cfg.DataDir = expandPath(cfg.DataDir)

	// Determine project root
	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	// Relative data dirs are anchored at the project root
	if !filepath.IsAbs(cfg.DataDir) {
		cfg.DataDir = filepath.Join(cfg.ProjectRoot, cfg.DataDir)
	}

	return nil
}

func validBackend(name string) bool {
	for _, b := range storage.Backends() {
		if b == name {
			return true
		}
	}
	return false
}
