package config

import (
	"github.com/nibzard/clarity-go/internal/claritydir"
	"github.com/nibzard/clarity-go/internal/storage"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource

	// Files lists the config files that were read, lowest priority first.
	Files []string
}

// Default values.
const (
	DefaultBackend   = storage.BackendFile
	DefaultDataDir   = "~/" + claritydir.Dir
	DefaultNamespace = claritydir.DefaultNamespace
	DefaultValidate  = true
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Config holds the full configuration for clarity.
type Config struct {
	// Storage
	Backend   string `toml:"backend"`
	DataDir   string `toml:"data_dir"`
	Namespace string `toml:"namespace"`

	// Validate snapshots against the JSON schema on load
	Validate bool `toml:"validate"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// fileConfig mirrors Config with pointer fields so a config file can be
// told apart from defaults: nil means the key was absent.
type fileConfig struct {
	Backend       *string `toml:"backend"`
	DataDir       *string `toml:"data_dir"`
	Namespace     *string `toml:"namespace"`
	Validate      *bool   `toml:"validate"`
	LogLevel      *string `toml:"log_level"`
	LogFormat     *string `toml:"log_format"`
	LogTimestamps *bool   `toml:"log_timestamps"`
	LogCaller     *bool   `toml:"log_caller"`
}
