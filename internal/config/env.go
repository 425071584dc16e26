package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables read by loadFromEnv.
const (
	EnvBackend       = "CLARITY_BACKEND"
	EnvDataDir       = "CLARITY_DATA_DIR"
	EnvNamespace     = "CLARITY_NAMESPACE"
	EnvValidate      = "CLARITY_VALIDATE"
	EnvLogLevel      = "CLARITY_LOG_LEVEL"
	EnvLogFormat     = "CLARITY_LOG_FORMAT"
	EnvLogTimestamps = "CLARITY_LOG_TIMESTAMPS"
	EnvLogCaller     = "CLARITY_LOG_CALLER"
)

// loadFromEnv overrides config from environment variables.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	setEnv := func(field *string, name, key string) {
		if v := os.Getenv(key); v != "" {
			setSource(field, v, sources, name, SourceEnv)
		}
	}
	setEnvBool := func(field *bool, name, key string) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q", key, v)
		}
		setSource(field, b, sources, name, SourceEnv)
		return nil
	}

	setEnv(&cfg.Backend, "backend", EnvBackend)
	setEnv(&cfg.DataDir, "data_dir", EnvDataDir)
	setEnv(&cfg.Namespace, "namespace", EnvNamespace)
	setEnv(&cfg.LogLevel, "log_level", EnvLogLevel)
	setEnv(&cfg.LogFormat, "log_format", EnvLogFormat)

	if err := setEnvBool(&cfg.Validate, "validate", EnvValidate); err != nil {
		return err
	}
	if err := setEnvBool(&cfg.LogTimestamps, "log_timestamps", EnvLogTimestamps); err != nil {
		return err
	}
	return setEnvBool(&cfg.LogCaller, "log_caller", EnvLogCaller)
}
