package config

import (
	"io"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/nibzard/clarity-go/internal/logging"
	"github.com/nibzard/clarity-go/internal/storage"
)

// StorageConfig returns the settings for storage.Open.
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		Backend: c.Backend,
		DataDir: c.DataDir,
	}
}

// NewLogger builds the logger described by the log_* settings.
func (c *Config) NewLogger(w io.Writer) *log.Logger {
	return logging.NewFromConfig(w, c.LogLevel, c.LogFormat, c.LogTimestamps, c.LogCaller)
}

// Fields returns each configurable field with its current value, in the
// order of configFields.
func (c *Config) Fields() [][2]string {
	values := map[string]string{
		"backend":        c.Backend,
		"data_dir":       c.DataDir,
		"namespace":      c.Namespace,
		"validate":       strconv.FormatBool(c.Validate),
		"log_level":      c.LogLevel,
		"log_format":     c.LogFormat,
		"log_timestamps": strconv.FormatBool(c.LogTimestamps),
		"log_caller":     strconv.FormatBool(c.LogCaller),
	}
	fields := configFields()
	out := make([][2]string, len(fields))
	for i, name := range fields {
		out[i] = [2]string{name, values[name]}
	}
	return out
}
