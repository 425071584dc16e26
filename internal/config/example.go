package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# Clarity configuration file
# Values can be overridden by CLARITY_* environment variables or CLI flags

# Storage backend: file, sqlite or memory
backend = "file"

# Data directory (supports ~ expansion and %VAR% on Windows)
data_dir = "~/.clarity"

# Storage key the task list is saved under
namespace = "clarity-todo-list"

# Validate stored snapshots against the JSON schema on startup
validate = true

# Logging: debug, info, warn, error
log_level = "warn"

# Log format: text, json, logfmt
log_format = "text"

log_timestamps = false
log_caller = false
`
}
