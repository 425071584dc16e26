// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.clarity/clarity.toml or OS-specific config directory)
// 3. Project config file (clarity.toml or .clarity.toml in the working directory)
// 4. Environment variables (CLARITY_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.clarity/clarity.toml (preferred)
// - Windows: %APPDATA%\clarity\clarity.toml
// - macOS: ~/Library/Application Support/clarity/clarity.toml
// - Linux/BSD: $XDG_CONFIG_HOME/clarity/clarity.toml or ~/.config/clarity/clarity.toml
//
// Project-level config locations (overrides user config):
// - ./clarity.toml (preferred)
// - ./.clarity.toml
package config
