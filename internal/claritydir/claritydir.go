// Package claritydir provides constants and utilities for the .clarity directory structure.
package claritydir

import (
	"os"
	"path/filepath"
)

const (
	// Dir is the name of the clarity state directory.
	Dir = ".clarity"

	// DefaultNamespace is the storage key the task list is saved under.
	DefaultNamespace = "clarity-todo-list"

	// DefaultDatabaseFile is the sqlite database file name (inside .clarity).
	DefaultDatabaseFile = "clarity.db"

	// DefaultConfigFile is the default config file name (inside .clarity).
	DefaultConfigFile = "clarity.toml"

	// SnapshotExt is the extension of file-backend snapshots.
	SnapshotExt = ".json"
)

// UserDir returns ~/.clarity, or .clarity when the home directory is unknown.
func UserDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return Dir
	}
	return filepath.Join(home, Dir)
}

// DatabasePath returns the full path to the sqlite database within a data directory.
func DatabasePath(dataDir string) string {
	return joinPath(dataDir, DefaultDatabaseFile)
}

// ConfigPath returns the full path to the config file within a data directory.
func ConfigPath(dataDir string) string {
	return joinPath(dataDir, DefaultConfigFile)
}

// SnapshotPath returns the file-backend path for an already sanitized key.
func SnapshotPath(dataDir, key string) string {
	return joinPath(dataDir, key+SnapshotExt)
}

func joinPath(dataDir, file string) string {
	if dataDir == "" {
		dataDir = Dir
	}
	return filepath.Join(dataDir, file)
}
