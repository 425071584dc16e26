// Package storage provides durable key-value slots for task list snapshots.
//
// A slot stores opaque bytes under a string key, much like browser local
// storage. Three backends are available:
//
//   - file: one JSON file per key, written atomically and guarded by a lock file
//   - sqlite: a single kv table in a sqlite database
//   - memory: a process-local map, for tests and throwaway sessions
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nibzard/clarity-go/internal/claritydir"
)

// Common errors returned by every slot implementation.
var (
	ErrNotFound = errors.New("key not found")
	ErrClosed   = errors.New("slot closed")
	ErrLocked   = errors.New("slot is locked by another process")
)

// Backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Slot is a durable key-value store for snapshots.
type Slot interface {
	// Load returns the value stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces the value stored under key.
	Save(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Stamper is implemented by slots that know when a key was last saved.
// The file and sqlite slots implement it.
type Stamper interface {
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}

// Config selects and configures a backend.
type Config struct {
	Backend string
	DataDir string
}

// Backends returns the supported backend names.
func Backends() []string {
	return []string{BackendFile, BackendSQLite, BackendMemory}
}

// NormalizeBackend lowercases a backend name and maps aliases.
func NormalizeBackend(name string) string {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "", "json":
		return BackendFile
	case "sqlite3", "db":
		return BackendSQLite
	case "mem":
		return BackendMemory
	default:
		return n
	}
}

// Open creates the slot described by cfg.
func Open(ctx context.Context, cfg Config) (Slot, error) {
	switch NormalizeBackend(cfg.Backend) {
	case BackendFile:
		return NewFileSlot(cfg.DataDir)
	case BackendSQLite:
		return NewSQLiteSlot(ctx, claritydir.DatabasePath(cfg.DataDir))
	case BackendMemory:
		return NewMemorySlot(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q, must be one of: %s", cfg.Backend, strings.Join(Backends(), ", "))
	}
}

// SanitizeKey maps a key to a safe file name component.
func SanitizeKey(key string) string {
	if strings.TrimSpace(key) == "" {
		return "default"
	}

	var b strings.Builder
	lastUnderscore := false
	for i := 0; i < len(key); i++ {
		c := key[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-'
		if !valid {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteByte(c)
		lastUnderscore = false
	}

	safe := strings.Trim(b.String(), "_.")
	if safe == "" {
		return "default"
	}
	return safe
}
