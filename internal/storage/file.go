package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/nibzard/clarity-go/internal/claritydir"
)

const lockRetryDelay = 25 * time.Millisecond

// FileSlot stores each key in its own file under a directory.
// Writes go to a temp file that is renamed into place while holding an
// exclusive lock on <file>.lock, so readers never see a partial snapshot.
type FileSlot struct {
	dir    string
	mu     sync.Mutex
	closed bool
}

// NewFileSlot creates a file slot rooted at dir. The directory is created
// lazily on first save.
func NewFileSlot(dir string) (*FileSlot, error) {
	if dir == "" {
		return nil, fmt.Errorf("file slot dir is empty")
	}
	return &FileSlot{dir: dir}, nil
}

// Path returns the file used for key.
func (s *FileSlot) Path(key string) string {
	return claritydir.SnapshotPath(s.dir, SanitizeKey(key))
}

// Load reads the snapshot stored under key.
func (s *FileSlot) Load(ctx context.Context, key string) ([]byte, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.Path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read snapshot file %s: %w", path, err)
	}
	return data, nil
}

// Save atomically replaces the snapshot stored under key.
func (s *FileSlot) Save(ctx context.Context, key string, value []byte) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", s.dir, err)
	}

	path := s.Path(key)
	unlock, err := lockFile(ctx, path)
	if err != nil {
		return err
	}
	defer unlock()

	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp snapshot %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp snapshot %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp snapshot %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace snapshot file %s: %w", path, err)
	}
	return nil
}

// Remove deletes the snapshot stored under key.
func (s *FileSlot) Remove(ctx context.Context, key string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	path := s.Path(key)
	unlock, err := lockFile(ctx, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	defer unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove snapshot file %s: %w", path, err)
	}
	_ = os.Remove(path + ".lock")
	return nil
}

// UpdatedAt returns the modification time of the file stored under key.
func (s *FileSlot) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	if err := s.checkOpen(); err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(s.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, fmt.Errorf("stat snapshot file: %w", err)
	}
	return info.ModTime(), nil
}

// Close marks the slot closed. Subsequent calls fail with ErrClosed.
func (s *FileSlot) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *FileSlot) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// lockFile takes the exclusive lock guarding path, retrying until ctx is done.
func lockFile(ctx context.Context, path string) (func(), error) {
	lk := flock.New(path + ".lock")
	locked, err := lk.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("lock %s: %w", path, ErrLocked)
		}
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("lock %s: %w", path, ErrLocked)
	}
	return func() { _ = lk.Unlock() }, nil
}
