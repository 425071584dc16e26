package storage

import (
	"context"
	"sync"
)

// MemorySlot implements Slot with an in-process map.
// Useful for testing and for sessions that should not survive exit.
type MemorySlot struct {
	mu      sync.RWMutex
	data    map[string][]byte
	saveErr error
	saves   int
	closed  bool
}

// NewMemorySlot creates an empty memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{data: make(map[string][]byte)}
}

// Load returns a copy of the value stored under key.
func (m *MemorySlot) Load(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Save stores a copy of value under key, or returns the error set by FailSaves.
func (m *MemorySlot) Save(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[key] = append([]byte(nil), value...)
	m.saves++
	return nil
}

// Remove deletes key.
func (m *MemorySlot) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.data, key)
	return nil
}

// Close marks the slot closed.
func (m *MemorySlot) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// FailSaves makes every subsequent Save return err. Pass nil to recover.
func (m *MemorySlot) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// Saves returns the number of successful saves.
func (m *MemorySlot) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
