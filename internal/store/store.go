package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nibzard/clarity-go/internal/claritydir"
	"github.com/nibzard/clarity-go/internal/logging"
	"github.com/nibzard/clarity-go/internal/storage"
	"github.com/nibzard/clarity-go/internal/todo"
)

const (
	// DefaultPersistTimeout bounds a single slot write.
	DefaultPersistTimeout = 5 * time.Second

	// DefaultBufferSize is the per-subscriber change buffer.
	DefaultBufferSize = 16

	// maxIDAttempts bounds retries when the id generator collides.
	maxIDAttempts = 8
)

// Store is the task state container.
type Store struct {
	mu    sync.Mutex
	state todo.State

	slot           storage.Slot
	namespace      string
	logger         *log.Logger
	newID          func() string
	validate       bool
	persistTimeout time.Duration
	persistErr     error
	persisted      int
	initialized    bool
	rev            uint64

	subs       subscribers
	bufferSize int
}

// Option configures a Store.
type Option func(*Store)

// WithNamespace sets the slot key the state is saved under.
func WithNamespace(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.namespace = key
		}
	}
}

// WithLogger sets the logger used for persistence warnings.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator replaces the UUID generator for new task ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithValidation enables JSON Schema validation of the snapshot on Init.
func WithValidation(enabled bool) Option {
	return func(s *Store) {
		s.validate = enabled
	}
}

// WithPersistTimeout bounds each slot write.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.persistTimeout = d
		}
	}
}

// WithBufferSize sets the change buffer of each subscription.
func WithBufferSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.bufferSize = n
		}
	}
}

// New creates a store backed by slot. Call Init before use.
func New(slot storage.Slot, opts ...Option) *Store {
	s := &Store{
		state:          todo.NewState(),
		slot:           slot,
		namespace:      claritydir.DefaultNamespace,
		logger:         logging.Discard(),
		newID:          uuid.NewString,
		validate:       true,
		persistTimeout: DefaultPersistTimeout,
		bufferSize:     DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.subs.init()
	return s
}

// Init loads the persisted snapshot, or starts from an empty list showing
// all tasks when the slot has none.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return err
	}
	s.state = state
	s.initialized = true
	s.logger.Debug("store initialized", "namespace", s.namespace, "tasks", len(state.Tasks), "filter", state.Filter)
	return nil
}

func (s *Store) load(ctx context.Context) (todo.State, error) {
	if s.slot == nil {
		return todo.NewState(), nil
	}

	data, err := s.slot.Load(ctx, s.namespace)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return todo.NewState(), nil
		}
		return todo.State{}, fmt.Errorf("load snapshot %q: %w", s.namespace, err)
	}

	if s.validate {
		result := todo.Validate(data, todo.ValidationOptions{})
		for _, w := range result.Warnings {
			s.logger.Warn(w)
		}
		if err := result.Err(); err != nil {
			return todo.State{}, fmt.Errorf("invalid snapshot %q: %w", s.namespace, err)
		}
	}

	state, err := todo.Decode(data)
	if err != nil {
		return todo.State{}, fmt.Errorf("decode snapshot %q: %w", s.namespace, err)
	}
	// Holds even with schema validation off.
	if err := todo.ValidateState(state).Err(); err != nil {
		return todo.State{}, fmt.Errorf("invalid snapshot %q: %w", s.namespace, err)
	}
	return state, nil
}

// Namespace returns the slot key.
func (s *Store) Namespace() string {
	return s.namespace
}

// Initialized reports whether Init has completed.
func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// State returns a copy of the current state.
func (s *Store) State() todo.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Current returns a copy of the state with its revision, the number of
// mutations committed so far. It matches Change.Rev of the newest change.
func (s *Store) Current() (todo.State, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone(), s.rev
}

// Tasks returns a copy of the task list, newest first.
func (s *Store) Tasks() []todo.Task {
	return s.State().Tasks
}

// Filter returns the active filter.
func (s *Store) Filter() todo.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Filter
}

// Visible returns the tasks shown under the active filter.
func (s *Store) Visible() []todo.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return todo.Visible(s.state.Tasks, s.state.Filter)
}

// Remaining returns the number of tasks not yet completed.
func (s *Store) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return todo.Remaining(s.state.Tasks)
}

// Find returns the task with id.
func (s *Store) Find(id string) (todo.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.state.IndexOf(id); i >= 0 {
		return s.state.Tasks[i], true
	}
	return todo.Task{}, false
}

// LastPersistError returns the most recent slot write error, or nil if the
// last write succeeded.
func (s *Store) LastPersistError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistErr
}

// Persisted returns the number of successful slot writes.
func (s *Store) Persisted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persisted
}

// Close ends every subscription. The slot is owned by the caller.
func (s *Store) Close() {
	s.subs.closeAll()
}

// commit persists the state and notifies subscribers. Callers hold s.mu.
func (s *Store) commit(op Op, taskID string) {
	s.rev++
	s.persist()
	s.subs.publish(Change{
		Op:     op,
		TaskID: taskID,
		Rev:    s.rev,
		State:  s.state.Clone(),
	})
}

// persist writes the full state to the slot. Failures are logged and
// recorded; the in-memory mutation stands either way.
func (s *Store) persist() {
	if s.slot == nil {
		return
	}

	data, err := todo.Encode(s.state)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
		err = s.slot.Save(ctx, s.namespace, data)
		cancel()
	}
	if err != nil {
		if s.persistErr == nil {
			s.logger.Warn("could not save task list; changes will be lost on exit", "namespace", s.namespace, "err", err)
		} else {
			s.logger.Debug("save failed again", "namespace", s.namespace, "err", err)
		}
		s.persistErr = err
		return
	}
	if s.persistErr != nil {
		s.logger.Info("task list saved again", "namespace", s.namespace)
	}
	s.persistErr = nil
	s.persisted++
}
