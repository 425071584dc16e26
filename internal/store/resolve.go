package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/nibzard/clarity-go/internal/todo"
)

var (
	// ErrTaskNotFound indicates no task matched a reference.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAmbiguousRef indicates an id prefix matched more than one task.
	ErrAmbiguousRef = errors.New("ambiguous task reference")

	// ErrTaskRefRequired indicates an empty reference.
	ErrTaskRefRequired = errors.New("task reference required")
)

// Resolve finds a task by reference. Rules, first match wins:
//  1. exact task id
//  2. all digits: 1-based position in the visible list
//  3. unique id prefix
func (s *Store) Resolve(ref string) (todo.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return todo.Task{}, ErrTaskRefRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.state.IndexOf(ref); i >= 0 {
		return s.state.Tasks[i], nil
	}

	if isAllDigits(ref) {
		visible := s.state.Visible()
		n, err := strconv.Atoi(ref)
		if err != nil || n < 1 || n > len(visible) {
			return todo.Task{}, fmt.Errorf("%w: no task #%s in %s view (%d shown)", ErrTaskNotFound, ref, s.state.Filter, len(visible))
		}
		return visible[n-1], nil
	}

	var match *todo.Task
	for i := range s.state.Tasks {
		if !strings.HasPrefix(s.state.Tasks[i].ID, ref) {
			continue
		}
		if match != nil {
			return todo.Task{}, fmt.Errorf("%w: %q", ErrAmbiguousRef, ref)
		}
		match = &s.state.Tasks[i]
	}
	if match == nil {
		return todo.Task{}, fmt.Errorf("%w: %q", ErrTaskNotFound, ref)
	}
	return *match, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
