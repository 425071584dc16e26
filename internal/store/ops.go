package store

import (
	"fmt"

	"github.com/nibzard/clarity-go/internal/todo"
)

// AddTask inserts a new incomplete task at the front of the list. Blank
// text (after trimming) is ignored and reports false.
func (s *Store) AddTask(text string) (todo.Task, bool) {
	text = todo.NormalizeText(text)
	if text == "" {
		return todo.Task{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.uniqueID()
	if !ok {
		s.logger.Warn("could not generate a unique task id", "attempts", maxIDAttempts)
		return todo.Task{}, false
	}

	task := todo.Task{ID: id, Text: text}
	tasks := make([]todo.Task, 0, len(s.state.Tasks)+1)
	tasks = append(tasks, task)
	s.state.Tasks = append(tasks, s.state.Tasks...)

	s.commit(OpAdd, id)
	return task, true
}

func (s *Store) uniqueID() (string, bool) {
	for range maxIDAttempts {
		id := s.newID()
		if id != "" && s.state.IndexOf(id) < 0 {
			return id, true
		}
	}
	return "", false
}

// ToggleTask flips the completion of the task with id. Unknown ids are
// ignored and report false.
func (s *Store) ToggleTask(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.state.GetTask(id)
	if task == nil {
		return false
	}
	task.Completed = !task.Completed
	s.commit(OpToggle, id)
	return true
}

// DeleteTask removes the task with id. Unknown ids are ignored.
func (s *Store) DeleteTask(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.IndexOf(id)
	if i < 0 {
		return false
	}
	tasks := make([]todo.Task, 0, len(s.state.Tasks)-1)
	tasks = append(tasks, s.state.Tasks[:i]...)
	s.state.Tasks = append(tasks, s.state.Tasks[i+1:]...)
	s.commit(OpDelete, id)
	return true
}

// UpdateTask replaces the text of the task with id, keeping its position
// and completion. Blank text or an unknown id is ignored.
func (s *Store) UpdateTask(id, text string) bool {
	text = todo.NormalizeText(text)
	if text == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.state.GetTask(id)
	if task == nil {
		return false
	}
	task.Text = text
	s.commit(OpUpdate, id)
	return true
}

// SetFilter switches the view filter. Setting the current filter again
// still persists and notifies. Invalid filters are ignored.
func (s *Store) SetFilter(f todo.Filter) bool {
	if !f.Valid() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Filter = f
	s.commit(OpSetFilter, "")
	return true
}

// ClearCompleted removes every completed task and returns how many went.
func (s *Store) ClearCompleted() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]todo.Task, 0, len(s.state.Tasks))
	for _, t := range s.state.Tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	removed := len(s.state.Tasks) - len(kept)
	if removed == 0 {
		return 0
	}
	s.state.Tasks = kept
	s.commit(OpClearCompleted, "")
	return removed
}

// Replace swaps in a whole state, as an import does. Task text is trimmed
// first; the result must pass todo.ValidateState.
func (s *Store) Replace(state todo.State) error {
	state = state.Normalized()
	if err := todo.ValidateState(state).Err(); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state
	s.commit(OpReplace, "")
	return nil
}
