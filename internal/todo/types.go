// Package todo defines tasks, view filters, and the persisted snapshot format.
package todo

import (
	"fmt"
	"strings"
)

// Filter selects which tasks are shown.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters returns every filter value in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterActive, FilterCompleted}
}

// ParseFilter parses a filter name. Case and surrounding whitespace are ignored.
func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("invalid filter %q, must be one of: all, active, completed", s)
	}
	return f, nil
}

// Valid reports whether f is one of the known filter values.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterActive, FilterCompleted:
		return true
	}
	return false
}

// Matches reports whether t is shown under f.
func (f Filter) Matches(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Task represents a single to-do item.
type Task struct {
	ID        string `json:"id" yaml:"id" toml:"id"`
	Text      string `json:"text" yaml:"text" toml:"text"`
	Completed bool   `json:"completed" yaml:"completed" toml:"completed"`
}

// State is the task list plus the active filter.
type State struct {
	Tasks  []Task `json:"tasks" yaml:"tasks" toml:"tasks"`
	Filter Filter `json:"filter" yaml:"filter" toml:"filter"`
}

// NewState returns an empty task list showing all tasks.
func NewState() State {
	return State{
		Tasks:  []Task{},
		Filter: FilterAll,
	}
}

// Clone returns a copy of s that shares no memory with it.
func (s State) Clone() State {
	tasks := make([]Task, len(s.Tasks))
	copy(tasks, s.Tasks)
	return State{Tasks: tasks, Filter: s.Filter}
}

// Normalized returns a copy of s with task text trimmed and an empty
// filter defaulted to all. Tasks left blank are kept for ValidateState to
// reject.
func (s State) Normalized() State {
	out := s.Clone()
	if out.Filter == "" {
		out.Filter = FilterAll
	}
	for i := range out.Tasks {
		out.Tasks[i].Text = NormalizeText(out.Tasks[i].Text)
	}
	return out
}

// IndexOf returns the position of the task with id, or -1.
func (s State) IndexOf(id string) int {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// GetTask returns a task by ID, or nil if not found.
func (s *State) GetTask(id string) *Task {
	if i := s.IndexOf(id); i >= 0 {
		return &s.Tasks[i]
	}
	return nil
}

// Visible returns the tasks shown under the state's filter.
func (s State) Visible() []Task {
	return Visible(s.Tasks, s.Filter)
}

// NormalizeText trims task text. An empty result means the text is rejected.
func NormalizeText(text string) string {
	return strings.TrimSpace(text)
}

// Visible returns the tasks matching f, preserving order.
func Visible(tasks []Task, f Filter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Remaining returns the number of tasks not yet completed.
func Remaining(tasks []Task) int {
	c := CountTasks(tasks)
	return c.Total - c.Completed
}

// Counts summarizes a task list.
type Counts struct {
	Total     int
	Active    int
	Completed int
}

// CountTasks tallies tasks by completion.
func CountTasks(tasks []Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		} else {
			c.Active++
		}
	}
	return c
}

// Of returns the count shown under f.
func (c Counts) Of(f Filter) int {
	switch f {
	case FilterActive:
		return c.Active
	case FilterCompleted:
		return c.Completed
	default:
		return c.Total
	}
}
