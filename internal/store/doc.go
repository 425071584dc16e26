// Package store owns the task list and view filter.
//
// A Store is the only writer of task state. It is built explicitly with a
// storage.Slot, initialized once from the slot, and then mutated through
// six operations:
//
//   - AddTask: trims text, rejects blank text, inserts a new task at the front
//   - ToggleTask: flips completion of an existing task
//   - DeleteTask: removes an existing task
//   - UpdateTask: replaces the trimmed text of an existing task
//   - SetFilter: replaces the view filter
//   - ClearCompleted: drops every completed task, keeping the others in order
//
// Each operation is either a complete no-op (blank text, unknown id, nothing
// to clear) or a complete mutation. After every mutation the full state is
// written to the slot and a Change is published to subscribers. Slot write
// failures are logged and remembered, never returned: the in-memory state
// stays authoritative for the rest of the session.
package store
