// Package todo defines tasks, view filters, and the persisted snapshot format.
//
// The snapshot written to the durable slot looks like:
//
//	{
//	  "state": {
//	    "tasks": [
//	      {
//	        "id": "0b8f6d1c-6c1e-4f57-9a52-3c2f4d0e9b11",
//	        "text": "Walk dog",
//	        "completed": false
//	      }
//	    ],
//	    "filter": "all"
//	  },
//	  "version": 0
//	}
//
// Tasks are stored newest first. The filter only selects which tasks are
// shown; it never changes the task list itself.
//
// # Validation
//
// Snapshots can be checked in two modes:
//
// 1. JSON Schema validation against the embedded snapshot.schema.json
//   - type checking, required fields, filter enum, non-blank text
//
// 2. Minimal fallback validation (when the schema cannot be compiled):
//   - version and tasks presence
//   - task id and text presence, filter enum
//
// Duplicate task ids are rejected in both modes.
//
// # File Format
//
// When encoding snapshots, the package uses:
//   - 2-space indentation
//   - Trailing newline
//   - Stable key ordering (via JSON marshaling)
package todo
