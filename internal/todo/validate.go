package todo

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed snapshot.schema.json
var snapshotSchema string

const snapshotSchemaURL = "snapshot.schema.json"

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationOptions controls validation behavior.
type ValidationOptions struct {
	// SkipSchema forces the minimal checks even when the schema compiles.
	SkipSchema bool
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	UsedSchema bool // true if JSON Schema validation was performed
}

// Err joins all validation errors, or returns nil if the snapshot is valid.
func (r *ValidationResult) Err() error {
	if r == nil || r.Valid {
		return nil
	}
	return errors.Join(r.Errors...)
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true
		if err := compiler.AddResource(snapshotSchemaURL, strings.NewReader(snapshotSchema)); err != nil {
			compileErr = err
			return
		}
		compiledSchema, compileErr = compiler.Compile(snapshotSchemaURL)
	})
	return compiledSchema, compileErr
}

// Validate validates raw snapshot bytes.
func Validate(data []byte, opts ValidationOptions) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Err: fmt.Errorf("parse snapshot: %w", err),
		})
		return result
	}

	if !opts.SkipSchema {
		schema, err := loadSchema()
		if err == nil {
			result.UsedSchema = true
			if err := schema.Validate(doc); err != nil {
				result.Valid = false
				appendSchemaErrors(result, err)
			}
		} else {
			result.Warnings = append(result.Warnings, fmt.Sprintf("invalid snapshot schema: %v", err))
			result.Warnings = append(result.Warnings, "JSON Schema validation not available, using minimal checks")
		}
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// The document parsed, so this is a type mismatch the schema already
		// reported when it ran.
		if !result.UsedSchema {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{Err: err})
		}
		return result
	}

	if !result.UsedSchema {
		validateMinimal(doc, &snap, result)
	}
	validateUniqueIDs(&snap.State, result)

	return result
}

// ValidateState checks an in-memory state against the task invariants.
func ValidateState(s State) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}
	if !s.Filter.Valid() {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Path: "state.filter",
			Err:  fmt.Errorf("invalid filter %q, must be one of: all, active, completed", s.Filter),
		})
	}
	for i := range s.Tasks {
		if err := validateTaskMinimal(&s.Tasks[i], fmt.Sprintf("state.tasks[%d]", i)); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err)
		}
	}
	validateUniqueIDs(&s, result)
	return result
}

// validateMinimal performs minimal validation without JSON Schema.
func validateMinimal(doc interface{}, snap *Snapshot, result *ValidationResult) {
	obj, _ := doc.(map[string]interface{})

	if _, ok := obj["version"]; !ok {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Path: "version",
			Err:  fmt.Errorf("missing required field"),
		})
	} else if snap.Version != SnapshotVersion {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Path: "version",
			Err:  fmt.Errorf("expected %d, got %d", SnapshotVersion, snap.Version),
		})
	}

	state, _ := obj["state"].(map[string]interface{})
	if _, ok := state["tasks"]; !ok {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Path: "state.tasks",
			Err:  fmt.Errorf("missing required field"),
		})
	}

	if !snap.State.Filter.Valid() {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Path: "state.filter",
			Err:  fmt.Errorf("invalid filter %q, must be one of: all, active, completed", snap.State.Filter),
		})
	}

	for i := range snap.State.Tasks {
		path := fmt.Sprintf("state.tasks[%d]", i)
		if err := validateTaskMinimal(&snap.State.Tasks[i], path); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err)
		}
	}
}

// validateTaskMinimal performs minimal task validation.
func validateTaskMinimal(task *Task, path string) *ValidationError {
	if task.ID == "" {
		return &ValidationError{
			Path: path + ".id",
			Err:  fmt.Errorf("missing required field"),
		}
	}

	if NormalizeText(task.Text) == "" {
		return &ValidationError{
			Path: path + ".text",
			Err:  fmt.Errorf("must not be empty"),
		}
	}

	return nil
}

func validateUniqueIDs(s *State, result *ValidationResult) {
	seen := make(map[string]int, len(s.Tasks))
	for i, task := range s.Tasks {
		if task.ID == "" {
			continue
		}
		if first, ok := seen[task.ID]; ok {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{
				Path: fmt.Sprintf("state.tasks[%d].id", i),
				Err:  fmt.Errorf("duplicate id %q (first used by state.tasks[%d])", task.ID, first),
			})
			continue
		}
		seen[task.ID] = i
	}
}

func appendSchemaErrors(result *ValidationResult, err error) {
	if err == nil {
		return
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		result.Errors = append(result.Errors, err)
		return
	}

	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// jsonPointerToPath converts "/state/tasks/0/text" to "state.tasks[0].text".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	path := ""
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}

	return path
}
