package todo

import (
	"errors"
	"strings"
	"testing"
)

func sampleState() State {
	return State{
		Tasks: []Task{
			{ID: "b", Text: "Walk dog", Completed: false},
			{ID: "a", Text: "Buy milk", Completed: true},
			{ID: "c", Text: "Write report", Completed: false},
		},
		Filter: FilterActive,
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := sampleState()

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("encoded snapshot should end with a newline")
	}
	if !strings.Contains(string(data), `"version": 0`) {
		t.Errorf("encoded snapshot missing version: %s", data)
	}

	loaded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if loaded.Filter != original.Filter {
		t.Errorf("Filter: got %s, want %s", loaded.Filter, original.Filter)
	}
	if len(loaded.Tasks) != len(original.Tasks) {
		t.Fatalf("Tasks count: got %d, want %d", len(loaded.Tasks), len(original.Tasks))
	}
	for i := range original.Tasks {
		if loaded.Tasks[i] != original.Tasks[i] {
			t.Errorf("Tasks[%d]: got %+v, want %+v", i, loaded.Tasks[i], original.Tasks[i])
		}
	}
}

func TestDecodeDefaults(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		wantFilter Filter
		wantTasks  int
		wantErr    bool
	}{
		{"missing filter", `{"state":{"tasks":[]},"version":0}`, FilterAll, 0, false},
		{"null tasks", `{"state":{"tasks":null,"filter":"completed"},"version":0}`, FilterCompleted, 0, false},
		{"empty envelope", `{}`, FilterAll, 0, false},
		{"invalid filter", `{"state":{"tasks":[],"filter":"done"},"version":0}`, "", 0, true},
		{"newer version", `{"state":{"tasks":[],"filter":"all"},"version":7}`, "", 0, true},
		{"not json", `tasks: []`, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Decode([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if s.Filter != tt.wantFilter {
				t.Errorf("Filter: got %q, want %q", s.Filter, tt.wantFilter)
			}
			if s.Tasks == nil {
				t.Error("Tasks should never decode to nil")
			}
			if len(s.Tasks) != tt.wantTasks {
				t.Errorf("Tasks count: got %d, want %d", len(s.Tasks), tt.wantTasks)
			}
		})
	}
}

func TestDecodeTrimsText(t *testing.T) {
	data := `{"state":{"tasks":[{"id":"a","text":"  padded \n","completed":true}],"filter":"all"},"version":0}`
	s, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if s.Tasks[0].Text != "padded" {
		t.Errorf("Text: got %q, want %q", s.Tasks[0].Text, "padded")
	}

	s, err = Import([]byte("state:\n  tasks:\n    - id: a\n      text: '  yaml  '\n"), FormatYAML)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if s.Tasks[0].Text != "yaml" || s.Filter != FilterAll {
		t.Errorf("Import: got %+v", s)
	}
}

func TestNormalized(t *testing.T) {
	in := State{Tasks: []Task{{ID: "a", Text: " x "}, {ID: "b", Text: "   "}}}
	out := in.Normalized()

	if out.Filter != FilterAll {
		t.Errorf("Filter: got %q", out.Filter)
	}
	if out.Tasks[0].Text != "x" || out.Tasks[1].Text != "" {
		t.Errorf("Tasks: got %+v", out.Tasks)
	}
	if in.Tasks[0].Text != " x " {
		t.Error("Normalized modified its receiver")
	}
	if ValidateState(out).Valid {
		t.Error("blank text should still fail ValidateState")
	}
	if (State{}).Normalized().Tasks == nil {
		t.Error("Normalized should never return nil tasks")
	}
}

func TestExportImport(t *testing.T) {
	original := sampleState()

	for _, format := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Export(original, format)
			if err != nil {
				t.Fatalf("Export failed: %v", err)
			}
			loaded, err := Import(data, format)
			if err != nil {
				t.Fatalf("Import failed: %v\n%s", err, data)
			}
			if loaded.Filter != original.Filter {
				t.Errorf("Filter: got %s, want %s", loaded.Filter, original.Filter)
			}
			if len(loaded.Tasks) != len(original.Tasks) {
				t.Fatalf("Tasks count: got %d, want %d", len(loaded.Tasks), len(original.Tasks))
			}
			for i := range original.Tasks {
				if loaded.Tasks[i] != original.Tasks[i] {
					t.Errorf("Tasks[%d]: got %+v, want %+v", i, loaded.Tasks[i], original.Tasks[i])
				}
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{" toml ", FormatTOML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"all", FilterAll, false},
		{"Active", FilterActive, false},
		{"  completed ", FilterCompleted, false},
		{"", "", true},
		{"done", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFilter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFilter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFilter(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestVisible(t *testing.T) {
	s := sampleState()

	tests := []struct {
		filter Filter
		want   []string
	}{
		{FilterAll, []string{"Walk dog", "Buy milk", "Write report"}},
		{FilterActive, []string{"Walk dog", "Write report"}},
		{FilterCompleted, []string{"Buy milk"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := Visible(s.Tasks, tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("Visible(%s): got %d tasks, want %d", tt.filter, len(got), len(tt.want))
			}
			for i, text := range tt.want {
				if got[i].Text != text {
					t.Errorf("Visible(%s)[%d]: got %q, want %q", tt.filter, i, got[i].Text, text)
				}
			}
		})
	}

	if got := s.Visible(); len(got) != 2 {
		t.Errorf("State.Visible with active filter: got %d tasks, want 2", len(got))
	}
}

func TestRemainingAndCounts(t *testing.T) {
	s := sampleState()

	if got := Remaining(s.Tasks); got != 2 {
		t.Errorf("Remaining: got %d, want 2", got)
	}
	if got := Remaining(nil); got != 0 {
		t.Errorf("Remaining(nil): got %d, want 0", got)
	}

	c := CountTasks(s.Tasks)
	if c.Total != 3 || c.Active != 2 || c.Completed != 1 {
		t.Errorf("CountTasks: got %+v", c)
	}
	if c.Of(FilterAll) != 3 || c.Of(FilterActive) != 2 || c.Of(FilterCompleted) != 1 {
		t.Errorf("Counts.Of mismatch: %+v", c)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := sampleState()
	c := s.Clone()
	c.Tasks[0].Text = "changed"
	c.Filter = FilterAll

	if s.Tasks[0].Text != "Walk dog" {
		t.Errorf("Clone shares task memory: original text is %q", s.Tasks[0].Text)
	}
	if s.Filter != FilterActive {
		t.Errorf("Clone changed original filter to %s", s.Filter)
	}
}

func TestGetTask(t *testing.T) {
	s := sampleState()

	// Existing task
	task := s.GetTask("a")
	if task == nil {
		t.Fatal("GetTask(a) returned nil")
	}
	if task.Text != "Buy milk" {
		t.Errorf("Text: got %s, want Buy milk", task.Text)
	}

	// Non-existing task
	if task := s.GetTask("zzz"); task != nil {
		t.Errorf("GetTask(zzz) should return nil, got %+v", task)
	}
	if i := s.IndexOf("c"); i != 2 {
		t.Errorf("IndexOf(c): got %d, want 2", i)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantErr  bool
		wantPath string
	}{
		{
			name:    "valid snapshot",
			data:    `{"state":{"tasks":[{"id":"a","text":"Buy milk","completed":false}],"filter":"all"},"version":0}`,
			wantErr: false,
		},
		{
			name:    "empty list",
			data:    `{"state":{"tasks":[],"filter":"active"},"version":0}`,
			wantErr: false,
		},
		{
			name:     "missing version",
			data:     `{"state":{"tasks":[],"filter":"all"}}`,
			wantErr:  true,
			wantPath: "",
		},
		{
			name:     "wrong version",
			data:     `{"state":{"tasks":[],"filter":"all"},"version":3}`,
			wantErr:  true,
			wantPath: "version",
		},
		{
			name:     "invalid filter",
			data:     `{"state":{"tasks":[],"filter":"done"},"version":0}`,
			wantErr:  true,
			wantPath: "state.filter",
		},
		{
			name:     "blank text",
			data:     `{"state":{"tasks":[{"id":"a","text":"   ","completed":false}],"filter":"all"},"version":0}`,
			wantErr:  true,
			wantPath: "state.tasks[0].text",
		},
		{
			name:     "missing id",
			data:     `{"state":{"tasks":[{"text":"x","completed":false}],"filter":"all"},"version":0}`,
			wantErr:  true,
			wantPath: "state.tasks[0]",
		},
		{
			name:     "duplicate ids",
			data:     `{"state":{"tasks":[{"id":"a","text":"x","completed":false},{"id":"a","text":"y","completed":true}],"filter":"all"},"version":0}`,
			wantErr:  true,
			wantPath: "state.tasks[1].id",
		},
		{
			name:    "not json",
			data:    `{`,
			wantErr: true,
		},
	}

	for _, mode := range []struct {
		name string
		opts ValidationOptions
	}{
		{"schema", ValidationOptions{}},
		{"minimal", ValidationOptions{SkipSchema: true}},
	} {
		for _, tt := range tests {
			t.Run(mode.name+"/"+tt.name, func(t *testing.T) {
				result := Validate([]byte(tt.data), mode.opts)
				if result.Valid == tt.wantErr {
					t.Fatalf("Validate() valid = %v, want error %v (errors: %v)", result.Valid, tt.wantErr, result.Errors)
				}
				if !tt.wantErr {
					if result.Err() != nil {
						t.Errorf("Err() should be nil for a valid snapshot, got %v", result.Err())
					}
					return
				}
				if result.Err() == nil {
					t.Error("Err() should be non-nil for an invalid snapshot")
				}
				if tt.wantPath == "" {
					return
				}
				found := false
				for _, err := range result.Errors {
					var ve *ValidationError
					if errors.As(err, &ve) && strings.HasPrefix(ve.Path, tt.wantPath) {
						found = true
					}
				}
				if !found {
					t.Errorf("expected an error at %q, got %v", tt.wantPath, result.Errors)
				}
			})
		}
	}
}

func TestValidateUsesSchema(t *testing.T) {
	data := []byte(`{"state":{"tasks":[],"filter":"all"},"version":0}`)

	if result := Validate(data, ValidationOptions{}); !result.UsedSchema {
		t.Errorf("expected schema validation, warnings: %v", result.Warnings)
	}
	if result := Validate(data, ValidationOptions{SkipSchema: true}); result.UsedSchema {
		t.Error("SkipSchema should disable schema validation")
	}
}

func TestValidateState(t *testing.T) {
	if result := ValidateState(sampleState()); !result.Valid {
		t.Errorf("sample state should be valid: %v", result.Errors)
	}

	bad := State{
		Tasks: []Task{
			{ID: "a", Text: "x"},
			{ID: "a", Text: " "},
		},
		Filter: "bogus",
	}
	result := ValidateState(bad)
	if result.Valid {
		t.Fatal("expected invalid state")
	}
	if len(result.Errors) != 3 {
		t.Errorf("expected 3 errors (filter, blank text, duplicate id), got %d: %v", len(result.Errors), result.Errors)
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"#/state/tasks/0/text", "state.tasks[0].text"},
		{"/state/filter", "state.filter"},
		{"/a~1b/c~0d", "a/b.c~d"},
	}
	for _, tt := range tests {
		if got := jsonPointerToPath(tt.in); got != tt.want {
			t.Errorf("jsonPointerToPath(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
