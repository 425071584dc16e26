package todo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// SnapshotVersion is the storage schema version written with every snapshot.
const SnapshotVersion = 0

// Snapshot is the envelope persisted to the durable slot.
type Snapshot struct {
	State   State `json:"state" yaml:"state" toml:"state"`
	Version int   `json:"version" yaml:"version" toml:"version"`
}

// Format names an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat parses an export format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported format %q, must be one of: json, yaml, toml", s)
}

// Encode writes state as a snapshot with 2-space indentation.
func Encode(s State) ([]byte, error) {
	data, err := json.MarshalIndent(newSnapshot(s), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	// Add trailing newline
	data = append(data, '\n')
	return data, nil
}

// Decode parses a snapshot. A missing filter decodes to all and missing
// tasks decode to an empty list.
func Decode(data []byte) (State, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return State{}, fmt.Errorf("parse snapshot: %w", err)
	}
	return normalizeSnapshot(snap)
}

// Export encodes state in the given format.
func Export(s State, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return Encode(s)
	case FormatYAML:
		data, err := yaml.Marshal(newSnapshot(s))
		if err != nil {
			return nil, fmt.Errorf("marshal yaml snapshot: %w", err)
		}
		return data, nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(newSnapshot(s)); err != nil {
			return nil, fmt.Errorf("marshal toml snapshot: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// Import decodes a snapshot in the given format.
func Import(data []byte, format Format) (State, error) {
	var snap Snapshot
	switch format {
	case FormatJSON, "":
		return Decode(data)
	case FormatYAML:
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return State{}, fmt.Errorf("parse yaml snapshot: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &snap); err != nil {
			return State{}, fmt.Errorf("parse toml snapshot: %w", err)
		}
	default:
		return State{}, fmt.Errorf("unsupported format %q", format)
	}
	return normalizeSnapshot(snap)
}

func newSnapshot(s State) Snapshot {
	snap := Snapshot{State: s.Clone(), Version: SnapshotVersion}
	if snap.State.Filter == "" {
		snap.State.Filter = FilterAll
	}
	return snap
}

func normalizeSnapshot(snap Snapshot) (State, error) {
	if snap.Version > SnapshotVersion {
		return State{}, fmt.Errorf("snapshot version %d is newer than supported version %d", snap.Version, SnapshotVersion)
	}
	s := snap.State.Normalized()
	if !s.Filter.Valid() {
		return State{}, fmt.Errorf("parse snapshot: invalid filter %q", s.Filter)
	}
	return s, nil
}
