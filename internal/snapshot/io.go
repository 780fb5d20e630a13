package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for paths without a .json, .yaml or .yml extension.
var ErrUnsupportedFormat = errors.New("unsupported snapshot format")

type format int

const (
	formatJSON format = iota + 1
	formatYAML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Load reads and decodes a snapshot file.
func Load(path string) (State, error) {
	f, err := ReadFile(path)
	if err != nil {
		return State{}, err
	}
	state, err := f.Decode()
	if err != nil {
		return State{}, fmt.Errorf("%s: %w", path, err)
	}
	return state, nil
}

// ReadFile reads a snapshot file without decoding amounts.
func ReadFile(path string) (File, error) {
	fmtKind, err := formatOf(path)
	if err != nil {
		return File{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read snapshot: %w", err)
	}

	var f File
	switch fmtKind {
	case formatJSON:
		err = json.Unmarshal(data, &f)
	case formatYAML:
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return File{}, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return f, nil
}

// Save encodes a state and writes it atomically.
func Save(path string, state State) error {
	fmtKind, err := formatOf(path)
	if err != nil {
		return err
	}

	f := Encode(state)
	var data []byte
	switch fmtKind {
	case formatJSON:
		data, err = json.MarshalIndent(f, "", "  ")
		data = append(data, '\n')
	case formatYAML:
		data, err = yaml.Marshal(f)
	}
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}
