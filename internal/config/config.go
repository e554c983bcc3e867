// Package config loads the JSON configuration that selects the sources to
// format and the style to format them with.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/715d/runfmt/internal/fsutil"
)

// ErrInvalid is wrapped by every validation failure of a configuration file.
var ErrInvalid = errors.New("invalid configuration")

// Model is the content of the JSON configuration file.
type Model struct {
	// Paths are globs, relative to the configuration file, selecting the
	// files to format.
	Paths []string `json:"paths"`

	// Blacklist are globs removing files from the selection.
	Blacklist []string `json:"blacklist,omitempty"`

	// StyleFile is an optional path to a .clang-format style file. It may
	// also be given with --style.
	StyleFile string `json:"styleFile,omitempty"`

	// StyleRoot is an optional directory the style file is copied to while
	// formatting.
	StyleRoot string `json:"styleRoot,omitempty"`

	// Command is an optional path to, or name of, the clang-format
	// executable.
	Command string `json:"command,omitempty"`

	// Root is the directory containing the configuration file.
	Root string `json:"-"`

	// Name is the configuration file path as given.
	Name string `json:"-"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Model, error) {
	if _, err := fsutil.PathOrErr(path); err != nil {
		return nil, err
	}
	if _, err := fsutil.FileWithExt(path, "json"); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open provided JSON file '%s': %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("validation failed for '%s': %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving '%s': %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	m.Root = filepath.Dir(abs)
	m.Name = path
	return m, nil
}

// Parse decodes a configuration document. The returned model has no Root.
func Parse(data []byte) (*Model, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalid)
	}

	var raw struct {
		Model
		Paths *[]string `json:"paths"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if raw.Paths == nil {
		return nil, fmt.Errorf("%w: missing field 'paths'", ErrInvalid)
	}

	m := raw.Model
	m.Paths = *raw.Paths
	return &m, nil
}

// Data combines a loaded configuration with the command line overrides.
type Data struct {
	JSON *Model

	// Style is the --style override, empty if not given.
	Style string

	// Command is the --command override, empty if not given.
	Command string

	// Jobs limits the number of concurrent formatter runs. Zero selects
	// the number of CPUs.
	Jobs int
}
