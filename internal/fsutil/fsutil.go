// Package fsutil validates the files and directories named on the command
// line or in a configuration file.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotExist is returned when a path does not exist.
var ErrNotExist = errors.New("no such file or directory")

// PathOrErr returns path if it exists.
func PathOrErr(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("failed to open file '%s': %w", path, ErrNotExist)
	}
	return path, nil
}

// DirOrErr returns path if it exists and is a directory.
func DirOrErr(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to open directory '%s': %w", path, ErrNotExist)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("'%s' is not a directory", path)
	}
	return path, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// FileWithName returns path if it is a file named name, ignoring case.
func FileWithName(path, name string) (string, error) {
	if !isFile(path) {
		return "", fmt.Errorf("'%s' is not a file", path)
	}
	if !strings.EqualFold(filepath.Base(path), name) {
		return "", fmt.Errorf("expected file with name '%s', got '%s'", name, path)
	}
	return path, nil
}

// FileWithExt returns path if it is a file with extension ext, ignoring
// case. ext is given without the leading dot.
func FileWithExt(path, ext string) (string, error) {
	if !isFile(path) {
		return "", fmt.Errorf("'%s' is not a file", path)
	}
	fileExt := strings.TrimPrefix(filepath.Ext(path), ".")
	if fileExt == "" {
		return "", fmt.Errorf("expected file with extension '%s', got file '%s'", ext, path)
	}
	if !strings.EqualFold(fileExt, ext) {
		return "", fmt.Errorf("expected file extension '%s', got '%s'", ext, fileExt)
	}
	return path, nil
}

// FileWithNameOrExt accepts a file called name (e.g. ".clang-format") or a
// file whose extension equals name without its leading dot
// (e.g. "named.clang-format").
func FileWithNameOrExt(path, name string) (string, error) {
	if !isFile(path) {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("failed to open file '%s': %w", path, ErrNotExist)
		}
		return "", fmt.Errorf("'%s' is not a file", path)
	}
	if _, err := FileWithName(path, name); err == nil {
		return path, nil
	}
	if _, err := FileWithExt(path, strings.TrimPrefix(name, ".")); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("expected file with name '%s' or extension '%s', got '%s'", name, strings.TrimPrefix(name, "."), path)
}

// IsCommandName reports whether path is a bare file name without any
// directory component.
func IsCommandName(path string) bool {
	return path != "" && filepath.Base(path) == path && path != "." && path != ".."
}

// ExecutableOrExists resolves a command. Bare names are looked up in PATH.
// Other paths are resolved relative to root unless absolute and must exist.
func ExecutableOrExists(path, root string) (string, error) {
	if IsCommandName(path) {
		resolved, err := exec.LookPath(path)
		if err == nil {
			return resolved, nil
		}
		if root == "" {
			return "", fmt.Errorf("could not find executable '%s': %w", path, err)
		}
		// Fall back to a file next to the configuration.
	}

	full := path
	if !filepath.IsAbs(full) && root != "" {
		full = filepath.Join(root, path)
	}
	if _, err := os.Stat(full); err != nil {
		return "", fmt.Errorf("could not find '%s': %w", full, ErrNotExist)
	}
	return full, nil
}
