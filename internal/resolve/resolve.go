// Package resolve decides which style file, style root and formatter command
// a run uses, merging the configuration file with command line overrides.
package resolve

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/715d/runfmt/internal/config"
	"github.com/715d/runfmt/internal/fsutil"
)

// StyleFileName is the name clang-format looks for when -style=file is used.
const StyleFileName = ".clang-format"

// DefaultCommand is used when neither the configuration nor the command line
// name a formatter.
const DefaultCommand = "clang-format"

var (
	// ErrNoStyle is returned when a style root is configured without a style
	// file.
	ErrNoStyle = errors.New("style file must either be specified as command-line parameter or within the configuration file")

	// ErrNoStyleRoot is returned when a style file is given without a style
	// root.
	ErrNoStyleRoot = errors.New("missing root folder configuration")
)

// Style is a style file and the directory it is copied to.
type Style struct {
	File string
	Root string
}

func absolute(path, root string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

func styleFile(data *config.Data) (string, error) {
	if data.Style != "" {
		if data.JSON.StyleFile != "" {
			slog.Debug("override detected",
				"field", "styleFile",
				"config", data.JSON.Name,
				"configured", data.JSON.StyleFile,
				"parameter", data.Style)
		}
		path, err := fsutil.FileWithNameOrExt(data.Style, StyleFileName)
		if err != nil {
			return "", fmt.Errorf("invalid parameter --style: %w", err)
		}
		return filepath.Abs(path)
	}

	if data.JSON.StyleFile == "" {
		return "", ErrNoStyle
	}
	path, err := fsutil.FileWithNameOrExt(absolute(data.JSON.StyleFile, data.JSON.Root), StyleFileName)
	if err != nil {
		return "", fmt.Errorf("invalid configuration for 'styleFile' in %s: %w", data.JSON.Name, err)
	}
	return path, nil
}

// StyleAndRoot returns the style file and root to use. It returns nil when
// neither is configured, in which case a .clang-format file is expected to
// exist above every formatted file already.
func StyleAndRoot(data *config.Data) (*Style, error) {
	var root string
	if data.JSON.StyleRoot != "" {
		dir, err := fsutil.DirOrErr(absolute(data.JSON.StyleRoot, data.JSON.Root))
		if err != nil {
			return nil, fmt.Errorf("invalid configuration for 'styleRoot': %w", err)
		}
		root = dir
	}

	file, err := styleFile(data)
	switch {
	case errors.Is(err, ErrNoStyle) && root == "":
		return nil, nil
	case errors.Is(err, ErrNoStyle):
		return nil, fmt.Errorf("a valid style file must be specified for configurations with the field 'styleRoot': %w", err)
	case err != nil:
		return nil, err
	case root == "":
		return nil, fmt.Errorf("found style file '%s' but could not find root folder configuration: %w", file, ErrNoStyleRoot)
	}

	slog.Info("using parameters from style file", "file", file, "root", root)
	return &Style{File: file, Root: root}, nil
}

// Command returns the formatter command. A command taken from the
// configuration file is validated relative to the configuration root; a
// command line override is used as given.
func Command(data *config.Data) (string, error) {
	switch {
	case data.Command != "":
		if data.JSON.Command != "" {
			slog.Debug("override detected",
				"field", "command",
				"config", data.JSON.Name,
				"configured", data.JSON.Command,
				"parameter", data.Command)
		}
		return data.Command, nil
	case data.JSON.Command != "":
		cmd, err := fsutil.ExecutableOrExists(data.JSON.Command, data.JSON.Root)
		if err != nil {
			return "", fmt.Errorf("invalid configuration for field 'command': %w", err)
		}
		return cmd, nil
	default:
		return DefaultCommand, nil
	}
}
