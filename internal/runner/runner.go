// Package runner executes the clang-format binary.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
)

// versionPattern matches e.g. "clang-format version 4.0.0 (tags/checker/checker-279)".
var versionPattern = regexp.MustCompile(`version (\d+)\.(\d+)\.(\d+)`)

// ErrVersion is returned when the version output cannot be parsed.
var ErrVersion = errors.New("failed to match version")

// Runner invokes a formatter command.
type Runner struct {
	cmd     string
	version string
}

// New returns a Runner for cmd, a path or a command name found in PATH.
func New(cmd string) *Runner {
	return &Runner{cmd: cmd}
}

// Path returns the command the runner executes.
func (r *Runner) Path() string { return r.cmd }

// Version returns the version found by Check, or "" before Check succeeds.
func (r *Runner) Version() string { return r.version }

// ExitError describes a formatter run that did not exit cleanly.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := "process terminated by signal"
	if e.Code >= 0 {
		msg = fmt.Sprintf("process terminated with code %d", e.Code)
	}
	if e.Stderr != "" {
		return msg + "\n---\n" + e.Stderr
	}
	return msg
}

func (r *Runner) run(ctx context.Context, args ...string) ([]byte, error) {
	var outBuf, errBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, r.cmd, args...)
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExitError{
				Code:   exitErr.ExitCode(),
				Stderr: strings.TrimSpace(errBuf.String()),
			}
		}
		return nil, fmt.Errorf("%s: %w", cmd.String(), err)
	}
	return outBuf.Bytes(), nil
}

// Check runs the command with --version and records the reported version.
func (r *Runner) Check(ctx context.Context) error {
	out, err := r.run(ctx, "--version")
	if err != nil {
		slog.Error("execution failed", "command", r.cmd, "error", err)
		return fmt.Errorf("checking '%s': %w", r.cmd, err)
	}

	caps := versionPattern.FindSubmatch(out)
	if caps == nil {
		return fmt.Errorf("checking '%s': %w in %q", r.cmd, ErrVersion, strings.TrimSpace(string(out)))
	}
	r.version = fmt.Sprintf("%s.%s.%s", caps[1], caps[2], caps[3])
	slog.Debug("found formatter", "command", r.cmd, "version", r.version)
	return nil
}

// Format formats file in place using the nearest .clang-format style file.
func (r *Runner) Format(ctx context.Context, file string) error {
	if _, err := r.run(ctx, file, "-fallback-style=none", "-style=file", "-i"); err != nil {
		return fmt.Errorf("formatting '%s': %w", file, err)
	}
	return nil
}
