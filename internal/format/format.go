// Package format runs the formatter over every file selected by a
// configuration.
package format

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	goruntime "runtime"
	"slices"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/sync/errgroup"

	"github.com/715d/runfmt/internal/config"
	"github.com/715d/runfmt/internal/globs"
	"github.com/715d/runfmt/internal/resolve"
	"github.com/715d/runfmt/internal/runner"
)

// ErrFormat is wrapped by the error returned when at least one file failed
// to format.
var ErrFormat = errors.New("formatting failed")

// Failure is a file the formatter rejected.
type Failure struct {
	File string
	Err  error
}

// Report summarizes a run.
type Report struct {
	Command  string
	Version  string
	Style    *resolve.Style
	Files    []string
	Filtered []string
	Failures []Failure
	Duration time.Duration
}

// Run resolves the configured files and formats them in place.
func Run(ctx context.Context, data *config.Data) (*Report, error) {
	start := time.Now()
	caseSensitive := globs.CaseSensitive(goruntime.GOOS)

	style, err := resolve.StyleAndRoot(data)
	if err != nil {
		return nil, err
	}
	slog.Info("resolved style", "copy", style != nil)

	cmd, err := resolve.Command(data)
	if err != nil {
		return nil, err
	}
	r := runner.New(cmd)
	if err := r.Check(ctx); err != nil {
		return nil, fmt.Errorf("failed to execute '%s': %w", cmd, err)
	}
	slog.Info("using formatter", "command", r.Path(), "version", r.Version())

	matchers, err := globs.BuildMatchers(data.JSON.Paths, data.JSON.Root, caseSensitive)
	if err != nil {
		return nil, fmt.Errorf("error while parsing 'paths' in %s: %w", data.JSON.Name, err)
	}
	blacklist, err := globs.BuildGlobSets(data.JSON.Blacklist, caseSensitive)
	if err != nil {
		return nil, fmt.Errorf("error while parsing 'blacklist' in %s: %w", data.JSON.Name, err)
	}

	paths, filtered, err := globs.MatchPaths(matchers, blacklist)
	if err != nil {
		return nil, fmt.Errorf("resolving paths: %w", err)
	}
	if len(filtered) > 0 {
		slog.Warn("excluded files by blacklist", "count", len(filtered))
	}

	report := &Report{
		Command:  r.Path(),
		Version:  r.Version(),
		Style:    style,
		Files:    paths,
		Filtered: filtered,
	}

	if style != nil {
		cleanup, err := installStyle(style)
		if err != nil {
			return nil, err
		}
		defer cleanup()
	}

	report.Failures = formatAll(ctx, r, paths, data.Jobs)
	report.Duration = time.Since(start)
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("formatting interrupted: %w", err)
	}

	if len(report.Failures) > 0 {
		msgs := make([]string, 0, len(report.Failures))
		for _, f := range report.Failures {
			msgs = append(msgs, f.Err.Error())
		}
		return report, fmt.Errorf("%w for %d of %d files:\n%s",
			ErrFormat, len(report.Failures), len(paths), strings.Join(msgs, "\n"))
	}

	slog.Info("formatting completed", "files", len(paths), "dur", report.Duration)
	return report, nil
}

// formatAll formats paths with at most jobs concurrent formatter processes.
func formatAll(ctx context.Context, r *runner.Runner, paths []string, jobs int) []Failure {
	if jobs <= 0 {
		jobs = goruntime.NumCPU()
	}

	failures := xsync.NewMap[string, error]()
	var wg errgroup.Group
	wg.SetLimit(jobs)

	for _, path := range paths {
		wg.Go(func() error {
			if err := ctx.Err(); err != nil {
				failures.Store(path, err)
				return nil
			}
			slog.Debug("formatting", "file", path)
			if err := r.Format(ctx, path); err != nil {
				failures.Store(path, err)
			}
			return nil
		})
	}
	_ = wg.Wait()

	result := make([]Failure, 0, failures.Size())
	failures.Range(func(file string, err error) bool {
		result = append(result, Failure{File: file, Err: err})
		return true
	})
	slices.SortFunc(result, func(a, b Failure) int {
		return strings.Compare(a.File, b.File)
	})
	return result
}

// installStyle places the style file as <root>/.clang-format and returns a
// function removing it again. An existing file is left untouched if its
// content matches and is never overwritten otherwise.
func installStyle(style *resolve.Style) (func(), error) {
	nop := func() {}
	dest := filepath.Join(style.Root, resolve.StyleFileName)

	content, err := os.ReadFile(style.File)
	if err != nil {
		return nop, fmt.Errorf("reading style file: %w", err)
	}

	if sameFile(style.File, dest) {
		return nop, nil
	}

	existing, err := os.ReadFile(dest)
	switch {
	case err == nil && bytes.Equal(existing, content):
		slog.Debug("style file already in place", "file", dest)
		return nop, nil
	case err == nil:
		return nop, fmt.Errorf("'%s' already exists and differs from style file '%s'", dest, style.File)
	case !errors.Is(err, os.ErrNotExist):
		return nop, fmt.Errorf("checking '%s': %w", dest, err)
	}

	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return nop, fmt.Errorf("copying style file to '%s': %w", dest, err)
	}
	slog.Debug("copied style file", "from", style.File, "to", dest)

	return func() {
		if err := os.Remove(dest); err != nil {
			slog.Warn("removing style file", "file", dest, "error", err)
		}
	}, nil
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
