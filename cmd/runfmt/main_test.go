package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/715d/runfmt/internal/reach"
)

// demoTree copies testdata/c-demo into a temporary directory and writes a
// fake formatter that replaces every formatted file with "formatted".
func demoTree(t *testing.T) (root, formatter string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake formatter requires a POSIX shell")
	}

	root = filepath.Join(t.TempDir(), "c-demo")
	require.NoError(t, os.CopyFS(root, os.DirFS(filepath.Join("..", "..", "testdata", "c-demo"))))

	script := `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "clang-format version 15.0.7"
  exit 0
fi
echo formatted > "$1"
`
	formatter = filepath.Join(t.TempDir(), "clang-format")
	require.NoError(t, os.WriteFile(formatter, []byte(script), 0o755))
	return root, formatter
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var cErr *codedError
	if errors.As(err, &cErr) {
		return cErr.code
	}
	return exitError
}

func read(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, "schema")
	require.NoError(t, err)
	require.Contains(t, out, `"paths"`)
	require.Contains(t, out, `"styleRoot"`)
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	require.Contains(t, out, "runfmt version dev")
}

func TestMissingJSON(t *testing.T) {
	_, err := execute(t)
	require.Error(t, err)
	require.Equal(t, exitError, exitCode(err))
}

func TestFormat(t *testing.T) {
	root, formatter := demoTree(t)
	json := func(name string) string { return filepath.Join(root, "json", name) }

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "empty document",
			args:    []string{json("test-err-empty.json"), "-c", formatter},
			wantErr: "validation failed",
		},
		{
			name:    "missing file",
			args:    []string{json("does-not-exist.json"), "-c", formatter},
			wantErr: "invalid parameter <JSON>",
		},
		{
			name:    "not a json file",
			args:    []string{filepath.Join(root, "clang-format", "named.clang-format"), "-c", formatter},
			wantErr: "invalid parameter <JSON>",
		},
		{
			name:    "unknown command",
			args:    []string{json("test-ok-empty-paths.json"), "-c", filepath.Join(root, "no-such-formatter")},
			wantErr: "failed to execute",
		},
		{
			name: "empty paths",
			args: []string{json("test-ok-empty-paths.json"), "-c", formatter},
		},
		{
			name:    "invalid style path",
			args:    []string{json("test-err-invalid-style-path.json"), "-c", formatter},
			wantErr: "styleFile",
		},
		{
			name: "invalid style path overridden by --style",
			args: []string{
				json("test-err-invalid-style-path.json"), "-c", formatter,
				"--style", filepath.Join(root, "clang-format", ".clang-format"),
			},
		},
		{
			name:    "style file with wrong name",
			args:    []string{json("test-err-invalid-style-file.json"), "-c", formatter},
			wantErr: "styleFile",
		},
		{
			name:    "style without root",
			args:    []string{json("test-err-no-root.json"), "-c", formatter},
			wantErr: "missing root folder configuration",
		},
		{
			name: "style without root given --style",
			args: []string{
				json("test-err-no-root.json"), "-c", formatter,
				"--style", filepath.Join(root, "clang-format", ".clang-format"),
			},
			wantErr: "missing root folder configuration",
		},
		{
			name:    "invalid root",
			args:    []string{json("test-err-invalid-root.json"), "-c", formatter},
			wantErr: "styleRoot",
		},
		{
			name:    "negative jobs",
			args:    []string{json("test-ok-empty-paths.json"), "-c", formatter, "-j", "-1"},
			wantErr: "--jobs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append(tt.args, "-q")...)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
			require.Equal(t, exitError, exitCode(err))
		})
	}
}

func TestFormat_Style(t *testing.T) {
	root, formatter := demoTree(t)
	original := read(t, root, "subfolder/pkg_c/module_unused/module_unused.h")

	_, err := execute(t, filepath.Join(root, "json", "test-ok-style.json"), "-c", formatter, "-q")
	require.NoError(t, err)

	for _, name := range []string{
		"pkg_a/module_a/module_a.c",
		"pkg_a/module_a/module_a.h",
		"project/src/main.c",
	} {
		require.Equal(t, "formatted\n", read(t, root, name), name)
	}
	require.Equal(t, original, read(t, root, "subfolder/pkg_c/module_unused/module_unused.h"))
	require.NoFileExists(t, filepath.Join(root, ".clang-format"))
}

func TestFormat_StyleNamed(t *testing.T) {
	root, formatter := demoTree(t)
	header := read(t, root, "pkg_a/module_a/module_a.h")

	_, err := execute(t, filepath.Join(root, "json", "test-ok-style-named.json"), "-c", formatter, "-q")
	require.NoError(t, err)

	require.Equal(t, "formatted\n", read(t, root, "pkg_a/module_a/module_a.c"))
	require.Equal(t, header, read(t, root, "pkg_a/module_a/module_a.h"))
	require.NoFileExists(t, filepath.Join(root, "pkg_a", ".clang-format"))
}

func TestFormat_Canceled(t *testing.T) {
	root, formatter := demoTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := executeContext(t, ctx, filepath.Join(root, "json", "test-ok-style.json"), "-c", formatter, "-q")
	require.Error(t, err)
	require.Equal(t, exitError, exitCode(err))
	require.NoFileExists(t, filepath.Join(root, ".clang-format"))
	require.NotEqual(t, "formatted\n", read(t, root, "project/src/main.c"))
}

func TestFormat_Env(t *testing.T) {
	root, formatter := demoTree(t)
	t.Setenv("RUNFMT_COMMAND", formatter)
	t.Setenv("RUNFMT_JOBS", "1")

	_, err := execute(t, filepath.Join(root, "json", "test-ok-style-named.json"), "-q")
	require.NoError(t, err)
	require.Equal(t, "formatted\n", read(t, root, "pkg_a/module_a/module_a.c"))

	// Flags win over the environment.
	_, err = execute(t, filepath.Join(root, "json", "test-ok-empty-paths.json"), "-q",
		"-c", filepath.Join(root, "no-such-formatter"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to execute")
}

func TestFormatTextOutput(t *testing.T) {
	result := &Result{Unreachable: []reach.Finding{
		{Name: "modulea.*Module.Init", File: "pkg/modulea/modulea.go", Line: 24, Column: 19},
		{Name: "moduleunused.Init", File: "pkg/moduleunused/moduleunused.go", Line: 7, Column: 6},
	}}
	require.Equal(t,
		"pkg/modulea/modulea.go:24:19 modulea.*Module.Init\n"+
			"pkg/moduleunused/moduleunused.go:7:6 moduleunused.Init\n",
		formatTextOutput(result))
	require.Empty(t, formatTextOutput(&Result{}))
}

func TestFormatJSONOutput(t *testing.T) {
	out, err := formatJSONOutput(&Result{})
	require.NoError(t, err)
	require.Contains(t, out, `"unreachable_functions": []`)
	require.Contains(t, out, `"version": "dev"`)
}
