package harness

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/715d/runfmt/internal/reach"
)

// TestAll runs every fixture in testdata that has an expected.yaml.
func TestAll(t *testing.T) {
	if testing.Short() {
		t.Skip("loads fixture modules with the go command")
	}

	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "get current file path")
	testdataDir := filepath.Join(filepath.Dir(filename), "..", "..", "testdata")

	testCases := discoverTestCases(t, testdataDir)
	require.NotEmpty(t, testCases, "no test cases found")

	if testing.Verbose() {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	for _, tc := range testCases {
		t.Run(tc.Dir, func(t *testing.T) {
			t.Parallel()

			result := NewHarness(testdataDir).Run(t, tc)
			if !result.Success {
				t.Errorf("Test failed: %s", result.Message)
			}
		})
	}
}

func discoverTestCases(t *testing.T, root string) []*TestCase {
	t.Helper()

	entries, err := os.ReadDir(root)
	require.NoError(t, err)

	var testCases []*TestCase
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, "expected.yaml")); err == nil {
			testCases = append(testCases, LoadTestCase(t, dir, root))
		}
	}
	return testCases
}

func TestValidateResults(t *testing.T) {
	dir := filepath.Join("fixtures", "demo")
	findings := []reach.Finding{
		{Name: "example.com/demo/a.Init", File: filepath.Join(dir, "a", "a.go")},
		{Name: "example.com/demo/b.Extra", File: filepath.Join(dir, "b", "b.go")},
	}

	tests := []struct {
		name     string
		expected []ExpectedFunc
		success  bool
		details  []string
	}{
		{
			name: "exact match",
			expected: []ExpectedFunc{
				{FuncName: "example.com/demo/a.Init", File: "a/a.go"},
				{FuncName: "example.com/demo/b.Extra"},
			},
			success: true,
		},
		{
			name: "missing and unexpected",
			expected: []ExpectedFunc{
				{FuncName: "example.com/demo/a.Init"},
				{FuncName: "example.com/demo/c.Gone", Reason: "never called"},
			},
			details: []string{
				"Should have been reported unreachable: example.com/demo/c.Gone (never called)",
				"Should have been reachable: example.com/demo/b.Extra",
			},
		},
		{
			name: "file mismatch",
			expected: []ExpectedFunc{
				{FuncName: "example.com/demo/a.Init", File: "a/other.go"},
				{FuncName: "example.com/demo/b.Extra"},
			},
			details: []string{
				`File mismatch for example.com/demo/a.Init: expected "a/other.go", got "` + filepath.Join(dir, "a", "a.go") + `"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cr := &ConfigurationResult{Findings: findings}
			validateResults(cr, dir, tt.expected)
			require.Equal(t, tt.success, cr.Success)
			require.Equal(t, tt.details, cr.Details)
		})
	}
}

func TestValidateExpectedFunctions(t *testing.T) {
	require.NoError(t, validateExpectedFunctions([]ExpectedFunc{{FuncName: "a.B"}}))
	require.ErrorContains(t, validateExpectedFunctions([]ExpectedFunc{{FuncName: " "}}), "index 0")
}
