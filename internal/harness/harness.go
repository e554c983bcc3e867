// Package harness runs the reachability analyzer against fixture modules in
// testdata and compares the findings with an expected.yaml per fixture.
package harness

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/715d/runfmt/internal/reach"
)

// BuildConfiguration is a single way of loading and analyzing a fixture.
type BuildConfiguration struct {
	// Name is a descriptive name for this configuration.
	Name string `yaml:"name"`

	// BuildTags are the build tags to use when loading packages.
	BuildTags []string `yaml:"build_tags"`

	// Tests treats test functions as entry points.
	Tests bool `yaml:"tests"`

	// GOOS sets the target operating system.
	GOOS string `yaml:"goos,omitempty"`

	// ExpectedUnreachable lists the functions expected to be reported.
	ExpectedUnreachable []ExpectedFunc `yaml:"expected_unreachable"`

	// ExpectedErrors lists substrings of expected analysis errors.
	ExpectedErrors []string `yaml:"expected_errors"`
}

// TestCase is a fixture directory and its configurations.
type TestCase struct {
	// Dir is the fixture directory relative to the testdata root.
	Dir string `yaml:"-"`

	// Packages are the patterns to load. Defaults to "./...".
	Packages []string `yaml:"packages"`

	// BuildConfigurations defines the configurations to run.
	BuildConfigurations []BuildConfiguration `yaml:"build_configurations"`
}

// ExpectedFunc is a function expected to be reported as unreachable.
type ExpectedFunc struct {
	// FuncName is the canonical name of the function.
	FuncName string `yaml:"func"`

	// Reason describes why the function is unreachable.
	Reason string `yaml:"reason"`

	// File is the optional file path relative to the fixture directory.
	File string `yaml:"file,omitempty"`
}

// ConfigurationResult is the outcome of a single build configuration.
type ConfigurationResult struct {
	Configuration BuildConfiguration
	Findings      []reach.Finding
	Success       bool
	Message       string
	Details       []string
}

// TestResult is the outcome of all configurations of a test case.
type TestResult struct {
	TestCase             *TestCase
	ConfigurationResults []ConfigurationResult
	Success              bool
	Message              string
}

// TestHarness runs test cases found below root.
type TestHarness struct {
	root string
}

// NewHarness creates a harness for the testdata directory root.
func NewHarness(root string) *TestHarness {
	return &TestHarness{root: root}
}

// Run executes every build configuration of tc.
func (h *TestHarness) Run(t *testing.T, tc *TestCase) *TestResult {
	t.Helper()
	require.NotEmpty(t, tc.BuildConfigurations, "test case has no build configurations")

	result := &TestResult{TestCase: tc, Success: true}
	var msgs []string
	for _, cfg := range tc.BuildConfigurations {
		cr := h.runConfiguration(t, tc, cfg)
		result.ConfigurationResults = append(result.ConfigurationResults, *cr)
		if !cr.Success {
			result.Success = false
			msgs = append(msgs, fmt.Sprintf("[%s] %s:\n  %s", cfg.Name, cr.Message, strings.Join(cr.Details, "\n  ")))
		}
	}

	if result.Success {
		result.Message = fmt.Sprintf("All %d configurations passed", len(tc.BuildConfigurations))
	} else {
		result.Message = fmt.Sprintf("%d/%d configurations failed:\n%s",
			len(msgs), len(tc.BuildConfigurations), strings.Join(msgs, "\n"))
	}
	return result
}

func (h *TestHarness) runConfiguration(t *testing.T, tc *TestCase, cfg BuildConfiguration) *ConfigurationResult {
	t.Helper()
	dir := filepath.Join(h.root, tc.Dir)
	pkgs := LoadPackages(t, &LoaderConfig{
		Dir:       dir,
		Packages:  tc.Packages,
		BuildTags: cfg.BuildTags,
		Tests:     cfg.Tests,
		GOOS:      cfg.GOOS,
	})

	funcs, err := reach.NewAnalyzer(reach.AnalyzerOptions{Tests: cfg.Tests}).Analyze(pkgs)
	if err != nil {
		for _, expectedErr := range cfg.ExpectedErrors {
			if strings.Contains(err.Error(), expectedErr) {
				return &ConfigurationResult{
					Configuration: cfg,
					Success:       true,
					Message:       fmt.Sprintf("Got expected error: %v", err),
				}
			}
		}
		require.NoError(t, err)
	}

	cr := &ConfigurationResult{Configuration: cfg, Findings: reach.Unreachable(funcs)}
	if err := validateExpectedFunctions(cfg.ExpectedUnreachable); err != nil {
		cr.Message = fmt.Sprintf("Invalid expected.yaml: %v", err)
		cr.Details = []string{err.Error()}
		return cr
	}
	validateResults(cr, dir, cfg.ExpectedUnreachable)
	return cr
}

func validateExpectedFunctions(expected []ExpectedFunc) error {
	var errs []error
	for i, exp := range expected {
		if strings.TrimSpace(exp.FuncName) == "" {
			errs = append(errs, fmt.Errorf("expected function at index %d has empty or missing 'func' field", i))
		}
	}
	return errors.Join(errs...)
}

func validateResults(cr *ConfigurationResult, dir string, expected []ExpectedFunc) {
	expectedMap := make(map[string]ExpectedFunc, len(expected))
	for _, e := range expected {
		expectedMap[e.FuncName] = e
	}
	actualMap := make(map[string]reach.Finding, len(cr.Findings))
	for _, f := range cr.Findings {
		actualMap[f.Name] = f
	}

	var missing, unexpected, details []string
	for name, exp := range expectedMap {
		act, found := actualMap[name]
		if !found {
			missing = append(missing, fmt.Sprintf("%s (%s)", exp.FuncName, exp.Reason))
			continue
		}
		if exp.File != "" {
			rel, err := filepath.Rel(dir, act.File)
			if err != nil || filepath.ToSlash(rel) != exp.File {
				details = append(details, fmt.Sprintf("File mismatch for %s: expected %q, got %q", name, exp.File, act.File))
			}
		}
	}
	for name := range actualMap {
		if _, found := expectedMap[name]; !found {
			unexpected = append(unexpected, name)
		}
	}

	slices.Sort(missing)
	slices.Sort(unexpected)
	slices.Sort(details)
	for _, m := range missing {
		details = append(details, "Should have been reported unreachable: "+m)
	}
	for _, u := range unexpected {
		details = append(details, "Should have been reachable: "+u)
	}

	cr.Details = details
	cr.Success = len(details) == 0
	if cr.Success {
		cr.Message = fmt.Sprintf("All %d expected unreachable functions found", len(expected))
	} else {
		cr.Message = fmt.Sprintf("Test failed: %d missing, %d unexpected", len(missing), len(unexpected))
	}
}
