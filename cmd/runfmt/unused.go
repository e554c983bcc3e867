package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/715d/runfmt/internal/reach"
)

// UnusedConfig holds the flags of the unused command.
type UnusedConfig struct {
	Packages  []string // package patterns to analyze
	JSON      bool     // JSON output
	Tests     bool     // test functions are entry points
	BuildTags []string // build tags used when loading packages
}

func newUnusedCmd() *cobra.Command {
	var cfg UnusedConfig
	cmd := &cobra.Command{
		Use:   "unused [packages...]",
		Short: "Report functions unreachable from the program entry points",
		Long: `unused loads the given Go packages, roots a call graph at every main and
init function (and test functions with --tests) and lists the declared
functions and methods no entry point can reach.

It exits with status 1 when unreachable functions are found.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Packages = args
			if len(cfg.Packages) == 0 {
				cfg.Packages = []string{"./..."}
			}
			return runUnused(cmd, &cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.JSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&cfg.Tests, "tests", false, "Treat Test, Benchmark, Fuzz and Example functions as entry points")
	cmd.Flags().StringSliceVar(&cfg.BuildTags, "build-tags", []string{}, "Build tags to use during package loading")
	return cmd
}

// Result is the outcome of an unused analysis.
type Result struct {
	Unreachable []reach.Finding `json:"unreachable_functions"`
	Stats       struct {
		TotalFunctions       int           `json:"total_functions"`
		UnreachableFunctions int           `json:"unreachable_functions"`
		AnalysisDuration     time.Duration `json:"analysis_duration"`
	} `json:"stats"`
}

func runUnused(cmd *cobra.Command, cfg *UnusedConfig) error {
	start := time.Now()
	slog.Info("loading packages", "packages", cfg.Packages)
	if len(cfg.BuildTags) > 0 {
		slog.Info("using build tags", "tags", cfg.BuildTags)
	}

	pkgs, err := reach.LoadPackages(cmd.Context(), reach.LoaderOptions{
		Packages:  cfg.Packages,
		BuildTags: cfg.BuildTags,
		Tests:     cfg.Tests,
	})
	if err != nil {
		return errWithCode(fmt.Errorf("analyze: %w", err), exitError)
	}
	slog.Info("loaded packages", "num", len(pkgs))

	funcs, err := reach.NewAnalyzer(reach.AnalyzerOptions{Tests: cfg.Tests}).Analyze(pkgs)
	if err != nil {
		return errWithCode(fmt.Errorf("analyze: %w", err), exitError)
	}

	var result Result
	result.Unreachable = reach.Unreachable(funcs)
	result.Stats.TotalFunctions = len(funcs)
	result.Stats.UnreachableFunctions = len(result.Unreachable)
	result.Stats.AnalysisDuration = time.Since(start)
	slog.Info("analysis completed", "dur", result.Stats.AnalysisDuration)

	if err := writeResults(cmd.OutOrStdout(), &result, cfg); err != nil {
		return errWithCode(fmt.Errorf("format results: %w", err), exitError)
	}
	if len(result.Unreachable) > 0 {
		return errWithCode(nil, exitUnreachableFound)
	}
	return nil
}

func writeResults(w io.Writer, result *Result, cfg *UnusedConfig) error {
	if cfg.JSON {
		output, err := formatJSONOutput(result)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, output)
		return err
	}
	_, err := io.WriteString(w, formatTextOutput(result))
	return err
}

type jOutput struct {
	Unreachable []reach.Finding `json:"unreachable_functions"`
	Stats       any             `json:"stats"`
	Version     string          `json:"version"`
	Timestamp   string          `json:"timestamp"`
}

func formatJSONOutput(result *Result) (string, error) {
	findings := result.Unreachable
	if findings == nil {
		findings = []reach.Finding{}
	}
	data, err := json.MarshalIndent(jOutput{
		Unreachable: findings,
		Stats:       result.Stats,
		Version:     version,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling json output: %w", err)
	}
	return string(data), nil
}

// formatTextOutput writes one "file:line:column name" line per finding.
func formatTextOutput(result *Result) string {
	if len(result.Unreachable) == 0 {
		slog.Info("no unreachable functions found")
		return ""
	}

	var output strings.Builder
	for _, f := range result.Unreachable {
		fmt.Fprintf(&output, "%s:%d:%d %s\n", f.File, f.Line, f.Column, f.Name)
	}
	return output.String()
}
