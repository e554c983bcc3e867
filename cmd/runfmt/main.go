// Package main implements the runfmt CLI: it runs clang-format over the
// files selected by a JSON configuration and reports unreachable functions
// of Go programs.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/715d/runfmt/internal/config"
	"github.com/715d/runfmt/internal/format"
)

// Config holds the command line configuration.
type Config struct {
	Style   string // --style override of the configured style file
	Command string // --command override of the configured formatter
	Jobs    int    // maximum number of concurrent formatter runs
	Verbose int    // -v count
	Quiet   bool   // only log errors
}

const (
	exitUnreachableFound = 1
	exitError            = 2
)

var (
	// Set via ldflags during build.
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

// run executes the root command and returns the process exit code. An
// interrupt cancels the command context so cleanup runs before exiting.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if err.Error() != "" {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		var cErr *codedError
		if errors.As(err, &cErr) {
			return cErr.code
		}
		return exitError
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "runfmt <JSON>",
		Short: "Run clang-format on the files selected by a JSON configuration",
		Long: `runfmt resolves the files matched by the globs in <JSON>, removes the
blacklisted ones and formats the rest in place with clang-format.

A style file given with --style or the field 'styleFile' is copied to the
directory named by 'styleRoot' while formatting.`,
		Example: `  runfmt format.json                         # Format using format.json
  runfmt format.json --style .clang-format   # Override the style file
  runfmt format.json -c clang-format-15 -j 4 # Pick the formatter and parallelism
  runfmt schema                              # Print the configuration schema
  runfmt unused ./...                        # Report unreachable functions`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args[0], &cfg)
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setup(cmd, &cfg)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("runfmt version %s\n  commit: %s\n  built:  %s\n", version, gitCommit, buildTime))

	rootCmd.Flags().StringVarP(&cfg.Style, "style", "s", "", "Optional path to .clang-format style file. Overrides <JSON> configuration")
	rootCmd.Flags().StringVarP(&cfg.Command, "command", "c", "", "Optional path to executable or clang-format command. Overrides <JSON> configuration, defaults to `clang-format`")
	rootCmd.Flags().IntVarP(&cfg.Jobs, "jobs", "j", 0, "Maximum number of concurrent clang-format runs, defaults to the number of CPUs")
	rootCmd.PersistentFlags().CountVarP(&cfg.Verbose, "verbose", "v", "Verbosity, use -vv for debug output")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Quiet, "quiet", "q", false, "Suppress all output except for errors; overrides -v")

	rootCmd.AddCommand(newSchemaCmd(), newUnusedCmd())
	return rootCmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the schema used for the <JSON> configuration file",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), config.Schema())
		},
	}
}

// applyEnv fills options not given on the command line from RUNFMT_*
// environment variables.
func applyEnv(cmd *cobra.Command, cfg *Config) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("style") && env.Style != "" {
		cfg.Style = env.Style
	}
	if !flags.Changed("command") && env.Command != "" {
		cfg.Command = env.Command
	}
	if !flags.Changed("jobs") && env.Jobs != 0 {
		cfg.Jobs = env.Jobs
	}
	return nil
}

func runFormat(cmd *cobra.Command, jsonPath string, cfg *Config) error {
	if err := applyEnv(cmd, cfg); err != nil {
		return errWithCode(err, exitError)
	}
	if cfg.Jobs < 0 {
		return errWithCode(fmt.Errorf("invalid parameter --jobs: must not be negative, got %d", cfg.Jobs), exitError)
	}

	model, err := config.Load(jsonPath)
	if err != nil {
		return errWithCode(fmt.Errorf("invalid parameter <JSON>: %w", err), exitError)
	}
	slog.Info("loaded configuration", "file", model.Name, "root", model.Root)

	report, err := format.Run(cmd.Context(), &config.Data{
		JSON:    model,
		Style:   cfg.Style,
		Command: cfg.Command,
		Jobs:    cfg.Jobs,
	})
	if err != nil {
		return errWithCode(err, exitError)
	}

	slog.Info("success",
		"files", len(report.Files),
		"filtered", len(report.Filtered),
		"dur", report.Duration.Round(time.Millisecond))
	return nil
}

// setup installs the default logger on stderr. Only errors are logged with
// --quiet, debug records and their source with -vv.
func setup(cmd *cobra.Command, cfg *Config) error {
	level := slog.LevelInfo
	switch {
	case cfg.Quiet:
		level = slog.LevelError
	case cfg.Verbose >= 2:
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: level == slog.LevelDebug}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts)))
	return nil
}

func errWithCode(err error, code int) error {
	return &codedError{err: err, code: code}
}

type codedError struct {
	err  error
	code int
}

func (e *codedError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return ""
}

func (e *codedError) Unwrap() error { return e.err }
