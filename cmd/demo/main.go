// Package main is the demo program: it initializes two collaborator
// modules and rewrites its static buffer. It prints nothing.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/715d/runfmt/internal/project"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	logger := slog.New(slog.DiscardHandler)
	prog := project.New(
		project.Nop("module_b", logger),
		project.Nop("module_c", logger),
	)

	return &cobra.Command{
		Use:                "demo [args...]",
		Short:              "Demo program used to exercise formatting and analysis tooling",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		Run: func(_ *cobra.Command, args []string) {
			final := prog.Run(args)
			logger.Debug("program finished", "data", final[:])
		},
	}
}
