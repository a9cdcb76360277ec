// Command evalctl grades a single test case with the configured judge.
package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if err := buildRootCmd().Execute(); err != nil {
		if !errors.Is(err, errBelowThreshold) {
			slog.Error("command execution failed", "error", err)
		}
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "evalctl",
		Short:        "Grade LLM responses against an evaluation rubric",
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(buildGradeCmd())

	return rootCmd
}
