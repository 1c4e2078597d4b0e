// Package main implements the extractforge CLI - a deterministic example-driven extractor
// generation pipeline.
//
// This file serves as the entry point and command registration hub. The actual command
// implementations are split across cmd_*.go files for maintainability.
//
// # File Index
//
//   - main.go          - Entry point, rootCmd, global flags, init()
//   - cmd_generate.go  - generateCmd: runs the full C1-C7 pipeline for one or more projects
//   - cmd_validate.go  - validateCmd: runs C4 alone against a Python source file
//   - cmd_watch.go     - watchCmd: hot-reloads a project's constraint policy on project.yaml edits
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"extractforge/internal/logging"
)

var (
	verbose       bool
	workspace     string
	artifactsBase string
)

var rootCmd = &cobra.Command{
	Use:   "extractforge",
	Short: "extractforge - example-driven Python extractor generation",
	Long: `extractforge turns a handful of {input, output} examples into a working Python
extractor: it infers a schema and a set of field-level transformations, drives an LLM through a
plan-then-code protocol, validates the generated code against a fixed constraint policy, and
writes the result to disk with automatic backup and rollback.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ws := workspace
		if ws == "" {
			ws, _ = os.Getwd()
		}
		if err := logging.Initialize(ws); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "also print succeeded progress steps")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&artifactsBase, "artifacts-dir", "",
		"output base directory for generated projects (default: $PLATFORM_ARTIFACTS_DIR or ./artifacts)")

	rootCmd.AddCommand(generateCmd, validateCmd, watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveArtifactsBase implements spec §6's PLATFORM_ARTIFACTS_DIR precedence: explicit flag,
// then environment variable, then the relative path "artifacts" (resolved against the process's
// working directory, not --workspace).
func resolveArtifactsBase() string {
	if artifactsBase != "" {
		return artifactsBase
	}
	if env := os.Getenv("PLATFORM_ARTIFACTS_DIR"); env != "" {
		return env
	}
	return "artifacts"
}
