package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"extractforge/internal/config"
	"extractforge/internal/constraints"
)

var validateProjectPath string

var validateCmd = &cobra.Command{
	Use:   "validate <source.py>",
	Short: "Run C4 alone against a single Python source file",
	Long: `Validates an existing Python file against a project's constraint policy without invoking
the LLM or writing anything to disk. Exit status reflects whether the file passes (no blocking
violations) — useful for checking hand-edited or previously generated extractors.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateProjectPath, "project", "",
		"project.yaml carrying the constraint policy to validate against (default: built-in defaults)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	sourcePath := args[0]

	policy := config.DefaultConstraintConfig()
	if validateProjectPath != "" {
		projectCfg, err := config.Load(validateProjectPath)
		if err != nil {
			return fmt.Errorf("load project config: %w", err)
		}
		policy = projectCfg.Constraints
	}

	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", sourcePath, err)
	}

	engine := constraints.NewEngine(policy)
	result := engine.ValidateSource(sourcePath, content)

	if len(result.Violations) == 0 {
		fmt.Printf("%s: no violations\n", sourcePath)
		return nil
	}

	for _, v := range result.Violations {
		fmt.Printf("%-9s %-24s %-8s %s\n", v.Severity, v.RuleID, v.Location, v.Message)
	}

	if !result.Passed() {
		return fmt.Errorf("%s: %d violation(s), including at least one blocking", sourcePath, len(result.Violations))
	}
	fmt.Printf("%s: %d warning(s), no blocking violations\n", sourcePath, len(result.Violations))
	return nil
}
