package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"extractforge/internal/codewriter"
	"extractforge/internal/config"
	"extractforge/internal/constraints"
	"extractforge/internal/llmorch"
	"extractforge/internal/llmorch/providers"
	"extractforge/internal/logging"
	"extractforge/internal/parsing"
	"extractforge/internal/progress"
	"extractforge/internal/refine"
)

var (
	examplesPath string
	llmModel     string
	concurrency  int
	deadline     time.Duration
)

var generateCmd = &cobra.Command{
	Use:   "generate <project.yaml> [project.yaml...]",
	Short: "Generate an extractor from examples for one or more projects",
	Long: `Runs the full C1-C7 pipeline (parse examples, render prompts, drive the LLM through a
plan-then-code protocol, validate the result, write to disk) for each named project.yaml.

Multiple project files run concurrently (one goroutine per distinct project directory, bounded
by --concurrency), since each targets a distinct output directory (spec §5).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&examplesPath, "examples", "",
		"path to an examples.json file (default: examples.json next to each project.yaml)")
	generateCmd.Flags().StringVar(&llmModel, "model", "", "LLM model id (provider-specific; default per adapter)")
	generateCmd.Flags().IntVar(&concurrency, "concurrency", 4, "max number of projects generated concurrently")
	generateCmd.Flags().DurationVar(&deadline, "deadline", 0, "optional per-run wall-clock deadline (0 = none)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	client, err := newLLMClient()
	if err != nil {
		return fmt.Errorf("construct LLM client: %w", err)
	}
	orchestrator := llmorch.NewOrchestrator(client, llmorch.DefaultRetryConfig(), nil)
	bus := progress.NewBus(consoleObserver)

	group, ctx := errgroup.WithContext(cmd.Context())
	group.SetLimit(concurrency)

	for _, projectPath := range args {
		projectPath := projectPath
		group.Go(func() error {
			return generateOne(ctx, projectPath, orchestrator, bus)
		})
	}
	return group.Wait()
}

func generateOne(ctx context.Context, projectPath string, orchestrator *llmorch.Orchestrator, bus *progress.Bus) error {
	projectCfg, err := config.Load(projectPath)
	if err != nil {
		return fmt.Errorf("%s: %w", projectPath, err)
	}

	examples, err := loadExamples(projectPath)
	if err != nil {
		return fmt.Errorf("%s: %w", projectPath, err)
	}

	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	engine := constraints.NewEngine(projectCfg.Constraints)
	writer := codewriter.NewWriter(resolveArtifactsBase())
	ctrl := refine.NewController(engine, orchestrator, writer, bus)

	gctx := ctrl.Generate(ctx, examples, *projectCfg)
	if !gctx.Completed {
		for _, e := range gctx.Errors {
			logging.CLIError("project %s failed: %v", projectCfg.Name, e)
		}
		return fmt.Errorf("project %s: generation failed after %d attempt(s)", projectCfg.Name, gctx.Attempt)
	}

	fmt.Printf("%s: done in %.2fs (attempt %d)\n", projectCfg.Name, gctx.DurationSeconds, gctx.Attempt)
	if gctx.WrittenPaths != nil {
		fmt.Printf("  extractor: %s\n", gctx.WrittenPaths.ExtractorPath)
		fmt.Printf("  models:    %s\n", gctx.WrittenPaths.ModelsPath)
		fmt.Printf("  tests:     %s\n", gctx.WrittenPaths.TestsPath)
	}
	return nil
}

// loadExamples reads examplesPath, or examples.json next to projectPath if unset.
func loadExamples(projectPath string) ([]parsing.Example, error) {
	path := examplesPath
	if path == "" {
		path = filepath.Join(filepath.Dir(projectPath), "examples.json")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read examples %s: %w", path, err)
	}
	var examples []parsing.Example
	if err := json.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf("parse examples %s: %w", path, err)
	}
	return examples, nil
}

// newLLMClient constructs the provider adapter named by LLM_PROVIDER (default "gemini"),
// grounded on spec §6's "two concrete, swappable implementations" wiring.
func newLLMClient() (llmorch.LLMClient, error) {
	switch os.Getenv("LLM_PROVIDER") {
	case "http":
		baseURL := os.Getenv("LLM_BASE_URL")
		apiKey := os.Getenv("LLM_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required at startup")
		}
		model := llmModel
		if model == "" {
			model = "gpt-4o-mini"
		}
		return providers.NewHTTPClient(baseURL, apiKey, model, 120*time.Second), nil
	default:
		apiKey := os.Getenv("LLM_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required at startup")
		}
		return providers.NewGenAIClient(context.Background(), apiKey, llmModel)
	}
}

// consoleObserver is the generate command's on_progress wiring: it prints running and failed
// ProgressEvents, prints succeeded events only with --verbose, and never prints pending events.
func consoleObserver(evt progress.Event) {
	switch evt.Status {
	case progress.StatusRunning:
		fmt.Printf("[%s] %s...\n", evt.StepIndex, evt.Name)
	case progress.StatusFailed:
		fmt.Printf("[%s] %s FAILED: %s\n", evt.StepIndex, evt.Name, evt.Message)
	case progress.StatusSucceeded:
		if verbose {
			fmt.Printf("[%s] %s OK (%.2fs)\n", evt.StepIndex, evt.Name, evt.ElapsedSeconds)
		}
	}
}
