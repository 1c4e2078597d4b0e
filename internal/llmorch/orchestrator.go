package llmorch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"extractforge/internal/logging"
	"extractforge/internal/pipelineerrors"
	"extractforge/internal/render"
)

// RetryConfig controls the transport-level backoff loop (spec §4.3). Grounded on
// internal/autopoiesis/ouroboros.go's RetryConfig{MaxRetries, RetryDelay}, generalised from a
// single fixed delay to an exponential schedule that doubles BaseDelay after each failed attempt.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryConfig returns three attempts total with a 1s base delay, so the attempts are
// separated by waits of 1s and then 2s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: time.Second}
}

const (
	planTemperature = 0.3
	codeTemperature = 0.2
)

// Categorizer classifies a raw transport error into the closed taxonomy. Adapters supply their
// own (provider error shapes differ); Orchestrator falls back to defaultCategorize if nil.
type Categorizer func(err error) pipelineerrors.TransportCategory

// Orchestrator drives the two-phase Plan+Code protocol against an LLMClient.
type Orchestrator struct {
	client     LLMClient
	retry      RetryConfig
	categorize Categorizer
}

// NewOrchestrator builds an Orchestrator. A zero RetryConfig is replaced with the default.
func NewOrchestrator(client LLMClient, retry RetryConfig, categorize Categorizer) *Orchestrator {
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryConfig()
	}
	if categorize == nil {
		categorize = defaultCategorize
	}
	return &Orchestrator{client: client, retry: retry, categorize: categorize}
}

// defaultCategorize recognises the categories by substring matching on the error text, the same
// heuristic providers without a structured error type require.
func defaultCategorize(err error) pipelineerrors.TransportCategory {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "auth") || strings.Contains(msg, "invalid api key"):
		return pipelineerrors.TransportAuth
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429") || strings.Contains(msg, "quota"):
		return pipelineerrors.TransportRateLimit
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") || errors.Is(err, context.DeadlineExceeded):
		return pipelineerrors.TransportTimeout
	default:
		return pipelineerrors.TransportOther
	}
}

// callWithRetry runs fn with the configured backoff schedule. Auth failures are never retried
// (spec §4.3): the first auth-categorised error returns immediately.
func (o *Orchestrator) callWithRetry(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	var lastErr error
	var lastCategory pipelineerrors.TransportCategory
	attempts := 0
	for attempt := 1; attempt <= o.retry.MaxAttempts; attempt++ {
		attempts = attempt
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
		lastCategory = o.categorize(err)
		logging.LLMWarn("attempt %d/%d failed (%s): %v", attempt, o.retry.MaxAttempts, lastCategory, err)
		if lastCategory == pipelineerrors.TransportAuth {
			break
		}
		if attempt == o.retry.MaxAttempts {
			break
		}
		delay := o.retry.BaseDelay * time.Duration(1<<uint(attempt-1))
		select {
		case <-ctx.Done():
			return "", &pipelineerrors.Cancelled{Reason: pipelineerrors.CancelDeadline}
		case <-time.After(delay):
		}
	}
	return "", &pipelineerrors.LLMTransportError{
		Category:   lastCategory,
		Attempts:   attempts,
		LastDetail: lastErr.Error(),
	}
}

// Plan runs the planner phase: call the LLM at temperature 0.3 and parse the JSON object in the
// response's single fenced block (or in the raw response when it has no fenced block) into a
// render.Plan. More than one fenced block is rejected.
func (o *Orchestrator) Plan(ctx context.Context, prompt string) (render.Plan, error) {
	raw, err := o.callWithRetry(ctx, func(ctx context.Context) (string, error) {
		return o.client.Complete(ctx, prompt, planTemperature)
	})
	if err != nil {
		return render.Plan{}, err
	}
	blocks := extractFencedBlocks(raw)
	var jsonBody string
	switch len(blocks) {
	case 0:
		jsonBody = extractJSONObject(raw)
	case 1:
		jsonBody = extractJSONObject(blocks[0])
	default:
		return render.Plan{}, &pipelineerrors.PlanGenerationError{
			Reason:          "expected exactly one fenced block in the planner response",
			ResponsePreview: raw,
		}
	}
	var plan render.Plan
	if err := json.Unmarshal([]byte(jsonBody), &plan); err != nil {
		return render.Plan{}, &pipelineerrors.PlanGenerationError{
			Reason:          "planner response was not valid JSON: " + err.Error(),
			ResponsePreview: raw,
		}
	}
	if plan.StrategyProse == "" || len(plan.FieldMappings) == 0 {
		return render.Plan{}, &pipelineerrors.PlanGenerationError{
			Reason:          "planner response is missing strategy_prose or field_mappings",
			ResponsePreview: raw,
		}
	}
	return plan, nil
}

// CodeResult is the coder phase's three-module output (spec §4.3).
type CodeResult struct {
	Extractor string
	Models    string
	Tests     string
}

// Code runs the coder phase: call the LLM at temperature 0.2 and split the response into the
// extractor, models and tests sources. The heading-anchored split (splitByHeading) is tried first;
// if it fails, the response must contain exactly three non-empty fenced code blocks, taken in
// that order. A response with fewer than three fenced blocks is rejected; unfenced text is never
// split at its headings.
func (o *Orchestrator) Code(ctx context.Context, prompt string) (CodeResult, error) {
	raw, err := o.callWithRetry(ctx, func(ctx context.Context) (string, error) {
		return o.client.Complete(ctx, prompt, codeTemperature)
	})
	if err != nil {
		return CodeResult{}, err
	}
	if sections, ok := splitByHeading(raw); ok {
		return CodeResult{Extractor: sections["extractor"], Models: sections["models"], Tests: sections["tests"]}, nil
	}
	blocks := extractFencedBlocks(raw)
	if len(blocks) != 3 {
		return CodeResult{}, &pipelineerrors.CodeParsingError{
			Reason:          "expected exactly three fenced code blocks (extractor, models, tests)",
			ResponsePreview: raw,
		}
	}
	for _, b := range blocks {
		if b == "" {
			return CodeResult{}, &pipelineerrors.CodeParsingError{
				Reason:          "one of the three fenced code blocks was empty",
				ResponsePreview: raw,
			}
		}
	}
	return CodeResult{Extractor: blocks[0], Models: blocks[1], Tests: blocks[2]}, nil
}
