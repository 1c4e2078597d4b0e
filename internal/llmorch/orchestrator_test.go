package llmorch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extractforge/internal/pipelineerrors"
)

type fakeClient struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeClient) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp string
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func (f *fakeClient) CompleteWithSystem(ctx context.Context, system, prompt string, temperature float64) (string, error) {
	return f.Complete(ctx, prompt, temperature)
}

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond}
}

func TestPlanParsesSingleFencedJSONBlock(t *testing.T) {
	resp := "```json\n{\"strategy_prose\":\"parse directly\",\"field_mappings\":[{\"source\":\"sku\",\"target\":\"sku\"}]}\n```"
	client := &fakeClient{responses: []string{resp}}
	orch := NewOrchestrator(client, fastRetry(), nil)
	plan, err := orch.Plan(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "parse directly", plan.StrategyProse)
	require.Len(t, plan.FieldMappings, 1)
}

func TestPlanRejectsMissingRequiredFields(t *testing.T) {
	resp := "```json\n{\"strategy_prose\":\"\"}\n```"
	client := &fakeClient{responses: []string{resp}}
	orch := NewOrchestrator(client, fastRetry(), nil)
	_, err := orch.Plan(context.Background(), "prompt")
	require.Error(t, err)
	var target *pipelineerrors.PlanGenerationError
	assert.ErrorAs(t, err, &target)
}

func TestCodeParsesThreeFencedBlocks(t *testing.T) {
	resp := "```python\nextractor code\n```\n```python\nmodels code\n```\n```python\ntests code\n```"
	client := &fakeClient{responses: []string{resp}}
	orch := NewOrchestrator(client, fastRetry(), nil)
	result, err := orch.Code(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "extractor code", result.Extractor)
	assert.Equal(t, "models code", result.Models)
	assert.Equal(t, "tests code", result.Tests)
}

func TestCodeRejectsWrongBlockCount(t *testing.T) {
	resp := "```python\nextractor code\n```"
	client := &fakeClient{responses: []string{resp}}
	orch := NewOrchestrator(client, fastRetry(), nil)
	_, err := orch.Code(context.Background(), "prompt")
	require.Error(t, err)
	var target *pipelineerrors.CodeParsingError
	assert.ErrorAs(t, err, &target)
}

func TestCallWithRetryRetriesTransientFailures(t *testing.T) {
	client := &fakeClient{
		errs:      []error{errors.New("rate limit exceeded"), nil},
		responses: []string{"", "```json\n{\"strategy_prose\":\"ok\",\"field_mappings\":[{\"source\":\"a\",\"target\":\"b\"}]}\n```"},
	}
	orch := NewOrchestrator(client, fastRetry(), nil)
	plan, err := orch.Plan(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", plan.StrategyProse)
	assert.Equal(t, 2, client.calls)
}

func TestCallWithRetryNeverRetriesAuthFailure(t *testing.T) {
	client := &fakeClient{errs: []error{errors.New("invalid api key: unauthorized")}}
	orch := NewOrchestrator(client, fastRetry(), nil)
	_, err := orch.Plan(context.Background(), "prompt")
	require.Error(t, err)
	var target *pipelineerrors.LLMTransportError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, pipelineerrors.TransportAuth, target.Category)
	assert.Equal(t, 1, client.calls)
}

func TestCallWithRetryExhaustsBudgetOnPersistentFailure(t *testing.T) {
	client := &fakeClient{errs: []error{
		errors.New("timeout"), errors.New("timeout"), errors.New("timeout"),
	}}
	orch := NewOrchestrator(client, fastRetry(), nil)
	_, err := orch.Plan(context.Background(), "prompt")
	require.Error(t, err)
	var target *pipelineerrors.LLMTransportError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, pipelineerrors.TransportTimeout, target.Category)
	assert.Equal(t, 3, client.calls)
}
