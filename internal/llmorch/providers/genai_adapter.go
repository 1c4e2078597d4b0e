// Package providers supplies concrete llmorch.LLMClient adapters for real LLM channels.
package providers

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"extractforge/internal/logging"
)

// GenAIClient adapts Google's Gemini API (via google.golang.org/genai) to llmorch.LLMClient.
// Grounded on internal/embedding/genai.go's NewGenAIEngine construction and logging shape, applied
// to text generation instead of embeddings.
type GenAIClient struct {
	client *genai.Client
	model  string
}

// NewGenAIClient constructs a GenAIClient. model defaults to "gemini-2.0-flash" when empty.
func NewGenAIClient(ctx context.Context, apiKey, model string) (*GenAIClient, error) {
	timer := logging.StartTimer(logging.CategoryLLM, "NewGenAIClient")
	defer timer.Stop()

	if apiKey == "" {
		return nil, fmt.Errorf("genai: API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("genai: create client: %w", err)
	}
	logging.LLM("genai client created: model=%s", model)
	return &GenAIClient{client: client, model: model}, nil
}

// Complete implements llmorch.LLMClient.
func (c *GenAIClient) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	return c.generate(ctx, "", prompt, temperature)
}

// CompleteWithSystem implements llmorch.LLMClient.
func (c *GenAIClient) CompleteWithSystem(ctx context.Context, system, prompt string, temperature float64) (string, error) {
	return c.generate(ctx, system, prompt, temperature)
}

func (c *GenAIClient) generate(ctx context.Context, system, prompt string, temperature float64) (string, error) {
	timer := logging.StartTimer(logging.CategoryLLM, "GenAIClient.generate")
	defer timer.Stop()

	temp := float32(temperature)
	cfg := &genai.GenerateContentConfig{Temperature: &temp}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		logging.LLMError("genai GenerateContent failed: %v", err)
		return "", fmt.Errorf("genai: generate content: %w", err)
	}
	return resp.Text(), nil
}
