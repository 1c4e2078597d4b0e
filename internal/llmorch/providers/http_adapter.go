package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"extractforge/internal/logging"
)

// HTTPClient adapts any OpenAI-chat-completions-compatible endpoint (OpenAI itself, and most
// self-hosted/OpenRouter-style gateways) to llmorch.LLMClient using stdlib net/http only: no
// ecosystem HTTP client library appears anywhere in the example pack for this concern, so stdlib
// is the justified choice here (internal/perception/client_types.go models the same provider
// family purely as request/response structs, with no client library wired underneath).
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewHTTPClient builds an HTTPClient. baseURL should include the path up to (not including)
// "/chat/completions", e.g. "https://api.openai.com/v1".
func NewHTTPClient(baseURL, apiKey, model string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete implements llmorch.LLMClient.
func (c *HTTPClient) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	return c.chat(ctx, nil, prompt, temperature)
}

// CompleteWithSystem implements llmorch.LLMClient.
func (c *HTTPClient) CompleteWithSystem(ctx context.Context, system, prompt string, temperature float64) (string, error) {
	var messages []chatMessage
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	return c.chat(ctx, messages, prompt, temperature)
}

func (c *HTTPClient) chat(ctx context.Context, prefix []chatMessage, prompt string, temperature float64) (string, error) {
	timer := logging.StartTimer(logging.CategoryLLM, "HTTPClient.chat")
	defer timer.Stop()

	messages := append(prefix, chatMessage{Role: "user", Content: prompt})
	reqBody, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, Temperature: temperature})
	if err != nil {
		return "", fmt.Errorf("http llm: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("http llm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		logging.LLMError("http llm transport error: %v", err)
		return "", fmt.Errorf("http llm: transport: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("http llm: read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("http llm: unauthorized (status %d): %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("http llm: rate limit (status %d): %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http llm: status %d: %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("http llm: decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("http llm: provider error (%s): %s", parsed.Error.Type, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("http llm: response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
