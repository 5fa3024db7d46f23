package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mnemos-dev/mnemos/internal/engine"
)

// HTTPEmbedder calls an OpenAI-compatible /embeddings endpoint.
type HTTPEmbedder struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewHTTPEmbedder returns an embedder that posts to baseURL (e.g.
// "https://api.openai.com/v1/embeddings") using apiKey and model.
func NewHTTPEmbedder(baseURL, apiKey, model string) *HTTPEmbedder {
	return &HTTPEmbedder{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Embed implements engine.EmbedFn.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := map[string]any{
		"model": e.model,
		"input": text,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("capability: marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("capability: build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, engine.ErrCancelled
		}
		return nil, fmt.Errorf("capability: embed request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("capability: read embed response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("capability: embed API error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("capability: parse embed response: %w", err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("capability: embed response carried no data")
	}
	return result.Data[0].Embedding, nil
}

// HTTPLlmClient calls an OpenAI-compatible /chat/completions endpoint.
type HTTPLlmClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewHTTPLlmClient returns an LlmClient that posts to baseURL (e.g.
// "https://api.openai.com/v1/chat/completions") using apiKey and model.
func NewHTTPLlmClient(baseURL, apiKey, model string) *HTTPLlmClient {
	return &HTTPLlmClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Complete implements engine.LlmClient.
func (c *HTTPLlmClient) Complete(ctx context.Context, messages []engine.Message, systemPrompt string) (string, error) {
	wire := make([]map[string]string, 0, len(messages)+1)
	if systemPrompt != "" {
		wire = append(wire, map[string]string{"role": "system", "content": systemPrompt})
	}
	for _, m := range messages {
		wire = append(wire, map[string]string{"role": m.Role, "content": m.Content})
	}

	reqBody := map[string]any{
		"model":    c.model,
		"messages": wire,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("capability: marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("capability: build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", engine.ErrCancelled
		}
		return "", fmt.Errorf("capability: completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("capability: read completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("capability: completion API error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("capability: parse completion response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("capability: completion response carried no choices")
	}
	return result.Choices[0].Message.Content, nil
}
