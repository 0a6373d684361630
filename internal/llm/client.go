package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client implements the LM interface against an OpenAI-compatible
// /v1/completions endpoint (vLLM, TGI and similar servers expose one for
// hosted causal models).
type Client struct {
	APIKey  string
	Model   string
	BaseURL string
	HTTP    *http.Client
	Cache   Cache
}

// NewClient creates a completion client for the given model identifier.
// No request timeout is set: a single generation call may legitimately run
// long and the run has no per-call deadline.
func NewClient(model, baseURL, apiKey string) *Client {
	return &Client{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: baseURL,
		HTTP:    &http.Client{},
	}
}

// Name returns the model identifier.
func (c *Client) Name() string {
	return c.Model
}

type completionChoice struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"`
}

type completionResponse struct {
	Choices []completionChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete performs one completion call. Each prompt is attempted exactly
// once; transport and API failures surface to the caller unretried.
func (c *Client) Complete(ctx context.Context, prompt string, options *Options) (*Result, error) {
	if options == nil {
		options = DefaultOptions()
	}

	if c.Cache != nil {
		key := CacheKey(c.Model, prompt, options)
		if cached, ok := c.Cache.Get(key); ok {
			return cached, nil
		}
	}

	reqBody := c.buildRequest(prompt, options)
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: API request failed with status %d: %s", ErrCompletion, resp.StatusCode, string(body))
	}

	var apiResp completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrCompletion)
	}

	result := &Result{
		Text:         apiResp.Choices[0].Text,
		FinishReason: apiResp.Choices[0].FinishReason,
		Usage: Usage{
			PromptTokens:     apiResp.Usage.PromptTokens,
			CompletionTokens: apiResp.Usage.CompletionTokens,
			TotalTokens:      apiResp.Usage.TotalTokens,
		},
	}

	if c.Cache != nil {
		key := CacheKey(c.Model, prompt, options)
		c.Cache.Set(key, result)
	}

	return result, nil
}

// Ping verifies the endpoint is reachable and serving before the batch
// starts, so a misconfigured endpoint fails the run instead of draining it
// into a sequence of contained per-record failures.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/models", nil)
	if err != nil {
		return err
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("endpoint unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("endpoint unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) buildRequest(prompt string, options *Options) map[string]any {
	req := map[string]any{
		"model":  c.Model,
		"prompt": prompt,
		"stream": false,
	}
	if options.MaxTokens > 0 {
		req["max_tokens"] = options.MaxTokens
	}
	if options.Temperature > 0 {
		req["temperature"] = options.Temperature
	}
	if options.Echo {
		req["echo"] = true
	}
	if len(options.Stop) > 0 {
		req["stop"] = options.Stop
	}
	return req
}
