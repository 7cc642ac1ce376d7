package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ResponsesClient implements Client against a Responses-style API: POST
// <base>/responses with role/typed-content input blocks.
type ResponsesClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	log        *zap.Logger
}

// ResponsesConfig holds construction parameters for a ResponsesClient.
type ResponsesConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewResponsesClient creates a client for the /responses endpoint.
func NewResponsesClient(cfg ResponsesConfig, log *zap.Logger) *ResponsesClient {
	return &ResponsesClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

type responsesRequest struct {
	Model       string          `json:"model"`
	Input       []responsesTurn `json:"input"`
	Temperature float64         `json:"temperature"`
}

type responsesTurn struct {
	Role    string          `json:"role"`
	Content []responsesText `json:"content"`
}

type responsesText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends the prompt pair and returns the normalized assistant text.
func (c *ResponsesClient) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("API key not configured")
	}

	body := responsesRequest{
		Model: c.model,
		Input: []responsesTurn{
			{Role: "system", Content: []responsesText{{Type: "text", Text: systemPrompt}}},
			{Role: "user", Content: []responsesText{{Type: "text", Text: userPrompt}}},
		},
		Temperature: temperature,
	}

	start := time.Now()
	text, err := c.post(ctx, c.baseURL+"/responses", body)
	if err != nil {
		return "", err
	}
	c.log.Debug("oracle call completed",
		zap.String("endpoint", "responses"),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_len", len(text)))
	return text, nil
}

func (c *ResponsesClient) post(ctx context.Context, url string, body interface{}) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &RequestError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &RequestError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &RequestError{Status: resp.StatusCode, Body: bodyExcerpt(raw)}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("failed to decode oracle response: %w", err)
	}
	return normalize(&env)
}
