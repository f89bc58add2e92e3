// Package oracle is the thin HTTP client for the upstream chat-completion
// API that powers the Banana Oracle. It speaks the OpenAI-style
// /v1/chat/completions wire format and knows nothing about quotas, terms,
// or personas — that logic lives in the oracle service.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meteoryte/banana-oracle/internal/apperror"
)

// Model is the upstream model every completion is requested against.
const Model = "gpt-4-turbo-preview"

const defaultBaseURL = "https://api.openai.com"

// Message is one turn of a chat completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Client calls the completion API. A Client with an empty API key is
// valid but unconfigured: Configured reports false and Complete fails
// with ErrUpstream.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a Client. baseURL may be empty to use the public endpoint;
// overriding it points the client at a test server or a proxy.
func New(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured reports whether an API key is present. Callers gate the
// Oracle endpoints on this and answer 503 when it is false.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Complete runs one non-streaming chat completion and returns the
// assistant's text. Upstream failures come back as apperror.ErrUpstream
// so the handler layer maps them to 503 uniformly.
func (c *Client) Complete(ctx context.Context, messages []Message, maxTokens int, temperature float64) (string, error) {
	if !c.Configured() {
		return "", apperror.Upstream("completion API key not configured")
	}

	body, err := json.Marshal(completionRequest{
		Model:       Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("oracle: encoding completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("oracle: building completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apperror.Upstream("completion API unreachable: " + err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("oracle: reading completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && ae.Error.Message != "" {
			return "", apperror.Upstream(fmt.Sprintf("completion API error (%d): %s", resp.StatusCode, ae.Error.Message))
		}
		return "", apperror.Upstream(fmt.Sprintf("completion API returned status %d", resp.StatusCode))
	}

	var cr completionResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", fmt.Errorf("oracle: decoding completion response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", apperror.Upstream("completion API returned no choices")
	}

	return cr.Choices[0].Message.Content, nil
}
