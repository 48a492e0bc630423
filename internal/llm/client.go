// Package llm talks to an OpenAI-compatible chat completion endpoint and
// turns a period's thoughts into a natural-language digest.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL targets a local OpenAI-compatible server.
	DefaultBaseURL = "http://localhost:11434/v1"

	// DefaultModelFamily is the preferred model family when no model is
	// configured: the first listed model whose id starts with this prefix
	// is used.
	DefaultModelFamily = "llama"

	// FallbackModel is used when no model is configured and the models
	// listing endpoint cannot be reached.
	FallbackModel = "llama3.2"

	// DefaultTimeout for completion calls.
	DefaultTimeout = 60 * time.Second
)

// SummarizationError wraps any failure contacting or interpreting the chat
// completion endpoint. It is reported to the user and never retried.
type SummarizationError struct {
	Cause error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarization failed: %v", e.Cause)
}

func (e *SummarizationError) Unwrap() error { return e.Cause }

func summarizationErr(format string, args ...any) error {
	return &SummarizationError{Cause: fmt.Errorf(format, args...)}
}

// Config holds the LLM boundary configuration. It is constructed once at
// startup and passed in explicitly; the client never reads the environment.
type Config struct {
	BaseURL string        // OpenAI-compatible base URL, e.g. "http://localhost:11434/v1"
	Model   string        // model name; empty means resolve via ListModels
	APIKey  string        // optional bearer credential
	Timeout time.Duration // per-request timeout
}

// Client is a minimal OpenAI-compatible chat completion client.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a Client from the given configuration, applying defaults
// for unset base URL and timeout.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// ─── Wire types ──────────────────────────────────────────────────────────────

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ─── Operations ──────────────────────────────────────────────────────────────

// Complete sends a single chat completion request with a system and a user
// message and returns the first choice's content. Any failure — transport,
// non-2xx status, or a response missing the expected fields — is returned as
// a SummarizationError. There is exactly one attempt, no retries.
func (c *Client) Complete(ctx context.Context, prompt, systemPrompt string) (string, error) {
	model, err := c.ResolveModel(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", summarizationErr("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", summarizationErr("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", summarizationErr("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", summarizationErr("endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", summarizationErr("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", summarizationErr("response has no choices with message content")
	}

	return parsed.Choices[0].Message.Content, nil
}

// ListModels returns the model ids advertised by the endpoint's /models
// listing, in the order the endpoint reports them.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/models", nil)
	if err != nil {
		return nil, summarizationErr("create models request: %w", err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, summarizationErr("models request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, summarizationErr("models endpoint returned status %d", resp.StatusCode)
	}

	var parsed modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, summarizationErr("decode models response: %w", err)
	}

	ids := make([]string, 0, len(parsed.Data))
	for _, m := range parsed.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// ResolveModel returns the configured model name, or picks one from the
// endpoint's model listing: the first id in the default family, else the
// first listed id, else FallbackModel when listing fails or is empty.
func (c *Client) ResolveModel(ctx context.Context) (string, error) {
	if c.cfg.Model != "" {
		return c.cfg.Model, nil
	}

	ids, err := c.ListModels(ctx)
	if err != nil || len(ids) == 0 {
		return FallbackModel, nil
	}
	for _, id := range ids {
		if strings.HasPrefix(id, DefaultModelFamily) {
			return id, nil
		}
	}
	return ids[0], nil
}
