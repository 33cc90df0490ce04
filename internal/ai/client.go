// Package ai wraps the hosted language model used to generate sermon
// summaries. It is a thin messages-API client: one request, one text
// response, bounded retries on transient failures.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

const (
	apiVersion    = "2023-06-01"
	maxRetries    = 3
	initialDelay  = 2 * time.Second
	maxBodyBytes  = 1 << 20
	maxTranscript = 60_000 // runes of transcript forwarded to the model
)

// systemPrompt frames the summarization task; kept short so the transcript
// dominates the context window.
const systemPrompt = "You summarize church sermons. Produce a warm, faithful summary of the sermon " +
	"in at most three short paragraphs, preserving the key scripture references and the central message. " +
	"Reply with the summary text only."

// Summarizer is the capability the sermon service depends on.
type Summarizer interface {
	Summarize(ctx context.Context, title, transcript string) (string, error)
}

// Client calls a hosted messages API (Anthropic-compatible shape).
type Client struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	httpc     *http.Client
}

type request struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	System    string `json:"system,omitempty"`
	Messages  []msg  `json:"messages"`
}

type msg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// NewClient builds a Client. timeout bounds each attempt including body read.
func NewClient(apiKey, baseURL, model string, maxTokens int, timeout time.Duration) *Client {
	return &Client{
		apiKey:    apiKey,
		baseURL:   baseURL,
		model:     model,
		maxTokens: maxTokens,
		httpc:     &http.Client{Timeout: timeout},
	}
}

// Summarize asks the model for a summary of the given sermon transcript.
// Transient failures (transport errors, 429, 5xx) are retried with
// exponential backoff; other API errors return immediately.
func (c *Client) Summarize(ctx context.Context, title, transcript string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("ai: api key not configured")
	}
	if strings.TrimSpace(transcript) == "" {
		return "", fmt.Errorf("ai: empty transcript")
	}
	transcript = clipRunes(transcript, maxTranscript)

	body, err := json.Marshal(request{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    systemPrompt,
		Messages: []msg{
			{Role: "user", Content: fmt.Sprintf("Sermon title: %s\n\nTranscript:\n%s", title, transcript)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ai: marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * initialDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("ai: create request: %w", err)
		}
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", apiVersion)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpc.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("ai: request failed: %w", err)
			continue
		}

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("ai: read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("ai: api error (%d): %s", resp.StatusCode, truncate(respBody))
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return "", lastErr
		}

		var out response
		if err := json.Unmarshal(respBody, &out); err != nil {
			return "", fmt.Errorf("ai: decode response: %w", err)
		}
		if len(out.Content) == 0 || strings.TrimSpace(out.Content[0].Text) == "" {
			return "", fmt.Errorf("ai: empty response content")
		}
		return strings.TrimSpace(out.Content[0].Text), nil
	}

	return "", fmt.Errorf("ai: max retries (%d) exceeded: %w", maxRetries, lastErr)
}

func clipRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func truncate(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
