// Package openrouter implements the Completer port against the
// OpenRouter chat completions API (OpenAI-compatible SSE streaming).
package openrouter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/latticelabs/lattice/pkg/ports"
)

// DefaultBaseURL is the production OpenRouter endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Client streams chat completions from an OpenRouter-compatible server.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	temperature float64
	topP        float64
}

type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests and proxies.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Client) {
		c.temperature = t
	}
}

// New creates a Client authenticating with apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			// Generous timeout: slow models stream for minutes.
			Timeout: 10 * time.Minute,
		},
		temperature: 0.5,
		topP:        1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// StreamComplete sends the prompt as a single user message and streams
// the response deltas. The returned channel is closed by the producer.
func (c *Client) StreamComplete(ctx context.Context, model, prompt string) (<-chan ports.Chunk, error) {
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
		TopP:        c.topP,
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("completion request failed: %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	out := make(chan ports.Chunk)
	go c.streamResponse(ctx, resp.Body, out)
	return out, nil
}

func (c *Client) streamResponse(ctx context.Context, body io.ReadCloser, out chan<- ports.Chunk) {
	defer close(out)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			out <- ports.Chunk{Err: ctx.Err()}
			return
		default:
		}

		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		if data == "[DONE]" {
			return
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil || len(chunk.Choices) == 0 {
			continue
		}

		choice := chunk.Choices[0]
		if choice.Delta.Content != "" {
			select {
			case out <- ports.Chunk{Content: choice.Delta.Content}:
			case <-ctx.Done():
				out <- ports.Chunk{Err: ctx.Err()}
				return
			}
		}
		if choice.FinishReason != nil {
			out <- ports.Chunk{FinishReason: *choice.FinishReason}
			return
		}
	}

	if err := scanner.Err(); err != nil {
		out <- ports.Chunk{Err: fmt.Errorf("stream read failed: %w", err)}
	}
}
