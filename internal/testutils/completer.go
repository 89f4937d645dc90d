package testutils

import (
	"context"
	"strings"
	"sync"

	"github.com/latticelabs/lattice/pkg/ports"
)

// ScriptedCompleter is a deterministic ports.Completer for tests. Each
// call pops the next scripted response and streams it in fixed-size
// chunks, in order. Prompts are recorded for assertions.
type ScriptedCompleter struct {
	mu        sync.Mutex
	responses []ScriptedResponse
	Prompts   []string
	Models    []string
}

// ScriptedResponse is one canned model answer. When Err is set the stream
// fails after delivering any Chunks.
type ScriptedResponse struct {
	Chunks []string
	Err    error
}

// NewScriptedCompleter builds a completer that replies with the given
// texts, one per call, each split into small chunks.
func NewScriptedCompleter(texts ...string) *ScriptedCompleter {
	c := &ScriptedCompleter{}
	for _, text := range texts {
		c.responses = append(c.responses, ScriptedResponse{Chunks: chunked(text, 16)})
	}
	return c
}

// Script appends a raw response, letting tests control exact chunk
// boundaries or inject stream errors.
func (c *ScriptedCompleter) Script(resp ScriptedResponse) *ScriptedCompleter {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, resp)
	return c
}

func (c *ScriptedCompleter) StreamComplete(ctx context.Context, model, prompt string) (<-chan ports.Chunk, error) {
	c.mu.Lock()
	c.Prompts = append(c.Prompts, prompt)
	c.Models = append(c.Models, model)
	var resp ScriptedResponse
	if len(c.responses) > 0 {
		resp = c.responses[0]
		c.responses = c.responses[1:]
	}
	c.mu.Unlock()

	out := make(chan ports.Chunk)
	go func() {
		defer close(out)
		for _, chunk := range resp.Chunks {
			select {
			case <-ctx.Done():
				out <- ports.Chunk{Err: ctx.Err()}
				return
			case out <- ports.Chunk{Content: chunk}:
			}
		}
		if resp.Err != nil {
			out <- ports.Chunk{Err: resp.Err}
			return
		}
		out <- ports.Chunk{FinishReason: "stop"}
	}()
	return out, nil
}

func chunked(text string, size int) []string {
	if text == "" {
		return nil
	}
	var chunks []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if b.Len() >= size {
			chunks = append(chunks, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}
