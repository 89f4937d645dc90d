package agent

import (
	"context"
	"strings"

	"github.com/latticelabs/lattice/pkg/domain"
	"github.com/latticelabs/lattice/pkg/ports"
)

// consume drains a completion stream in arrival order, accumulating the
// full response. onChunk, when set, observes every content chunk as it
// arrives; chunks are never reordered or dropped.
func consume(ctx context.Context, completer ports.Completer, model, prompt string, onChunk func(string)) (string, error) {
	stream, err := completer.StreamComplete(ctx, model, prompt)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	for chunk := range stream {
		if chunk.Err != nil {
			return "", chunk.Err
		}
		if chunk.Content == "" {
			continue
		}
		buf.WriteString(chunk.Content)
		if onChunk != nil {
			onChunk(chunk.Content)
		}
	}
	return buf.String(), nil
}

// publish forwards an event to a possibly nil publisher.
func publish(p domain.Publisher, ev domain.Event) {
	if p != nil {
		p.Publish(ev)
	}
}
