/*
Package lattice is an agent orchestration engine for node-graph scene
editors. It routes user requests through an intent-classifying flow,
streams model output as ordered progress events, and applies
model-generated SEARCH/REPLACE diffs to scene documents atomically.

# Concept

Lattice treats an assistant request as a run through a small graph of
steps. A classifier step picks the intent (modify the scene, generate a
node, chat, ...), the matching step drives the model, and a patch step
applies the resulting diff to the scene. The engine manages routing,
streaming, and error handling; the host manages transport and storage.
This hexagonal layout lets the same flow serve HTTP, MCP, or a CLI.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/latticelabs/lattice"
		"github.com/latticelabs/lattice/pkg/adapters/openrouter"
		"github.com/latticelabs/lattice/pkg/domain"
	)

	func main() {
		client := openrouter.New("sk-...")
		eng, err := lattice.New(client)
		if err != nil {
			log.Fatal(err)
		}

		id := eng.Submit(context.Background(), domain.Request{
			Model:     "anthropic/claude-3.7-sonnet",
			UserQuery: "add a torus next to the cube",
			Metadata:  map[string]any{"scene_data": `{"nodes":[]}`},
		})

		stream, err := eng.Attach(id)
		if err != nil {
			log.Fatal(err)
		}
		for _, ev := range stream.Drain(context.Background()) {
			log.Printf("%s: %s", ev.Step, ev.Type)
		}
	}

Progress events arrive in emission order and the stream is closed by the
engine after the terminal done or error event.
*/
package lattice
