package ports

import "context"

// Chunk is one element of a model token stream.
type Chunk struct {
	// Content is the text delta. Empty for pure control chunks.
	Content string

	// FinishReason is set on the final chunk of a successful stream
	// (e.g. "stop", "length").
	FinishReason string

	// Err is set when the stream failed mid-flight. It is always the
	// last chunk delivered.
	Err error
}

// Completer is the model client port. Implementations stream a completion
// for the given prompt; the returned channel delivers chunks in arrival
// order, is finite, is not restartable, and is closed by the producer.
// The core never validates the model identifier, it forwards it verbatim.
type Completer interface {
	StreamComplete(ctx context.Context, model, prompt string) (<-chan Chunk, error)
}
