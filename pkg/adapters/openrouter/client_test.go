package openrouter_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticelabs/lattice/pkg/adapters/openrouter"
	"github.com/latticelabs/lattice/pkg/ports"
)

func sseServer(t *testing.T, lines []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, true, req["stream"])
		assert.Equal(t, "test-model", req["model"])

		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n\n", line)
		}
	}))
}

func delta(content string) string {
	return fmt.Sprintf(`data: {"choices":[{"delta":{"content":%q}}]}`, content)
}

func collect(t *testing.T, ch <-chan ports.Chunk) (string, string, error) {
	t.Helper()
	var text, finish string
	for chunk := range ch {
		if chunk.Err != nil {
			return text, finish, chunk.Err
		}
		text += chunk.Content
		if chunk.FinishReason != "" {
			finish = chunk.FinishReason
		}
	}
	return text, finish, nil
}

func TestClient_StreamComplete(t *testing.T) {
	srv := sseServer(t, []string{
		delta("Hello"),
		delta(" world"),
		`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}`,
		"data: [DONE]",
	})
	defer srv.Close()

	client := openrouter.New("test-key", openrouter.WithBaseURL(srv.URL))
	ch, err := client.StreamComplete(context.Background(), "test-model", "say hello")
	require.NoError(t, err)

	text, finish, err := collect(t, ch)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)
	assert.Equal(t, "stop", finish)
}

func TestClient_SkipsCommentsAndMalformedChunks(t *testing.T) {
	srv := sseServer(t, []string{
		": keep-alive",
		"data: {not json",
		delta("ok"),
		"data: [DONE]",
	})
	defer srv.Close()

	client := openrouter.New("test-key", openrouter.WithBaseURL(srv.URL))
	ch, err := client.StreamComplete(context.Background(), "test-model", "p")
	require.NoError(t, err)

	text, _, err := collect(t, ch)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestClient_HTTPErrorIsReturnedEagerly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid model"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := openrouter.New("test-key", openrouter.WithBaseURL(srv.URL))
	_, err := client.StreamComplete(context.Background(), "bad-model", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid model")
}

func TestClient_ContextCancellation(t *testing.T) {
	srv := sseServer(t, []string{delta("partial")})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := openrouter.New("test-key", openrouter.WithBaseURL(srv.URL))
	ch, err := client.StreamComplete(ctx, "test-model", "p")
	require.NoError(t, err)
	cancel()

	// Either the stream ends cleanly (server already closed) or the
	// cancellation surfaces as a terminal error chunk. Either way the
	// producer must close the channel.
	for range ch {
	}
}
