package http_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticelabs/lattice/internal/agent"
	"github.com/latticelabs/lattice/internal/flow"
	"github.com/latticelabs/lattice/internal/jobs"
	"github.com/latticelabs/lattice/internal/testutils"
	httpadapter "github.com/latticelabs/lattice/pkg/adapters/http"
	"github.com/latticelabs/lattice/pkg/adapters/memory"
	"github.com/latticelabs/lattice/pkg/domain"
)

func newTestServer(t *testing.T, completer *testutils.ScriptedCompleter, opts ...httpadapter.Option) *httptest.Server {
	t.Helper()

	f, err := agent.NewFlow(completer, nil, flow.Hooks{})
	require.NoError(t, err)
	manager := jobs.NewManager(f, memory.NewStore())

	srv := httptest.NewServer(httpadapter.NewHandler(manager, completer, opts...))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any, headers map[string]string) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func readSSE(t *testing.T, body *bufio.Reader) []domain.Event {
	t.Helper()

	var events []domain.Event
	for {
		line, err := body.ReadString('\n')
		if err != nil {
			return events
		}
		data, ok := strings.CutPrefix(strings.TrimSpace(line), "data: ")
		if !ok || data == "connected" {
			continue
		}
		var ev domain.Event
		require.NoError(t, json.Unmarshal([]byte(data), &ev))
		events = append(events, ev)
	}
}

func TestServer_JobLifecycle(t *testing.T) {
	completer := testutils.NewScriptedCompleter(
		"next_action: chat\nreason: greeting",
		"Hello! I can modify scenes.",
	)
	srv := newTestServer(t, completer)

	resp := postJSON(t, srv.URL+"/ai/assistant/jobs", map[string]any{
		"model":      "test-model",
		"user_query": "hi",
	}, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var submitted map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&submitted))
	jobID := submitted["job_id"]
	require.NotEmpty(t, jobID)

	stream, err := http.Get(srv.URL + "/ai/assistant/jobs/" + jobID + "/events")
	require.NoError(t, err)
	defer stream.Body.Close()
	assert.Equal(t, "text/event-stream", stream.Header.Get("Content-Type"))

	events := readSSE(t, bufio.NewReader(stream.Body))
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, domain.EventDone, last.Type)
	assert.Equal(t, string(domain.ActionChat), last.Intent)

	var sawChunk bool
	for _, ev := range events {
		if ev.Type == domain.EventContent {
			sawChunk = true
		}
	}
	assert.True(t, sawChunk, "chat chunks are streamed")

	record, err := http.Get(srv.URL + "/ai/assistant/jobs/" + jobID)
	require.NoError(t, err)
	defer record.Body.Close()
	require.Equal(t, http.StatusOK, record.StatusCode)

	var job domain.Job
	require.NoError(t, json.NewDecoder(record.Body).Decode(&job))
	assert.Equal(t, domain.JobCompleted, job.Status)
}

func TestServer_SecondSubscriberConflicts(t *testing.T) {
	completer := testutils.NewScriptedCompleter("next_action: chat\nreason: r", "hi")
	srv := newTestServer(t, completer)

	resp := postJSON(t, srv.URL+"/ai/assistant/jobs", map[string]any{"user_query": "hi", "model": "m"}, nil)
	defer resp.Body.Close()
	var submitted map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&submitted))
	jobID := submitted["job_id"]

	first, err := http.Get(srv.URL + "/ai/assistant/jobs/" + jobID + "/events")
	require.NoError(t, err)
	defer first.Body.Close()

	second, err := http.Get(srv.URL + "/ai/assistant/jobs/" + jobID + "/events")
	require.NoError(t, err)
	defer second.Body.Close()
	assert.Equal(t, http.StatusConflict, second.StatusCode)
}

func TestServer_UnknownJob(t *testing.T) {
	srv := newTestServer(t, testutils.NewScriptedCompleter())

	resp, err := http.Get(srv.URL + "/ai/assistant/jobs/nope/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ai/assistant/jobs/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_SubmitValidation(t *testing.T) {
	srv := newTestServer(t, testutils.NewScriptedCompleter())

	resp := postJSON(t, srv.URL+"/ai/assistant/jobs", map[string]any{"model": "m"}, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_BearerAuth(t *testing.T) {
	completer := testutils.NewScriptedCompleter("next_action: chat\nreason: r", "hi")
	srv := newTestServer(t, completer, httpadapter.WithAPIKeys([]string{"sk-demo1"}))

	body := map[string]any{"user_query": "hi", "model": "m"}

	resp := postJSON(t, srv.URL+"/ai/assistant/jobs", body, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/ai/assistant/jobs", body, map[string]string{"Authorization": "Bearer wrong"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/ai/assistant/jobs", body, map[string]string{"Authorization": "Bearer sk-demo1"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	// Health stays open.
	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestServer_ChatPassthrough(t *testing.T) {
	completer := testutils.NewScriptedCompleter("Sure, here is an answer.")
	srv := newTestServer(t, completer, httpadapter.WithDefaultModel("fallback-model"))

	resp := postJSON(t, srv.URL+"/ai/chat", map[string]any{"user_query": "explain nodes"}, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	events := readSSE(t, bufio.NewReader(resp.Body))
	require.NotEmpty(t, events)
	assert.Equal(t, domain.EventThinking, events[0].Type)
	assert.Equal(t, domain.EventDone, events[len(events)-1].Type)

	var text string
	for _, ev := range events {
		if ev.Type == domain.EventContent {
			text += ev.Content.(string)
		}
	}
	assert.Equal(t, "Sure, here is an answer.", text)

	// The default model fills in for an omitted one.
	require.NotEmpty(t, completer.Models)
	assert.Equal(t, "fallback-model", completer.Models[0])
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, testutils.NewScriptedCompleter())

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	var status map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "ok", status["status"])
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(t, testutils.NewScriptedCompleter())

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
