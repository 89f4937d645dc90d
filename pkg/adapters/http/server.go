// Package http exposes the assistant over a chi router: background jobs
// with SSE progress streams, a direct chat passthrough, health and
// metrics endpoints.
package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/latticelabs/lattice/internal/jobs"
	"github.com/latticelabs/lattice/internal/logging"
	"github.com/latticelabs/lattice/pkg/domain"
	"github.com/latticelabs/lattice/pkg/ports"
)

// Server routes assistant requests to the job manager and the model
// client.
type Server struct {
	jobs         *jobs.Manager
	completer    ports.Completer
	defaultModel string
	apiKeys      map[string]struct{}
	logger       *slog.Logger
}

type Option func(*Server)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAPIKeys enables bearer-token auth on the /ai routes. With no keys
// configured the routes are open.
func WithAPIKeys(keys []string) Option {
	return func(s *Server) {
		for _, k := range keys {
			s.apiKeys[k] = struct{}{}
		}
	}
}

// WithDefaultModel sets the model used when a request omits one.
func WithDefaultModel(model string) Option {
	return func(s *Server) {
		s.defaultModel = model
	}
}

// NewHandler builds the HTTP handler for the assistant API.
func NewHandler(manager *jobs.Manager, completer ports.Completer, opts ...Option) http.Handler {
	s := &Server{
		jobs:      manager,
		completer: completer,
		apiKeys:   make(map[string]struct{}),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()

	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/ai", func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.Post("/chat", s.chat)
		r.Post("/assistant/jobs", s.submitJob)
		r.Get("/assistant/jobs/{id}", s.getJob)
		r.Get("/assistant/jobs/{id}/events", s.jobEvents)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.apiKeys) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			http.Error(w, "Missing bearer token", http.StatusUnauthorized)
			return
		}
		if _, valid := s.apiKeys[token]; !valid {
			s.logger.Warn("rejected API key", "path", r.URL.Path)
			http.Error(w, "Invalid API key", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// submitJob handles POST /ai/assistant/jobs.
func (s *Server) submitJob(w http.ResponseWriter, r *http.Request) {
	var req domain.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("submit: invalid request body", "err", err)
		return
	}
	if req.Model == "" {
		req.Model = s.defaultModel
	}
	if req.UserQuery == "" {
		http.Error(w, "user_query is required", http.StatusBadRequest)
		return
	}

	id := s.jobs.Submit(r.Context(), req)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"job_id": id})
}

// getJob handles GET /ai/assistant/jobs/{id}.
func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := s.jobs.Job(r.Context(), id)
	if err != nil {
		if err == domain.ErrJobNotFound {
			http.Error(w, "Job not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		s.logger.Error("job load failed", "job_id", id, "err", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(record); err != nil {
		s.logger.Error("job response encode failed", "err", err)
	}
}

// jobEvents handles GET /ai/assistant/jobs/{id}/events (SSE). The stream
// belongs to exactly one consumer; a second subscriber gets 409.
func (s *Server) jobEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	stream, err := s.jobs.Attach(id)
	if err != nil {
		switch err {
		case domain.ErrJobNotFound:
			http.Error(w, "Job not found", http.StatusNotFound)
		case domain.ErrStreamClaimed:
			http.Error(w, "Stream already claimed", http.StatusConflict)
		default:
			http.Error(w, fmt.Sprintf("Attach error: %v", err), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		ev, ok := stream.Next(r.Context())
		if !ok {
			break
		}
		data, err := json.Marshal(ev)
		if err != nil {
			s.logger.Error("event encode failed", "job_id", id, "err", err)
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	if r.Context().Err() != nil {
		// Client went away; keep the job registered so its record stays
		// loadable. The run itself continues detached.
		s.logger.Info("SSE client disconnected", "job_id", id)
		return
	}
	s.jobs.Release(id)
}

type chatRequest struct {
	Model     string `json:"model"`
	UserQuery string `json:"user_query"`
}

// chat handles POST /ai/chat: a direct single-turn passthrough to the
// model, streamed as SSE without the assistant flow.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Model == "" {
		req.Model = s.defaultModel
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	chunks, err := s.completer.StreamComplete(r.Context(), req.Model, req.UserQuery)
	if err != nil {
		http.Error(w, fmt.Sprintf("Completion error: %v", err), http.StatusBadGateway)
		s.logger.Error("chat completion failed", "err", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	writeEvent := func(ev domain.Event) {
		data, err := json.Marshal(ev)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	writeEvent(domain.Event{Step: "chat", Type: domain.EventThinking, Content: "Agent is thinking..."})

	for chunk := range chunks {
		if chunk.Err != nil {
			writeEvent(domain.Event{Step: "chat", Type: domain.EventError, Content: chunk.Err.Error()})
			return
		}
		if chunk.Content != "" {
			writeEvent(domain.Event{Step: "chat", Type: domain.EventContent, Content: chunk.Content})
		}
	}

	writeEvent(domain.Event{Step: "chat", Type: domain.EventDone})
}
