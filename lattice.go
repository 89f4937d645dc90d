package lattice

import (
	"context"
	"log/slog"

	"github.com/latticelabs/lattice/internal/agent"
	"github.com/latticelabs/lattice/internal/flow"
	"github.com/latticelabs/lattice/internal/jobs"
	"github.com/latticelabs/lattice/internal/logging"
	"github.com/latticelabs/lattice/pkg/domain"
	"github.com/latticelabs/lattice/pkg/ports"
)

// Version is the library version.
var Version = "0.1.0"

// Engine is the high-level entry point for the Lattice library. It wraps
// the assistant flow and the background job manager behind one API so
// hosts (HTTP server, MCP server, CLI) share the same wiring.
type Engine struct {
	flow   *flow.Flow
	jobs   *jobs.Manager
	store  ports.JobStore
	hooks  flow.Hooks
	logger *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStore sets the job store. Without one, job records are not
// persisted and only live streams are available.
func WithStore(store ports.JobStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithHooks registers observability hooks fired around each step.
func WithHooks(hooks flow.Hooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// New creates an Engine running the assistant flow against the given
// model client.
func New(completer ports.Completer, opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	f, err := agent.NewFlow(completer, e.logger, e.hooks)
	if err != nil {
		return nil, err
	}
	e.flow = f
	e.jobs = jobs.NewManager(f, e.store, jobs.WithLogger(e.logger))
	return e, nil
}

// Run executes the assistant flow synchronously against shared. The
// caller owns the event stream attached to shared, if any.
func (e *Engine) Run(ctx context.Context, shared *domain.Shared) error {
	return e.flow.Run(ctx, shared)
}

// Submit starts a background run and returns its job ID.
func (e *Engine) Submit(ctx context.Context, req domain.Request) string {
	return e.jobs.Submit(ctx, req)
}

// Attach claims the event stream of a background job.
func (e *Engine) Attach(id string) (*flow.Stream, error) {
	return e.jobs.Attach(id)
}

// Release drops a finished job from the live registry.
func (e *Engine) Release(id string) {
	e.jobs.Release(id)
}

// Job loads the persisted record of a job.
func (e *Engine) Job(ctx context.Context, id string) (*domain.Job, error) {
	return e.jobs.Job(ctx, id)
}

// Jobs exposes the job manager for transport adapters.
func (e *Engine) Jobs() *jobs.Manager {
	return e.jobs
}

// Flow exposes the underlying flow for hosts that run it directly.
func (e *Engine) Flow() *flow.Flow {
	return e.flow
}

// Wait blocks until all background runs have finished. Used during
// graceful shutdown.
func (e *Engine) Wait() {
	e.jobs.Wait()
}
