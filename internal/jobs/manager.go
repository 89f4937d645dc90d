// Package jobs runs assistant flows in the background and hands their
// progress streams to exactly one consumer each, mirroring the submit
// then subscribe shape of the HTTP API.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/latticelabs/lattice/internal/flow"
	"github.com/latticelabs/lattice/internal/logging"
	"github.com/latticelabs/lattice/pkg/domain"
	"github.com/latticelabs/lattice/pkg/ports"
)

type job struct {
	stream  *flow.Stream
	claimed bool
}

// Manager owns the live job registry. Each submitted request gets its own
// shared context and stream; no state is shared between runs.
type Manager struct {
	flow   *flow.Flow
	store  ports.JobStore
	logger *slog.Logger

	mu     sync.Mutex
	active map[string]*job

	// wg tracks background runs so tests and shutdown can wait for them.
	wg sync.WaitGroup
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager running flows on f and persisting terminal
// records to store. A nil store disables persistence.
func NewManager(f *flow.Flow, store ports.JobStore, opts ...Option) *Manager {
	m := &Manager{
		flow:   f,
		store:  store,
		logger: logging.NewNop(),
		active: make(map[string]*job),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Submit starts a flow run in the background and returns its job ID. The
// run is detached from the caller's context: a disconnecting consumer
// must not tear down an in-flight model call.
func (m *Manager) Submit(ctx context.Context, req domain.Request) string {
	id := uuid.NewString()
	stream := flow.NewStream()

	shared := &domain.Shared{
		Model:     req.Model,
		UserQuery: req.UserQuery,
		Metadata:  req.Metadata,
		Events:    stream,
	}

	m.mu.Lock()
	m.active[id] = &job{stream: stream}
	m.mu.Unlock()

	record := &domain.Job{
		ID:        id,
		Status:    domain.JobRunning,
		Model:     req.Model,
		UserQuery: req.UserQuery,
		CreatedAt: time.Now().UTC(),
	}
	m.persist(ctx, record)

	m.wg.Add(1)
	go m.run(context.WithoutCancel(ctx), shared, stream, record)

	m.logger.Info("job submitted", "job_id", id, "model", req.Model)
	return id
}

func (m *Manager) run(ctx context.Context, shared *domain.Shared, stream *flow.Stream, record *domain.Job) {
	defer m.wg.Done()

	err := m.flow.Run(ctx, shared)

	finished := time.Now().UTC()
	record.FinishedAt = &finished
	record.Intent = string(shared.Intent)

	if err != nil {
		// The executor already published the terminal error event;
		// closing the stream is all that is left.
		record.Status = domain.JobFailed
		record.Error = err.Error()
		m.logger.Error("job failed", "job_id", record.ID, "err", err)
	} else {
		record.Status = domain.JobCompleted
		record.Scene = shared.Scene
		stream.Publish(domain.Event{
			Step:   "flow",
			Type:   domain.EventDone,
			Intent: string(shared.Intent),
		})
	}

	stream.Close()
	m.persist(ctx, record)
}

// Attach claims the event stream of a job. Each stream has exactly one
// consumer; a second Attach returns domain.ErrStreamClaimed.
func (m *Manager) Attach(id string) (*flow.Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.active[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	if j.claimed {
		return nil, domain.ErrStreamClaimed
	}
	j.claimed = true
	return j.stream, nil
}

// Release drops a job from the live registry once its consumer is done.
// The terminal record stays in the store.
func (m *Manager) Release(id string) {
	m.mu.Lock()
	delete(m.active, id)
	m.mu.Unlock()
}

// Job loads the terminal record of a job from the store.
func (m *Manager) Job(ctx context.Context, id string) (*domain.Job, error) {
	if m.store == nil {
		return nil, domain.ErrJobNotFound
	}
	return m.store.Load(ctx, id)
}

// Wait blocks until all background runs have finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) persist(ctx context.Context, record *domain.Job) {
	if m.store == nil {
		return
	}
	if err := m.store.Save(ctx, record); err != nil {
		m.logger.Warn("failed to persist job record", "job_id", record.ID, "err", err)
	}
}
