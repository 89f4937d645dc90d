// Package memory provides the in-memory JobStore used for tests and
// single-process deployments.
package memory

import (
	"context"
	"sync"

	"github.com/latticelabs/lattice/pkg/domain"
)

// Store implements ports.JobStore in memory. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string]*domain.Job
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{data: make(map[string]*domain.Job)}
}

// Save persists a copy of the record so later caller mutations don't
// leak into the store.
func (s *Store) Save(ctx context.Context, job *domain.Job) error {
	copied := *job
	if job.FinishedAt != nil {
		finished := *job.FinishedAt
		copied.FinishedAt = &finished
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[job.ID] = &copied
	return nil
}

// Load retrieves a copy of the record.
func (s *Store) Load(ctx context.Context, id string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.data[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}

	ret := *job
	if job.FinishedAt != nil {
		finished := *job.FinishedAt
		ret.FinishedAt = &finished
	}
	return &ret, nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored job IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
