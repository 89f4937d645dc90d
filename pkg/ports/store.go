package ports

import (
	"context"

	"github.com/latticelabs/lattice/pkg/domain"
)

// JobStore persists terminal job records. Live progress never touches the
// store; it flows through the job's event stream.
type JobStore interface {
	// Save persists the record for a job ID, overwriting any previous one.
	Save(ctx context.Context, job *domain.Job) error

	// Load retrieves a job record.
	// Returns domain.ErrJobNotFound if the job does not exist.
	Load(ctx context.Context, id string) (*domain.Job, error)

	// Delete removes a job record.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of stored jobs.
	List(ctx context.Context) ([]string, error)
}
