package flow

import (
	"context"

	"github.com/latticelabs/lattice/pkg/domain"
)

// Step is one node of the flow graph. The executor invokes the three
// phases in strict sequence for a single visit:
//
//   - Prepare extracts and validates what the step needs from the shared
//     context. It must not perform I/O.
//   - Execute does the slow, fallible work. It is the only phase allowed
//     to call external collaborators, and it may publish any number of
//     progress events while running, including zero.
//   - Finalize commits results into the shared context and returns the
//     action used for routing. Its side effects are limited to context
//     mutation.
//
// The split keeps Prepare and Finalize deterministic and testable without
// network access.
type Step interface {
	Name() string
	Prepare(shared *domain.Shared) (any, error)
	Execute(ctx context.Context, input any) (any, error)
	Finalize(shared *domain.Shared, input, output any) (domain.Action, error)
}

// Fallback is an optional Step extension. When Execute fails and the step
// implements Fallback, the executor substitutes the fallback result and
// the flow continues; without it the failure is fatal to the run.
type Fallback interface {
	Fallback(err error) (any, error)
}
