package agent

import (
	"context"

	"github.com/latticelabs/lattice/pkg/domain"
)

// NoopStep is a deliberate no-op: it announces itself and terminates the
// flow without touching the shared context. The unimplemented intents
// (modify_node, generate_scene, generate_node) are wired through it as
// first-class extension points.
type NoopStep struct {
	name    string
	message string
}

func NewNoopStep(name, message string) *NoopStep {
	return &NoopStep{name: name, message: message}
}

func (s *NoopStep) Name() string { return s.name }

func (s *NoopStep) Prepare(shared *domain.Shared) (any, error) {
	return shared.Events, nil
}

func (s *NoopStep) Execute(ctx context.Context, input any) (any, error) {
	events, _ := input.(domain.Publisher)
	publish(events, domain.Event{
		Step:    s.name,
		Type:    domain.EventThinking,
		Content: s.message,
	})
	return nil, nil
}

func (s *NoopStep) Finalize(shared *domain.Shared, input, output any) (domain.Action, error) {
	return domain.ActionDone, nil
}
