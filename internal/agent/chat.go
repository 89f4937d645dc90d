package agent

import (
	"context"
	"fmt"

	"github.com/latticelabs/lattice/pkg/domain"
	"github.com/latticelabs/lattice/pkg/ports"
)

// ChatStep streams a conversational answer, forwarding every chunk as its
// own event instead of buffering. It is terminal: its action has no
// outgoing transition.
type ChatStep struct {
	completer ports.Completer
}

func NewChatStep(completer ports.Completer) *ChatStep {
	return &ChatStep{completer: completer}
}

func (s *ChatStep) Name() string { return StepChat }

type chatInput struct {
	model  string
	prompt string
	events domain.Publisher
}

func (s *ChatStep) Prepare(shared *domain.Shared) (any, error) {
	return chatInput{
		model:  shared.Model,
		prompt: fmt.Sprintf(chatPrompt, shared.UserQuery),
		events: shared.Events,
	}, nil
}

func (s *ChatStep) Execute(ctx context.Context, input any) (any, error) {
	in := input.(chatInput)

	_, err := consume(ctx, s.completer, in.model, in.prompt, func(chunk string) {
		publish(in.events, domain.Event{
			Step:    StepChat,
			Type:    domain.EventContent,
			Content: chunk,
		})
	})
	return nil, err
}

func (s *ChatStep) Finalize(shared *domain.Shared, input, output any) (domain.Action, error) {
	return domain.ActionDone, nil
}
