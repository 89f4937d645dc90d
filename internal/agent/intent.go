package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/latticelabs/lattice/pkg/domain"
	"github.com/latticelabs/lattice/pkg/ports"
)

// Step names. They appear verbatim in progress events and metrics labels.
const (
	StepIntent        = "intent_recognition"
	StepModifyScene   = "modify_scene"
	StepModifyNode    = "modify_node"
	StepGenerateScene = "generate_scene"
	StepGenerateNode  = "generate_node"
	StepChat          = "chat"
	StepApplyDiff     = "apply_diff"
)

// IntentStep classifies the user query into one of the assistant intents.
// Its action space equals the intent enumeration, so the classifier's
// answer routes the flow directly.
type IntentStep struct {
	completer ports.Completer
	logger    *slog.Logger
}

func NewIntentStep(completer ports.Completer, logger *slog.Logger) *IntentStep {
	return &IntentStep{completer: completer, logger: logger}
}

func (s *IntentStep) Name() string { return StepIntent }

type intentInput struct {
	model  string
	prompt string
	query  string
	events domain.Publisher
}

type intentResult struct {
	action domain.Action
}

func (s *IntentStep) Prepare(shared *domain.Shared) (any, error) {
	if shared.UserQuery == "" {
		return nil, fmt.Errorf("empty user query")
	}
	return intentInput{
		model:  shared.Model,
		prompt: fmt.Sprintf(intentPrompt, shared.UserQuery),
		query:  shared.UserQuery,
		events: shared.Events,
	}, nil
}

func (s *IntentStep) Execute(ctx context.Context, input any) (any, error) {
	in := input.(intentInput)

	publish(in.events, domain.Event{
		Step:    StepIntent,
		Type:    domain.EventThinking,
		Content: fmt.Sprintf("Starting intent recognition for user query:\n%s", in.query),
	})

	// The classifier response is buffered, not forwarded: only the
	// decision is user-visible.
	raw, err := consume(ctx, s.completer, in.model, in.prompt, nil)
	if err != nil {
		return nil, err
	}

	action := parseClassification(raw)
	s.logger.Debug("intent classified", "intent", action)

	publish(in.events, domain.Event{
		Step:    StepIntent,
		Type:    domain.EventIntent,
		Content: fmt.Sprintf("next_action: %s", action),
		Intent:  string(action),
	})

	return intentResult{action: action}, nil
}

// Fallback routes to chat when the classification call itself fails, so
// the flow always has somewhere to go.
func (s *IntentStep) Fallback(err error) (any, error) {
	s.logger.Warn("intent classification failed, falling back to chat", "err", err)
	return intentResult{action: domain.ActionChat}, nil
}

func (s *IntentStep) Finalize(shared *domain.Shared, input, output any) (domain.Action, error) {
	res := output.(intentResult)
	shared.Intent = res.action
	return res.action, nil
}
