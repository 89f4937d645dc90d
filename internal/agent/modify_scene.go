package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/latticelabs/lattice/pkg/diff"
	"github.com/latticelabs/lattice/pkg/domain"
	"github.com/latticelabs/lattice/pkg/ports"
)

// ModifySceneStep asks the model for a search/replace diff against the
// original scene document and stores the raw diff text for the apply
// step. The model's chunks are forwarded incrementally so the editor can
// show the diff as it is generated.
type ModifySceneStep struct {
	completer ports.Completer
	logger    *slog.Logger
}

func NewModifySceneStep(completer ports.Completer, logger *slog.Logger) *ModifySceneStep {
	return &ModifySceneStep{completer: completer, logger: logger}
}

func (s *ModifySceneStep) Name() string { return StepModifyScene }

type modifySceneInput struct {
	model  string
	prompt string
	events domain.Publisher
}

func (s *ModifySceneStep) Prepare(shared *domain.Shared) (any, error) {
	meta, err := shared.SceneMetadata()
	if err != nil {
		return nil, err
	}
	if meta.SceneData == "" {
		return nil, fmt.Errorf("missing scene_data in request metadata")
	}
	return modifySceneInput{
		model:  shared.Model,
		prompt: fmt.Sprintf(modifyScenePrompt, shared.UserQuery, meta.SceneData, meta.Catalog, meta.Guidelines),
		events: shared.Events,
	}, nil
}

func (s *ModifySceneStep) Execute(ctx context.Context, input any) (any, error) {
	in := input.(modifySceneInput)

	publish(in.events, domain.Event{
		Step:    StepModifyScene,
		Type:    domain.EventThinking,
		Content: "Modifying scene execution started",
	})

	raw, err := consume(ctx, s.completer, in.model, in.prompt, func(chunk string) {
		publish(in.events, domain.Event{
			Step:    StepModifyScene,
			Type:    domain.EventContent,
			Content: chunk,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("scene diff generated", "bytes", len(raw))
	return raw, nil
}

func (s *ModifySceneStep) Finalize(shared *domain.Shared, input, output any) (domain.Action, error) {
	raw := output.(string)
	shared.DiffContent = diff.StripFences(raw)
	return domain.ActionApplyDiff, nil
}
