package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/latticelabs/lattice/pkg/diff"
	"github.com/latticelabs/lattice/pkg/domain"
)

// ApplyDiffStep commits the generated diff into the scene document. The
// patched scene is emitted once, buffered, after the whole diff applied;
// a change summary event follows. A search block that cannot be located
// is fatal to the run and leaves no partial patch behind.
type ApplyDiffStep struct {
	logger *slog.Logger
}

func NewApplyDiffStep(logger *slog.Logger) *ApplyDiffStep {
	return &ApplyDiffStep{logger: logger}
}

func (s *ApplyDiffStep) Name() string { return StepApplyDiff }

type applyInput struct {
	diffText string
	scene    string
	events   domain.Publisher
}

type applyResult struct {
	patched string
	summary domain.ChangeSummary
}

func (s *ApplyDiffStep) Prepare(shared *domain.Shared) (any, error) {
	if shared.DiffContent == "" {
		return nil, fmt.Errorf("no diff content to apply")
	}
	meta, err := shared.SceneMetadata()
	if err != nil {
		return nil, err
	}
	if meta.SceneData == "" {
		return nil, fmt.Errorf("missing scene_data in request metadata")
	}
	return applyInput{
		diffText: shared.DiffContent,
		scene:    meta.SceneData,
		events:   shared.Events,
	}, nil
}

func (s *ApplyDiffStep) Execute(ctx context.Context, input any) (any, error) {
	in := input.(applyInput)

	hunks, err := diff.Parse(diff.StripFences(in.diffText))
	if err != nil {
		return nil, err
	}

	patched, err := diff.ApplyHunks(in.scene, hunks)
	if err != nil {
		return nil, err
	}

	sum := diff.Summarize(in.scene, patched)
	summary := domain.ChangeSummary{
		Hunks:   len(hunks),
		Added:   sum.Added,
		Removed: sum.Removed,
	}
	s.logger.Debug("diff applied",
		"hunks", summary.Hunks,
		"lines_added", summary.Added,
		"lines_removed", summary.Removed,
	)

	publish(in.events, domain.Event{
		Step:    StepApplyDiff,
		Type:    domain.EventScene,
		Content: patched,
	})
	publish(in.events, domain.Event{
		Step:    StepApplyDiff,
		Type:    domain.EventSummary,
		Content: summary,
	})

	return applyResult{patched: patched, summary: summary}, nil
}

func (s *ApplyDiffStep) Finalize(shared *domain.Shared, input, output any) (domain.Action, error) {
	res := output.(applyResult)
	shared.Scene = res.patched
	return domain.ActionDone, nil
}
