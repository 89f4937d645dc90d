package agent

import (
	"log/slog"

	"github.com/latticelabs/lattice/internal/flow"
	"github.com/latticelabs/lattice/internal/logging"
	"github.com/latticelabs/lattice/pkg/domain"
	"github.com/latticelabs/lattice/pkg/ports"
)

// NewFlow assembles the assistant flow:
//
//	intent_recognition --modify_scene--> modify_scene --apply_diff--> apply_diff
//	                   --modify_node--> modify_node
//	                   --generate_scene--> generate_scene
//	                   --generate_node--> generate_node
//	                   --chat--> chat
//
// Every leaf returns an action with no outgoing edge, which terminates
// the run. The table is validated before the first run.
func NewFlow(completer ports.Completer, logger *slog.Logger, hooks flow.Hooks) (*flow.Flow, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	steps := []flow.Step{
		NewIntentStep(completer, logger),
		NewModifySceneStep(completer, logger),
		NewNoopStep(StepModifyNode, "Modifying node execution started"),
		NewNoopStep(StepGenerateScene, "Generating scene execution started"),
		NewNoopStep(StepGenerateNode, "Generating node execution started"),
		NewChatStep(completer),
		NewApplyDiffStep(logger),
	}

	table := flow.Transitions{
		StepIntent: {
			domain.ActionModifyScene:   StepModifyScene,
			domain.ActionModifyNode:    StepModifyNode,
			domain.ActionGenerateScene: StepGenerateScene,
			domain.ActionGenerateNode:  StepGenerateNode,
			domain.ActionChat:          StepChat,
		},
		StepModifyScene: {
			domain.ActionApplyDiff: StepApplyDiff,
		},
	}

	return flow.New(StepIntent, steps, table,
		flow.WithLogger(logger),
		flow.WithHooks(hooks),
	)
}
