package domain

// Action is the string outcome of a step's finalize phase. It selects the
// next step via the flow's transition table. An action with no outgoing
// edge terminates the run; that is normal completion, not an error.
type Action string

// Intent actions produced by the classifier. The classifier's action space
// is exactly the intent enumeration, so these double as intent values.
const (
	ActionModifyScene   Action = "modify_scene"
	ActionModifyNode    Action = "modify_node"
	ActionGenerateScene Action = "generate_scene"
	ActionGenerateNode  Action = "generate_node"
	ActionChat          Action = "chat"
)

// Control actions.
const (
	// ActionApplyDiff routes a modification step's output into the diff
	// application step.
	ActionApplyDiff Action = "apply_diff"

	// ActionDone is the conventional terminal action. It carries no
	// transition, so returning it ends the flow.
	ActionDone Action = "done"
)

// Intents lists the valid classifier outcomes in declaration order.
var Intents = []Action{
	ActionModifyScene,
	ActionModifyNode,
	ActionGenerateScene,
	ActionGenerateNode,
	ActionChat,
}

// ValidIntent reports whether a is one of the classifier intents.
func ValidIntent(a Action) bool {
	for _, intent := range Intents {
		if a == intent {
			return true
		}
	}
	return false
}
