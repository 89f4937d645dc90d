package domain

// EventType categorizes a progress event.
type EventType string

const (
	// EventThinking is coarse telemetry emitted when a step starts working.
	EventThinking EventType = "thinking"

	// EventContent is an incremental chunk of model output meant for
	// direct display (chat answers, streamed diff text).
	EventContent EventType = "content"

	// EventIntent reports the classifier's decision.
	EventIntent EventType = "intent"

	// EventScene carries the fully patched scene document.
	EventScene EventType = "scene"

	// EventSummary carries a change summary after a successful patch.
	EventSummary EventType = "summary"

	// EventError is the terminal event of a failed run.
	EventError EventType = "error"

	// EventDone is the terminal event of a completed run. The stream is
	// closed right after it.
	EventDone EventType = "done"
)

// Event is one entry in a run's progress stream. Events are append-only
// and delivered in emission order; consumers must not reorder them.
type Event struct {
	Step    string    `json:"step"`
	Type    EventType `json:"type"`
	Content any       `json:"content,omitempty"`
	Intent  string    `json:"intent,omitempty"`
}

// ChangeSummary is the payload of an EventSummary event.
type ChangeSummary struct {
	Hunks   int `json:"hunks"`
	Added   int `json:"lines_added"`
	Removed int `json:"lines_removed"`
}
