package domain

import "time"

// JobStatus is the terminal status of a background flow run.
type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job is the durable record of a flow run. Only terminal state is
// persisted; live progress flows through the event stream instead.
type Job struct {
	ID         string     `json:"id"`
	Status     JobStatus  `json:"status"`
	Model      string     `json:"model"`
	UserQuery  string     `json:"user_query"`
	Intent     string     `json:"intent,omitempty"`
	Scene      string     `json:"scene,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Sealed holds the encrypted payload when a store middleware
	// encrypts records at rest. Empty for plain records.
	Sealed string `json:"sealed,omitempty"`
}

// Request is the caller's input to a flow run.
type Request struct {
	Model     string         `json:"model"`
	UserQuery string         `json:"user_query"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}
