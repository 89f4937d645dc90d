package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Publisher is the write side of a run's progress stream. The shared
// context carries it so steps can emit events while executing.
type Publisher interface {
	Publish(Event)
}

// Shared is the mutable per-run context threaded by reference through
// every step. It is exclusively owned by a single flow run: steps of the
// same run execute strictly sequentially, so no locking is needed. Two
// concurrent runs must never share an instance.
type Shared struct {
	// Model is the model selector forwarded verbatim to the completer.
	Model string

	// UserQuery is the raw user request.
	UserQuery string

	// Intent is set by the classifier step.
	Intent Action

	// DiffContent is the raw diff text produced by a modification step,
	// consumed by the apply step.
	DiffContent string

	// Scene is the patched scene document, set by the apply step.
	Scene string

	// Metadata carries caller-provided data the core treats as opaque:
	// the original scene document, the node catalog and the authoring
	// guidelines. It is passed through verbatim into prompts.
	Metadata map[string]any

	// Events is the progress stream for this run.
	Events Publisher
}

// SceneMetadata is the typed view of the caller metadata used by the
// scene modification step.
type SceneMetadata struct {
	SceneData  string `mapstructure:"scene_data"`
	Catalog    string `mapstructure:"catalog"`
	Guidelines string `mapstructure:"scene_generation_guidelines"`
}

// SceneMetadata decodes the opaque metadata map into its typed form.
// Unknown keys are ignored; missing keys decode to empty strings.
func (s *Shared) SceneMetadata() (SceneMetadata, error) {
	var meta SceneMetadata
	if err := mapstructure.Decode(s.Metadata, &meta); err != nil {
		return SceneMetadata{}, fmt.Errorf("decode scene metadata: %w", err)
	}
	return meta, nil
}

// Publish forwards an event to the run's stream, if one is attached.
// Steps call this instead of touching Events directly so that headless
// runs (no stream) stay valid.
func (s *Shared) Publish(ev Event) {
	if s.Events != nil {
		s.Events.Publish(ev)
	}
}
