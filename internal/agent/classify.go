package agent

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/latticelabs/lattice/pkg/domain"
)

type classification struct {
	NextAction string `yaml:"next_action"`
	Reason     string `yaml:"reason"`
}

// parseClassification extracts the classifier's chosen intent from raw
// model output. Malformed YAML, a missing next_action field or an unknown
// value all route to chat: the flow must always have a valid route, so
// classification failure is recoverable by definition, never an error.
func parseClassification(raw string) domain.Action {
	cleaned := strings.TrimSpace(raw)

	if rest, ok := strings.CutPrefix(cleaned, "```yaml"); ok {
		cleaned = strings.TrimSpace(rest)
	} else if rest, ok := strings.CutPrefix(cleaned, "```yml"); ok {
		cleaned = strings.TrimSpace(rest)
	}
	if rest, ok := strings.CutSuffix(cleaned, "```"); ok {
		cleaned = strings.TrimSpace(rest)
	}

	// Some models double-escape newlines inside the fenced block.
	cleaned = strings.ReplaceAll(cleaned, `\n`, "\n")

	var result classification
	if err := yaml.Unmarshal([]byte(cleaned), &result); err != nil {
		return domain.ActionChat
	}

	action := domain.Action(strings.TrimSpace(result.NextAction))
	if !domain.ValidIntent(action) {
		return domain.ActionChat
	}
	return action
}
