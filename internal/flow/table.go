package flow

import (
	"fmt"

	"github.com/latticelabs/lattice/pkg/domain"
)

// Always is the wildcard action: an edge keyed by it matches any action
// that has no exact edge of its own.
const Always = domain.Action("*")

// Transitions maps (source step, action) to the target step name. It is
// built once at flow construction and immutable during runs. At most one
// target per pair is possible by construction; an action with no edge
// terminates the flow.
type Transitions map[string]map[domain.Action]string

// next resolves the target for an action, preferring an exact edge over
// the wildcard. ok=false means the flow terminates.
func (t Transitions) next(step string, action domain.Action) (string, bool) {
	edges, ok := t[step]
	if !ok {
		return "", false
	}
	if target, ok := edges[action]; ok {
		return target, true
	}
	target, ok := edges[Always]
	return target, ok
}

// validate fails fast on dangling edges so a malformed table never
// reaches a run.
func (t Transitions) validate(steps map[string]Step) error {
	for source, edges := range t {
		if _, ok := steps[source]; !ok {
			return fmt.Errorf("transition source %q is not a registered step", source)
		}
		for action, target := range edges {
			if _, ok := steps[target]; !ok {
				return fmt.Errorf("transition %s --%s--> %s: target is not a registered step", source, action, target)
			}
		}
	}
	return nil
}
