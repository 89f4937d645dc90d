package flow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/latticelabs/lattice/internal/logging"
	"github.com/latticelabs/lattice/pkg/domain"
)

// StepEvent describes one step visit for lifecycle hooks.
type StepEvent struct {
	Step     string
	Action   domain.Action
	Err      error
	Duration time.Duration
}

// Hooks are optional callbacks fed by the executor, used for logging and
// metrics without coupling the engine to either.
type Hooks struct {
	OnStepEnter func(context.Context, *StepEvent)
	OnStepLeave func(context.Context, *StepEvent)
	OnStepError func(context.Context, *StepEvent)
}

// Flow is a validated, immutable step graph ready to run. One Flow value
// serves any number of sequential or concurrent runs; all per-run state
// lives in the domain.Shared instance passed to Run.
type Flow struct {
	entry  string
	steps  map[string]Step
	table  Transitions
	hooks  Hooks
	logger *slog.Logger
}

// Option configures a Flow.
type Option func(*Flow)

// WithLogger sets a structured logger for the executor.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) {
		f.logger = logger
	}
}

// WithHooks registers lifecycle hooks.
func WithHooks(hooks Hooks) Option {
	return func(f *Flow) {
		f.hooks = hooks
	}
}

// New builds a Flow from its steps and transition table, validating the
// graph before any run can start: the entry step must be registered and
// every edge must reference registered steps.
func New(entry string, steps []Step, table Transitions, opts ...Option) (*Flow, error) {
	registry := make(map[string]Step, len(steps))
	for _, step := range steps {
		if step.Name() == "" {
			return nil, fmt.Errorf("step with empty name")
		}
		if _, dup := registry[step.Name()]; dup {
			return nil, fmt.Errorf("duplicate step %q", step.Name())
		}
		registry[step.Name()] = step
	}

	if _, ok := registry[entry]; !ok {
		return nil, fmt.Errorf("entry step %q is not a registered step", entry)
	}
	if err := table.validate(registry); err != nil {
		return nil, err
	}

	f := &Flow{
		entry:  entry,
		steps:  registry,
		table:  table,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Run drives the flow from the entry step until an action has no outgoing
// edge. Steps run strictly sequentially: a step's finalize action decides
// the next step, and later steps may depend on context written earlier.
//
// Step failures are caught here. If the failing step implements Fallback
// the run continues on the fallback result; otherwise the failure is
// published as a terminal error event on the run's stream and returned.
func (f *Flow) Run(ctx context.Context, shared *domain.Shared) error {
	name := f.entry

	for {
		step := f.steps[name]
		f.fire(f.hooks.OnStepEnter, ctx, &StepEvent{Step: name})

		start := time.Now()
		action, err := f.visit(ctx, step, shared)
		elapsed := time.Since(start)

		if err != nil {
			f.fire(f.hooks.OnStepError, ctx, &StepEvent{Step: name, Err: err, Duration: elapsed})
			f.logger.Error("step failed", "step", name, "err", err)
			shared.Publish(domain.Event{
				Step:    name,
				Type:    domain.EventError,
				Content: err.Error(),
			})
			return fmt.Errorf("step %s: %w", name, err)
		}

		f.fire(f.hooks.OnStepLeave, ctx, &StepEvent{Step: name, Action: action, Duration: elapsed})
		f.logger.Debug("step finished", "step", name, "action", action, "duration", elapsed)

		next, ok := f.table.next(name, action)
		if !ok {
			// No edge for this action: normal termination.
			return nil
		}
		name = next
	}
}

// visit runs one step through its three phases.
func (f *Flow) visit(ctx context.Context, step Step, shared *domain.Shared) (domain.Action, error) {
	input, err := step.Prepare(shared)
	if err != nil {
		return "", fmt.Errorf("prepare: %w", err)
	}

	output, err := step.Execute(ctx, input)
	if err != nil {
		fb, recoverable := step.(Fallback)
		if !recoverable {
			return "", fmt.Errorf("execute: %w", err)
		}
		f.logger.Warn("step execute failed, using fallback", "step", step.Name(), "err", err)
		output, err = fb.Fallback(err)
		if err != nil {
			return "", fmt.Errorf("execute fallback: %w", err)
		}
	}

	action, err := step.Finalize(shared, input, output)
	if err != nil {
		return "", fmt.Errorf("finalize: %w", err)
	}
	return action, nil
}

func (f *Flow) fire(hook func(context.Context, *StepEvent), ctx context.Context, ev *StepEvent) {
	if hook != nil {
		hook(ctx, ev)
	}
}
