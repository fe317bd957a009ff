package api

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Observer receives callbacks from the workflow engine for logging and metrics.
//
// Implementations should be fast and non-blocking; heavy work should be done
// asynchronously so as not to delay request handling.
type Observer interface {
	// OnWorkflowStarted is called when a session transitions from
	// not-started to step 1.
	OnWorkflowStarted(ctx context.Context, st State)

	// OnStepSaved is called after Advance writes field values into the
	// current step's submission.
	OnStepSaved(ctx context.Context, st State, step StepDefinition, submissionID string)

	// OnStepEntered is called whenever the position changes to a fillable
	// step, both moving forward and via GoBack.
	OnStepEntered(ctx context.Context, st State, step StepDefinition)

	// OnFieldsMapped is called after field mappings were applied while
	// leaving a step. keys holds the target keys that were actually set.
	OnFieldsMapped(ctx context.Context, st State, from, to StepDefinition, keys []string)

	// OnCompletionRefused is called when Advance at the final step was
	// refused because the listed required step positions are incomplete.
	OnCompletionRefused(ctx context.Context, st State, missing []int)

	// OnWorkflowCompleted is called when the session reaches the terminal
	// complete state.
	OnWorkflowCompleted(ctx context.Context, st State)

	// OnWorkflowRestarted is called when Restart returns the session to
	// the not-started state.
	OnWorkflowRestarted(ctx context.Context, st State)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnWorkflowStarted(ctx context.Context, st State) {}
func (NoopObserver) OnStepSaved(ctx context.Context, st State, step StepDefinition, submissionID string) {
}
func (NoopObserver) OnStepEntered(ctx context.Context, st State, step StepDefinition) {}
func (NoopObserver) OnFieldsMapped(ctx context.Context, st State, from, to StepDefinition, keys []string) {
}
func (NoopObserver) OnCompletionRefused(ctx context.Context, st State, missing []int) {}
func (NoopObserver) OnWorkflowCompleted(ctx context.Context, st State)                {}
func (NoopObserver) OnWorkflowRestarted(ctx context.Context, st State)                {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnWorkflowStarted(ctx context.Context, st State) {
	for _, o := range c.observers {
		o.OnWorkflowStarted(ctx, st)
	}
}

func (c *CompositeObserver) OnStepSaved(ctx context.Context, st State, step StepDefinition, submissionID string) {
	for _, o := range c.observers {
		o.OnStepSaved(ctx, st, step, submissionID)
	}
}

func (c *CompositeObserver) OnStepEntered(ctx context.Context, st State, step StepDefinition) {
	for _, o := range c.observers {
		o.OnStepEntered(ctx, st, step)
	}
}

func (c *CompositeObserver) OnFieldsMapped(ctx context.Context, st State, from, to StepDefinition, keys []string) {
	for _, o := range c.observers {
		o.OnFieldsMapped(ctx, st, from, to, keys)
	}
}

func (c *CompositeObserver) OnCompletionRefused(ctx context.Context, st State, missing []int) {
	for _, o := range c.observers {
		o.OnCompletionRefused(ctx, st, missing)
	}
}

func (c *CompositeObserver) OnWorkflowCompleted(ctx context.Context, st State) {
	for _, o := range c.observers {
		o.OnWorkflowCompleted(ctx, st)
	}
}

func (c *CompositeObserver) OnWorkflowRestarted(ctx context.Context, st State) {
	for _, o := range c.observers {
		o.OnWorkflowRestarted(ctx, st)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs session lifecycle events
// using the provided slog.Logger. If logger is nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) attrs(st State) []any {
	return []any{
		slog.String("workflow", st.WorkflowID),
		slog.String("actor", st.Actor.Key()),
		slog.Int("step", st.Step),
	}
}

func (o *LoggingObserver) OnWorkflowStarted(ctx context.Context, st State) {
	o.Logger.InfoContext(ctx, "workflow_started", o.attrs(st)...)
}

func (o *LoggingObserver) OnStepSaved(ctx context.Context, st State, step StepDefinition, submissionID string) {
	o.Logger.DebugContext(ctx, "step_saved", append(o.attrs(st),
		slog.String("form", step.FormID),
		slog.String("submission_id", submissionID),
	)...)
}

func (o *LoggingObserver) OnStepEntered(ctx context.Context, st State, step StepDefinition) {
	o.Logger.DebugContext(ctx, "step_entered", append(o.attrs(st),
		slog.String("form", step.FormID),
	)...)
}

func (o *LoggingObserver) OnFieldsMapped(ctx context.Context, st State, from, to StepDefinition, keys []string) {
	o.Logger.DebugContext(ctx, "fields_mapped", append(o.attrs(st),
		slog.String("from_form", from.FormID),
		slog.String("to_form", to.FormID),
		slog.Int("keys", len(keys)),
	)...)
}

func (o *LoggingObserver) OnCompletionRefused(ctx context.Context, st State, missing []int) {
	o.Logger.InfoContext(ctx, "completion_refused", append(o.attrs(st),
		slog.Any("missing_steps", missing),
	)...)
}

func (o *LoggingObserver) OnWorkflowCompleted(ctx context.Context, st State) {
	o.Logger.InfoContext(ctx, "workflow_completed", o.attrs(st)...)
}

func (o *LoggingObserver) OnWorkflowRestarted(ctx context.Context, st State) {
	o.Logger.InfoContext(ctx, "workflow_restarted", o.attrs(st)...)
}

// BasicMetrics collects simple counters across all sessions observed by one
// engine configuration. It implements Observer and can be combined with
// LoggingObserver via NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	workflowsStarted   atomic.Int64
	workflowsCompleted atomic.Int64
	completionsRefused atomic.Int64
	workflowsRestarted atomic.Int64
	stepsSaved         atomic.Int64
	fieldsMapped       atomic.Int64
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	WorkflowsStarted   int64
	WorkflowsCompleted int64
	CompletionsRefused int64
	WorkflowsRestarted int64
	StepsSaved         int64
	FieldsMapped       int64
}

func (m *BasicMetrics) OnWorkflowStarted(ctx context.Context, st State) {
	m.workflowsStarted.Add(1)
}

func (m *BasicMetrics) OnStepSaved(ctx context.Context, st State, step StepDefinition, submissionID string) {
	m.stepsSaved.Add(1)
}

func (m *BasicMetrics) OnFieldsMapped(ctx context.Context, st State, from, to StepDefinition, keys []string) {
	m.fieldsMapped.Add(int64(len(keys)))
}

func (m *BasicMetrics) OnCompletionRefused(ctx context.Context, st State, missing []int) {
	m.completionsRefused.Add(1)
}

func (m *BasicMetrics) OnWorkflowCompleted(ctx context.Context, st State) {
	m.workflowsCompleted.Add(1)
}

func (m *BasicMetrics) OnWorkflowRestarted(ctx context.Context, st State) {
	m.workflowsRestarted.Add(1)
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	return BasicMetricsSnapshot{
		WorkflowsStarted:   m.workflowsStarted.Load(),
		WorkflowsCompleted: m.workflowsCompleted.Load(),
		CompletionsRefused: m.completionsRefused.Load(),
		WorkflowsRestarted: m.workflowsRestarted.Load(),
		StepsSaved:         m.stepsSaved.Load(),
		FieldsMapped:       m.fieldsMapped.Load(),
	}
}
