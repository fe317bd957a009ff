package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// eventRecordingObserver bridges Observer callbacks into an append-only
// EventStore, producing the filing-session history trail.
type eventRecordingObserver struct {
	store  EventStore
	logger *slog.Logger
}

// NewEventRecordingObserver returns an Observer that appends a FilingEvent
// for every session lifecycle callback. Append failures are logged and
// otherwise ignored: history is best-effort and must never fail a request.
// If logger is nil, slog.Default() is used.
func NewEventRecordingObserver(store EventStore, logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &eventRecordingObserver{store: store, logger: logger}
}

func (o *eventRecordingObserver) record(ctx context.Context, st State, typ FilingEventType, step int, formID, detail string) {
	ev := FilingEvent{
		ActorKey:   st.Actor.Key(),
		WorkflowID: st.WorkflowID,
		At:         time.Now(),
		Type:       typ,
		Step:       step,
		FormID:     formID,
		Detail:     detail,
	}
	if err := o.store.Append(ctx, ev); err != nil {
		o.logger.WarnContext(ctx, "filing_event_append_failed",
			slog.String("workflow", st.WorkflowID),
			slog.String("type", string(typ)),
			slog.Any("error", err),
		)
	}
}

func (o *eventRecordingObserver) OnWorkflowStarted(ctx context.Context, st State) {
	o.record(ctx, st, EventWorkflowStarted, st.Step, "", "")
}

func (o *eventRecordingObserver) OnStepSaved(ctx context.Context, st State, step StepDefinition, submissionID string) {
	o.record(ctx, st, EventStepSaved, step.Position, step.FormID, "")
}

func (o *eventRecordingObserver) OnStepEntered(ctx context.Context, st State, step StepDefinition) {
	o.record(ctx, st, EventStepEntered, step.Position, step.FormID, "")
}

func (o *eventRecordingObserver) OnFieldsMapped(ctx context.Context, st State, from, to StepDefinition, keys []string) {
	o.record(ctx, st, EventFieldsMapped, to.Position, to.FormID, strings.Join(keys, ","))
}

func (o *eventRecordingObserver) OnCompletionRefused(ctx context.Context, st State, missing []int) {
	o.record(ctx, st, EventCompletionRefused, st.Step, "", fmt.Sprint(missing))
}

func (o *eventRecordingObserver) OnWorkflowCompleted(ctx context.Context, st State) {
	o.record(ctx, st, EventWorkflowCompleted, st.Step, "", "")
}

func (o *eventRecordingObserver) OnWorkflowRestarted(ctx context.Context, st State) {
	o.record(ctx, st, EventWorkflowRestarted, st.Step, "", "")
}
