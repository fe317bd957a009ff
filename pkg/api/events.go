package api

import "time"

// FilingEventType identifies a filing-session history event.
type FilingEventType string

const (
	EventWorkflowStarted   FilingEventType = "workflow.started"
	EventWorkflowCompleted FilingEventType = "workflow.completed"
	EventWorkflowRestarted FilingEventType = "workflow.restarted"

	EventStepEntered       FilingEventType = "step.entered"
	EventStepSaved         FilingEventType = "step.saved"
	EventFieldsMapped      FilingEventType = "fields.mapped"
	EventCompletionRefused FilingEventType = "completion.refused"
)

// FilingEvent is a minimal append-only history record for audit/debugging.
// It is intentionally small and stable; funnel analysis and other
// aggregation is layered outside this module.
type FilingEvent struct {
	ActorKey   string
	WorkflowID string
	At         time.Time
	Type       FilingEventType

	// Optional context.
	Step   int
	FormID string

	// Small, human-oriented details (e.g. refused step positions).
	// Keep this low-volume: do NOT dump field values here.
	Detail string
}
