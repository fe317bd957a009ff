package api

import (
	"context"
	"time"
)

// Status represents the lifecycle state of a filing session.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusComplete   Status = "COMPLETE"
)

// Engine is the caller-facing surface of the workflow step engine.
//
// An Engine instance is cheap: it is constructed fresh from a serialized
// State at the start of each logical operation and its new State is
// persisted at the end. There is no long-lived engine shared across
// concurrent callers; two browser tabs racing on the same session resolve
// by last-writer-wins at the session store.
type Engine interface {
	// Start moves a not-yet-started session to step 1 and resolves the
	// step-1 submission. It is a no-op on a session already underway.
	Start(ctx context.Context) error

	// Advance saves the given field values into the current step's
	// submission and moves forward one step, applying the current step's
	// field mappings to the next step's submission. At the final step it
	// instead attempts to complete the workflow and returns
	// ErrRequiredStepsIncomplete (leaving the position unchanged) if any
	// required step's submission is not yet complete.
	Advance(ctx context.Context, fields map[string]string) error

	// GoBack moves one step backwards. It is a no-op at step 1; from the
	// complete state it re-enters the last fillable step, modeling "edit
	// after completion".
	GoBack(ctx context.Context) error

	// Restart returns the session to the not-started state. Previously
	// created submissions are kept: re-entering the workflow with the same
	// actor finds them again.
	Restart(ctx context.Context) error

	// Status derives the lifecycle state from the current position.
	Status() Status

	// Progress reports current step, total steps, and percent complete.
	Progress() Progress

	// CurrentStep returns the definition of the step the user is on.
	// A not-yet-started session reports step 1; ok is false once the
	// workflow is complete.
	CurrentStep() (StepDefinition, bool)

	// CurrentSubmission resolves (creating if needed) the submission
	// backing the current step. The resolve is explicit on every call;
	// any caching belongs to the submission store.
	CurrentSubmission(ctx context.Context) (*Submission, error)

	// IsComplete reports whether the session has advanced past the last
	// step and every required step's submission is complete.
	IsComplete(ctx context.Context) (bool, error)

	// State returns a deep copy of the serializable engine state.
	State() State
}

// RetryPolicy controls how a storage operation is retried by the retrying
// submission-store decorator. MaxAttempts includes the first attempt; a
// zero Backoff retries immediately. The engine itself never retries.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}
