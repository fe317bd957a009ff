package api

import (
	"context"
	"iter"
)

// DefinitionStore loads and exposes validated, ordered step lists for named
// workflows. Implementations cache definitions for the process lifetime;
// Reload re-reads the backing source (a no-op for in-memory registries).
type DefinitionStore interface {
	// Load returns the definition for a workflow id, or ErrWorkflowNotFound.
	Load(workflowID string) (WorkflowDefinition, error)

	// Steps returns a restartable iterator over the workflow's steps in
	// position order. An unknown workflow id yields an empty sequence.
	Steps(workflowID string) iter.Seq[StepDefinition]

	// StepAt returns the step at a 1-based position; ok=false for
	// out-of-range positions or unknown workflows.
	StepAt(workflowID string, position int) (StepDefinition, bool)

	// List returns the known workflow ids in lexical order.
	List() []string

	// Reload re-reads definitions from the backing source.
	Reload() error
}

// SubmissionStore maps (form, actor, workflow scope) to exactly one
// submission, creating it on first access.
//
// FindOrCreate must be idempotent: repeated calls with the same inputs
// return the same logical submission, and no duplicate is ever created for
// the same triple. Durable implementations enforce this with a uniqueness
// constraint at the storage boundary; the engine does no locking of its own.
type SubmissionStore interface {
	// FindOrCreate returns the submission for (formID, actor, scope),
	// creating an empty draft on first access. It returns ErrInvalidActor
	// for an invalid actor and ErrUnknownForm when the store cannot
	// resolve the form.
	FindOrCreate(ctx context.Context, formID string, actor Actor, scope string) (*Submission, error)

	// Get returns a submission by id, or ErrSubmissionNotFound.
	Get(ctx context.Context, id string) (*Submission, error)

	// UpdateFields merges the given field values into the submission.
	// Existing keys not present in fields are left untouched.
	UpdateFields(ctx context.Context, id string, fields map[string]string) error

	// MarkComplete records the externally determined completeness of the
	// submission's form.
	MarkComplete(ctx context.Context, id string, complete bool) error
}

// EventStore is an append-only history store for filing-session events.
type EventStore interface {
	Append(ctx context.Context, ev FilingEvent) error
	List(ctx context.Context, actorKey, workflowID string) ([]FilingEvent, error)
}

// SessionStore persists opaque engine-state blobs keyed per actor and
// workflow. Writes are last-writer-wins; there is no merge.
type SessionStore interface {
	// Load returns the blob for a key, or ErrSessionNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
}
