package api

import "errors"

// Predefined error types.
//
// Callers should test for these with errors.Is; implementations wrap them
// with additional context via fmt.Errorf and %w.
var (
	// ErrWorkflowNotFound is returned when no workflow definition exists
	// for the requested workflow id.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrInvalidActor is returned when an actor has neither a user id nor
	// a session token, or has both. This indicates an integration bug, not
	// a user-recoverable condition.
	ErrInvalidActor = errors.New("invalid actor: exactly one of user id or session token must be set")

	// ErrUnknownForm is returned when a step references a form the
	// submission store cannot resolve.
	ErrUnknownForm = errors.New("unknown form")

	// ErrRequiredStepsIncomplete is returned when the caller tries to
	// finish a workflow while one or more required steps still have an
	// incomplete submission. This is the only error that is part of
	// normal control flow: the engine stays at the final step and the
	// caller re-prompts the user.
	ErrRequiredStepsIncomplete = errors.New("required steps incomplete")

	// ErrMalformedState is returned by DecodeState when a serialized
	// engine state blob does not satisfy the State schema.
	ErrMalformedState = errors.New("malformed engine state")

	// ErrSubmissionNotFound is returned when a submission id cannot be
	// resolved by a submission store.
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrSessionNotFound is returned by session stores when no state blob
	// exists for the requested key.
	ErrSessionNotFound = errors.New("session not found")

	// Definition validation errors.

	// ErrWorkflowIDRequired indicates that a workflow definition id is required.
	ErrWorkflowIDRequired = errors.New("workflow id is required")
	// ErrStepRequired indicates that a workflow must have at least one step.
	ErrStepRequired = errors.New("workflow must have at least one step")
	// ErrFormIDRequired indicates that a step must reference a form.
	ErrFormIDRequired = errors.New("step form id is required")
	// ErrStepPositionsNotContiguous indicates that step positions must be
	// contiguous and strictly increasing from 1.
	ErrStepPositionsNotContiguous = errors.New("step positions must be contiguous from 1")
	// ErrFieldMappingIncomplete indicates that a field mapping is missing
	// its source or target key.
	ErrFieldMappingIncomplete = errors.New("field mapping requires both from and to keys")
)
