// Package guidedflow provides an embeddable workflow step engine for
// guided, multi-form filing flows, originally built for self-represented
// litigants working through California small claims court forms.
//
// Guidedflow tracks a user's position across an ordered sequence of form
// steps, persists partial progress between requests, and supports
// forward/back/restart navigation with completion gating. It runs fully in
// Go, supports multiple persistence backends, and integrates cleanly into
// existing web applications.
//
// # Core Concepts
//
// The programming model is intentionally small:
//
//  1. WorkflowDefinition
//  2. Engine
//  3. SubmissionStore
//  4. SessionRunner
//  5. Observer
//
// # WorkflowDefinition
//
// A workflow is an ordered list of steps, each referencing one court form
// and optionally flagged required or carrying field mappings. Definitions
// come from the fluent WorkflowBuilder:
//
//	flow := guidedflow.New("small-claims").
//	    RequiredStep("sc100").
//	    ShareField("plaintiff_name").
//	    Step("sc100a").
//	    RequiredStep("sc103")
//
// or from YAML files loaded by a definition store (NewDefinitionDirStore,
// NewDefinitionFSStore), validated on load and cached with an explicit
// Reload for development.
//
// # Engine
//
// The Engine is the per-session state machine: NotStarted, InProgress at a
// 1-based step position, or Complete. It is constructed fresh from a
// serialized State at the start of each logical operation and serialized
// back out at the end; nothing lives in memory between requests.
//
// Navigation clamps rather than fails: GoBack at step 1 is a no-op, and
// GoBack after completion re-enters the last step for post-completion
// edits. Completion is gated: Advance at the final step returns
// ErrRequiredStepsIncomplete (the one error that is part of normal control
// flow) until every required step's submission is complete.
//
// When a step carries field mappings, Advance copies the mapped values into
// the next step's submission so users do not re-type shared information.
// A value the user already entered on the target step is never overwritten.
//
// # SubmissionStore
//
// Submissions hold the field values entered for one form, owned by either
// a registered user or an anonymous session (the Actor). Stores implement
// a find-or-create contract keyed on (form, actor, workflow): in-memory
// for tests, SQLite for embedded durability, Postgres for shared
// deployments. Idempotency is enforced with a uniqueness constraint at the
// storage boundary, not with engine-level locking.
//
// # SessionRunner
//
// SessionRunner binds a SessionStore to the engine and exposes the surface
// a request handler calls: Start, Advance, GoBack, Restart, Progress,
// CurrentSubmission, IsComplete. Each call is one load-operate-persist
// round trip. NewSQLiteBundle wires runner and durable stores over a
// single database.
//
// # Observer
//
// Observers receive session lifecycle callbacks for logging and metrics:
// LoggingObserver (log/slog), BasicMetrics (atomic counters),
// PrometheusObserver, and an event-recording observer that appends an
// audit trail to an EventStore. Combine them with NewCompositeObserver.
//
// For examples, see the /examples directory or the project README.
package guidedflow
