package guidedflow

import (
	"context"
	"errors"
)

// SessionRunner binds a SessionStore to the engine: each operation loads
// the caller's serialized state, constructs a fresh engine, performs one
// state-machine operation, and persists the new state.
//
// This mirrors how a request handler uses the engine: no engine instance
// outlives a single operation. Concurrent operations on the same
// (actor, workflow) pair, say two browser tabs, are resolved by
// last-writer-wins at the session store; there is no merge.
//
// Typical usage:
//
//	runner := guidedflow.NewSessionRunner(cfg, sessions)
//	actor := guidedflow.NewAnonymousActor()
//
//	p, _ := runner.Start(ctx, "small-claims", actor)
//	p, _ = runner.Advance(ctx, "small-claims", actor, map[string]string{"plaintiff_name": "Jane Roe"})
type SessionRunner struct {
	cfg      Config
	sessions SessionStore
}

// NewSessionRunner constructs a SessionRunner over the given engine
// configuration and session store.
func NewSessionRunner(cfg Config, sessions SessionStore) *SessionRunner {
	return &SessionRunner{cfg: cfg, sessions: sessions}
}

func sessionKey(workflowID string, actor Actor) string {
	return actor.Key() + "/" + workflowID
}

// load resumes an engine from the stored blob, or creates a fresh one when
// the actor has no session for this workflow yet.
func (r *SessionRunner) load(ctx context.Context, workflowID string, actor Actor) (Engine, error) {
	blob, err := r.sessions.Load(ctx, sessionKey(workflowID, actor))
	if errors.Is(err, ErrSessionNotFound) {
		return NewEngine(r.cfg, workflowID, actor)
	}
	if err != nil {
		return nil, err
	}
	return ResumeEngineFromBlob(r.cfg, blob)
}

func (r *SessionRunner) save(ctx context.Context, workflowID string, actor Actor, eng Engine) error {
	blob, err := EncodeState(eng.State())
	if err != nil {
		return err
	}
	return r.sessions.Save(ctx, sessionKey(workflowID, actor), blob)
}

// do runs one engine operation and persists the resulting state.
// A refused completion still persists: field values were saved and
// submission ids may have been recorded even though the position is
// unchanged.
func (r *SessionRunner) do(ctx context.Context, workflowID string, actor Actor, op func(Engine) error) error {
	eng, err := r.load(ctx, workflowID, actor)
	if err != nil {
		return err
	}

	opErr := op(eng)
	if opErr != nil && !errors.Is(opErr, ErrRequiredStepsIncomplete) {
		return opErr
	}
	if err := r.save(ctx, workflowID, actor, eng); err != nil {
		return err
	}
	return opErr
}

// Start enters the workflow (a no-op if already underway) and returns the
// resulting progress.
func (r *SessionRunner) Start(ctx context.Context, workflowID string, actor Actor) (Progress, error) {
	var p Progress
	err := r.do(ctx, workflowID, actor, func(eng Engine) error {
		if err := eng.Start(ctx); err != nil {
			return err
		}
		p = eng.Progress()
		return nil
	})
	return p, err
}

// Advance saves the given field values and moves forward one step. On
// ErrRequiredStepsIncomplete the returned progress reflects the unchanged
// position and the error is returned for the caller to re-prompt the user.
func (r *SessionRunner) Advance(ctx context.Context, workflowID string, actor Actor, fields map[string]string) (Progress, error) {
	var p Progress
	err := r.do(ctx, workflowID, actor, func(eng Engine) error {
		advErr := eng.Advance(ctx, fields)
		p = eng.Progress()
		return advErr
	})
	return p, err
}

// GoBack moves one step backwards.
func (r *SessionRunner) GoBack(ctx context.Context, workflowID string, actor Actor) (Progress, error) {
	var p Progress
	err := r.do(ctx, workflowID, actor, func(eng Engine) error {
		if err := eng.GoBack(ctx); err != nil {
			return err
		}
		p = eng.Progress()
		return nil
	})
	return p, err
}

// Restart forgets the actor's place in the workflow. Submissions are kept.
func (r *SessionRunner) Restart(ctx context.Context, workflowID string, actor Actor) error {
	return r.do(ctx, workflowID, actor, func(eng Engine) error {
		return eng.Restart(ctx)
	})
}

// Progress reports the actor's progress without mutating anything.
func (r *SessionRunner) Progress(ctx context.Context, workflowID string, actor Actor) (Progress, error) {
	eng, err := r.load(ctx, workflowID, actor)
	if err != nil {
		return Progress{}, err
	}
	return eng.Progress(), nil
}

// CurrentSubmission resolves the submission backing the actor's current
// step, for rendering the form. The resolve may create the submission, so
// the session is persisted afterwards.
func (r *SessionRunner) CurrentSubmission(ctx context.Context, workflowID string, actor Actor) (*Submission, error) {
	var sub *Submission
	err := r.do(ctx, workflowID, actor, func(eng Engine) error {
		var opErr error
		sub, opErr = eng.CurrentSubmission(ctx)
		return opErr
	})
	return sub, err
}

// IsComplete reports whether the actor's session finished the workflow.
func (r *SessionRunner) IsComplete(ctx context.Context, workflowID string, actor Actor) (bool, error) {
	eng, err := r.load(ctx, workflowID, actor)
	if err != nil {
		return false, err
	}
	return eng.IsComplete(ctx)
}

// Clear deletes the actor's session blob for the workflow. Submissions are
// untouched; this is the hook for external session expiry.
func (r *SessionRunner) Clear(ctx context.Context, workflowID string, actor Actor) error {
	return r.sessions.Delete(ctx, sessionKey(workflowID, actor))
}
