// Package engine implements the workflow step state machine behind the
// api.Engine interface.
package engine

import (
	"context"
	"fmt"

	"github.com/cancelei-org/ca-small-claims-sub001/pkg/api"
)

// Config describes the collaborators an engine instance is wired with.
type Config struct {
	Definitions api.DefinitionStore
	Submissions api.SubmissionStore
	Observer    api.Observer
}

// engineImpl is a synchronous, per-session engine implementation. It is
// constructed fresh from serialized state for each logical operation and is
// not safe for concurrent use; callers persist State() between operations
// and accept last-writer-wins on races (e.g. two browser tabs).
type engineImpl struct {
	def      api.WorkflowDefinition
	subs     api.SubmissionStore
	observer api.Observer
	state    api.State
}

// New creates an engine for a fresh, not-yet-started session.
func New(cfg Config, workflowID string, actor api.Actor) (api.Engine, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	def, err := cfg.Definitions.Load(workflowID)
	if err != nil {
		return nil, err
	}
	return &engineImpl{
		def:      def,
		subs:     cfg.Submissions,
		observer: observerOrNoop(cfg.Observer),
		state: api.State{
			WorkflowID:  workflowID,
			Submissions: make(map[int]string),
			Actor:       actor,
		},
	}, nil
}

// Resume reconstructs an engine from previously serialized state. The
// position is clamped into [0, total+1] against the current definition, so
// a workflow that shrank between deploys does not strand the session.
func Resume(cfg Config, st api.State) (api.Engine, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	def, err := cfg.Definitions.Load(st.WorkflowID)
	if err != nil {
		return nil, err
	}

	st = st.Clone()
	if st.Submissions == nil {
		st.Submissions = make(map[int]string)
	}
	if max := def.TotalSteps() + 1; st.Step > max {
		st.Step = max
	}

	return &engineImpl{
		def:      def,
		subs:     cfg.Submissions,
		observer: observerOrNoop(cfg.Observer),
		state:    st,
	}, nil
}

func observerOrNoop(obs api.Observer) api.Observer {
	if obs == nil {
		return api.NoopObserver{}
	}
	return obs
}

// snapshot returns a copy of the state for observer callbacks, so observers
// cannot mutate engine state through the submissions map.
func (e *engineImpl) snapshot() api.State {
	return e.state.Clone()
}

// resolve finds-or-creates the submission backing the step at pos and
// records its id in the state. pos must be a valid step position.
func (e *engineImpl) resolve(ctx context.Context, pos int) (*api.Submission, error) {
	step, ok := e.def.StepAt(pos)
	if !ok {
		return nil, fmt.Errorf("workflow %s has no step at position %d", e.def.ID, pos)
	}
	sub, err := e.subs.FindOrCreate(ctx, step.FormID, e.state.Actor, e.state.WorkflowID)
	if err != nil {
		return nil, err
	}
	e.state.Submissions[pos] = sub.ID
	return sub, nil
}

func (e *engineImpl) Start(ctx context.Context) error {
	if e.state.Step != 0 {
		return nil
	}

	e.state.Step = 1
	if _, err := e.resolve(ctx, 1); err != nil {
		e.state.Step = 0
		return err
	}

	e.observer.OnWorkflowStarted(ctx, e.snapshot())
	if step, ok := e.def.StepAt(1); ok {
		e.observer.OnStepEntered(ctx, e.snapshot(), step)
	}
	return nil
}

func (e *engineImpl) Advance(ctx context.Context, fields map[string]string) error {
	total := e.def.TotalSteps()
	if e.state.Step > total {
		// Already complete.
		return nil
	}
	if e.state.Step == 0 {
		if err := e.Start(ctx); err != nil {
			return err
		}
	}

	pos := e.state.Step
	step, _ := e.def.StepAt(pos)

	sub, err := e.resolve(ctx, pos)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		if err := e.subs.UpdateFields(ctx, sub.ID, fields); err != nil {
			return err
		}
		// Keep the local copy current so mappings below see the values
		// the user just entered.
		if sub.Fields == nil {
			sub.Fields = make(map[string]string)
		}
		for k, v := range fields {
			sub.Fields[k] = v
		}
		e.observer.OnStepSaved(ctx, e.snapshot(), step, sub.ID)
	}

	if pos < total {
		next, _ := e.def.StepAt(pos + 1)
		if len(step.FieldMappings) > 0 {
			if err := e.applyMappings(ctx, sub, step, next); err != nil {
				return err
			}
		}
		e.state.Step = pos + 1
		if _, err := e.resolve(ctx, pos+1); err != nil {
			return err
		}
		e.observer.OnStepEntered(ctx, e.snapshot(), next)
		return nil
	}

	// Final step: completion is gated on every required step's submission
	// being complete. On refusal the position is unchanged and the caller
	// re-prompts the user.
	missing, err := e.missingRequired(ctx)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		e.observer.OnCompletionRefused(ctx, e.snapshot(), missing)
		return fmt.Errorf("%w: steps %v", api.ErrRequiredStepsIncomplete, missing)
	}

	e.state.Step = total + 1
	e.observer.OnWorkflowCompleted(ctx, e.snapshot())
	return nil
}

// applyMappings copies the step's mapped fields into the next step's
// submission, persisting only the keys that were actually set so a value
// the user already entered there is never clobbered.
func (e *engineImpl) applyMappings(ctx context.Context, source *api.Submission, from, to api.StepDefinition) error {
	target, err := e.resolve(ctx, to.Position)
	if err != nil {
		return err
	}

	applied := api.ApplyFieldMappings(source, target, from.FieldMappings)
	if len(applied) == 0 {
		return nil
	}

	patch := make(map[string]string, len(applied))
	for _, key := range applied {
		patch[key] = target.Fields[key]
	}
	if err := e.subs.UpdateFields(ctx, target.ID, patch); err != nil {
		return err
	}
	e.observer.OnFieldsMapped(ctx, e.snapshot(), from, to, applied)
	return nil
}

// missingRequired returns the positions of required steps whose submission
// is absent or not yet complete.
func (e *engineImpl) missingRequired(ctx context.Context) ([]int, error) {
	var missing []int
	for _, step := range e.def.Steps {
		if !step.Required {
			continue
		}
		id, ok := e.state.Submissions[step.Position]
		if !ok {
			missing = append(missing, step.Position)
			continue
		}
		sub, err := e.subs.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !sub.Complete {
			missing = append(missing, step.Position)
		}
	}
	return missing, nil
}

func (e *engineImpl) GoBack(ctx context.Context) error {
	total := e.def.TotalSteps()
	switch {
	case e.state.Step > total:
		// Re-enter the last fillable step: "edit after completion".
		e.state.Step = total
	case e.state.Step > 1:
		e.state.Step--
	default:
		// At step 1 or not started: no-op.
		return nil
	}

	if step, ok := e.def.StepAt(e.state.Step); ok {
		e.observer.OnStepEntered(ctx, e.snapshot(), step)
	}
	return nil
}

func (e *engineImpl) Restart(ctx context.Context) error {
	if e.state.Step == 0 {
		return nil
	}
	// Forget the place, not the data: submission ids stay in the state and
	// the store keeps the records for when the actor re-enters.
	e.state.Step = 0
	e.observer.OnWorkflowRestarted(ctx, e.snapshot())
	return nil
}

func (e *engineImpl) Status() api.Status {
	switch {
	case e.state.Step == 0:
		return api.StatusNotStarted
	case e.state.Step > e.def.TotalSteps():
		return api.StatusComplete
	default:
		return api.StatusInProgress
	}
}

func (e *engineImpl) Progress() api.Progress {
	return api.ComputeProgress(e.def, e.state)
}

func (e *engineImpl) CurrentStep() (api.StepDefinition, bool) {
	pos := e.state.Step
	if pos == 0 {
		pos = 1
	}
	return e.def.StepAt(pos)
}

func (e *engineImpl) CurrentSubmission(ctx context.Context) (*api.Submission, error) {
	total := e.def.TotalSteps()
	pos := e.state.Step
	if pos == 0 {
		pos = 1
	}
	if pos > total {
		pos = total
	}
	return e.resolve(ctx, pos)
}

func (e *engineImpl) IsComplete(ctx context.Context) (bool, error) {
	if e.state.Step <= e.def.TotalSteps() {
		return false, nil
	}
	missing, err := e.missingRequired(ctx)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

func (e *engineImpl) State() api.State {
	return e.state.Clone()
}
