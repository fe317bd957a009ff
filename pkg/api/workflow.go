package api

import "fmt"

// FieldMapping declares that the value entered under From on the step being
// left should be copied into the key To on the next step's submission, so
// the user does not have to re-type shared information (for example the
// plaintiff name appearing on several court forms).
type FieldMapping struct {
	From string
	To   string
}

// StepDefinition describes one position in a guided filing workflow.
type StepDefinition struct {
	// Position is 1-based and unique within a workflow. Positions are
	// contiguous and strictly increasing.
	Position int

	// FormID identifies the court form this step fills (e.g. "sc100").
	FormID string

	// Required marks steps whose submission must be complete before the
	// workflow as a whole can finish.
	Required bool

	// FieldMappings are applied when the user leaves this step moving
	// forward: values are copied into the next step's submission unless
	// the user already entered something there.
	FieldMappings []FieldMapping
}

// WorkflowDefinition describes a guided filing process as an ordered
// sequence of form steps. Definitions are immutable after load.
type WorkflowDefinition struct {
	ID    string
	Steps []StepDefinition
}

// TotalSteps returns the number of fillable steps.
func (d WorkflowDefinition) TotalSteps() int {
	return len(d.Steps)
}

// StepAt returns the step at the given 1-based position.
// Out-of-range positions return ok=false rather than an error; callers
// treat that as "no such step".
func (d WorkflowDefinition) StepAt(position int) (StepDefinition, bool) {
	if position < 1 || position > len(d.Steps) {
		return StepDefinition{}, false
	}
	return d.Steps[position-1], true
}

// Validate checks the structural invariants of the definition: a non-empty
// id, at least one step, contiguous 1-based positions, a form id on every
// step, and well-formed field mappings.
func (d WorkflowDefinition) Validate() error {
	if d.ID == "" {
		return ErrWorkflowIDRequired
	}
	if len(d.Steps) == 0 {
		return fmt.Errorf("workflow %q: %w", d.ID, ErrStepRequired)
	}

	for i, step := range d.Steps {
		if step.Position != i+1 {
			return fmt.Errorf("workflow %q, step index %d has position %d: %w",
				d.ID, i, step.Position, ErrStepPositionsNotContiguous)
		}
		if step.FormID == "" {
			return fmt.Errorf("workflow %q, step %d: %w", d.ID, step.Position, ErrFormIDRequired)
		}
		for j, m := range step.FieldMappings {
			if m.From == "" || m.To == "" {
				return fmt.Errorf("workflow %q, step %d, mapping %d: %w",
					d.ID, step.Position, j, ErrFieldMappingIncomplete)
			}
		}
	}

	return nil
}
