package guidedflow

import (
	"fmt"

	"github.com/cancelei-org/ca-small-claims-sub001/pkg/api"
)

// WorkflowBuilder provides a fluent API for defining guided filing
// workflows in code:
//
//	flow := guidedflow.New("small-claims").
//	    RequiredStep("sc100").
//	    ShareField("plaintiff_name").
//	    Step("sc100a").
//	    RequiredStep("sc103")
//
//	if err := flow.Register(registry); err != nil {
//	    log.Fatal(err)
//	}
type WorkflowBuilder struct {
	def api.WorkflowDefinition
}

// New creates a new workflow builder with the given workflow id.
func New(workflowID string) *WorkflowBuilder {
	return &WorkflowBuilder{
		def: api.WorkflowDefinition{
			ID:    workflowID,
			Steps: make([]api.StepDefinition, 0),
		},
	}
}

// ID returns the workflow id.
func (b *WorkflowBuilder) ID() string {
	return b.def.ID
}

// Definition returns the underlying WorkflowDefinition.
// Typically used when interacting with lower-level APIs.
func (b *WorkflowBuilder) Definition() WorkflowDefinition {
	return b.def
}

// Step appends an optional step filling the given form.
func (b *WorkflowBuilder) Step(formID string) *WorkflowBuilder {
	return b.addStep(formID, false)
}

// RequiredStep appends a step whose submission must be complete before the
// workflow can finish.
func (b *WorkflowBuilder) RequiredStep(formID string) *WorkflowBuilder {
	return b.addStep(formID, true)
}

func (b *WorkflowBuilder) addStep(formID string, required bool) *WorkflowBuilder {
	if formID == "" {
		panic("guidedflow: step form id must not be empty")
	}
	b.def.Steps = append(b.def.Steps, api.StepDefinition{
		Position: len(b.def.Steps) + 1,
		FormID:   formID,
		Required: required,
	})
	return b
}

// MapField adds a field mapping to the most recently added step: when the
// user leaves that step moving forward, the value under from is copied to
// the key to on the next step's submission unless the user already entered
// something there.
func (b *WorkflowBuilder) MapField(from, to string) *WorkflowBuilder {
	if len(b.def.Steps) == 0 {
		panic("guidedflow: MapField called before any step was added")
	}
	if from == "" || to == "" {
		panic(fmt.Sprintf("guidedflow: invalid field mapping %q -> %q", from, to))
	}
	last := &b.def.Steps[len(b.def.Steps)-1]
	last.FieldMappings = append(last.FieldMappings, api.FieldMapping{From: from, To: to})
	return b
}

// ShareField is shorthand for MapField(key, key): the same field name is
// shared between the step being left and the next step.
func (b *WorkflowBuilder) ShareField(key string) *WorkflowBuilder {
	return b.MapField(key, key)
}

// Register registers the built workflow with the given registry.
func (b *WorkflowBuilder) Register(reg DefinitionRegistry) error {
	return reg.Register(b.def)
}

// MustRegister is like Register but panics on error.
// Useful for initialization in main().
func (b *WorkflowBuilder) MustRegister(reg DefinitionRegistry) {
	if err := b.Register(reg); err != nil {
		panic(fmt.Sprintf("guidedflow: register workflow %q: %v", b.def.ID, err))
	}
}
