// Package definitions implements the step definition stores: an in-memory
// Registry populated by WorkflowBuilder, and a FileStore that reads YAML
// workflow definitions from a directory or embedded filesystem.
package definitions

import (
	"fmt"
	"iter"
	"sort"
	"sync"

	"github.com/cancelei-org/ca-small-claims-sub001/pkg/api"
)

// Registry is an in-memory api.DefinitionStore populated by explicit
// Register calls, typically from WorkflowBuilder during application startup.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]api.WorkflowDefinition
}

// Ensure Registry implements the store interface.
var _ api.DefinitionStore = (*Registry)(nil)

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]api.WorkflowDefinition)}
}

// Register validates and adds a definition. Registering the same workflow
// id twice is an error.
func (r *Registry) Register(def api.WorkflowDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.ID]; exists {
		return fmt.Errorf("workflow already registered: %s", def.ID)
	}
	r.defs[def.ID] = def
	return nil
}

func (r *Registry) Load(workflowID string) (api.WorkflowDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[workflowID]
	if !ok {
		return api.WorkflowDefinition{}, fmt.Errorf("%w: %s", api.ErrWorkflowNotFound, workflowID)
	}
	return def, nil
}

func (r *Registry) Steps(workflowID string) iter.Seq[api.StepDefinition] {
	return stepsSeq(r, workflowID)
}

func (r *Registry) StepAt(workflowID string, position int) (api.StepDefinition, bool) {
	def, err := r.Load(workflowID)
	if err != nil {
		return api.StepDefinition{}, false
	}
	return def.StepAt(position)
}

func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.defs)
}

// Reload is a no-op: a Registry has no backing source.
func (r *Registry) Reload() error { return nil }

// stepsSeq adapts Load into a restartable step iterator shared by the
// store implementations.
func stepsSeq(s api.DefinitionStore, workflowID string) iter.Seq[api.StepDefinition] {
	return func(yield func(api.StepDefinition) bool) {
		def, err := s.Load(workflowID)
		if err != nil {
			return
		}
		for _, step := range def.Steps {
			if !yield(step) {
				return
			}
		}
	}
}

func sortedKeys(m map[string]api.WorkflowDefinition) []string {
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
