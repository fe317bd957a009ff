package api

import "math"

// Progress summarizes how far a filing session has advanced, for rendering
// step indicators and progress bars.
type Progress struct {
	Current int
	Total   int
	Percent int
}

// ComputeProgress derives progress from a definition and a state. It is a
// pure function; percent is round(100 * (current-1) / total) while the
// workflow is underway and 100 once it is complete.
func ComputeProgress(def WorkflowDefinition, st State) Progress {
	total := def.TotalSteps()
	if total == 0 {
		return Progress{}
	}

	if st.Step > total {
		return Progress{Current: total, Total: total, Percent: 100}
	}

	current := st.Step
	if current < 1 {
		current = 1
	}

	percent := int(math.Round(100 * float64(current-1) / float64(total)))
	return Progress{Current: current, Total: total, Percent: percent}
}

// AtFinalStep reports whether the state is at the last fillable step,
// as opposed to the terminal complete pseudo-state.
func AtFinalStep(def WorkflowDefinition, st State) bool {
	total := def.TotalSteps()
	return total > 0 && st.Step == total
}
