package api

// Submission holds the field values a user has entered for one form
// instance. Submissions are owned by exactly one actor, created on first
// access to a step, updated as the user edits, and never deleted by the
// engine.
type Submission struct {
	ID     string
	FormID string

	// Fields maps form field names to the values entered so far.
	Fields map[string]string

	// Complete is the externally defined "this form is done" predicate,
	// set by the form-validation collaborator via the submission store.
	// The engine only reads it when gating workflow completion.
	Complete bool
}

// Clone returns a deep copy of the submission. Stores return clones so
// callers cannot mutate stored data through the returned pointer.
func (s *Submission) Clone() *Submission {
	if s == nil {
		return nil
	}
	out := *s
	if s.Fields != nil {
		out.Fields = make(map[string]string, len(s.Fields))
		for k, v := range s.Fields {
			out.Fields[k] = v
		}
	}
	return &out
}
