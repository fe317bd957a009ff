package api

// ApplyFieldMappings copies mapped field values from a source submission
// into a target submission and returns the target keys that were set.
//
// A rule (from, to) only fires when the source value is non-empty and the
// target key is currently empty: a value the user already entered on the
// target step is never overwritten, regardless of what the source holds.
// The source submission is never mutated.
func ApplyFieldMappings(source, target *Submission, rules []FieldMapping) []string {
	if source == nil || target == nil {
		return nil
	}

	var applied []string
	for _, r := range rules {
		v, ok := source.Fields[r.From]
		if !ok || v == "" {
			continue
		}
		if existing, ok := target.Fields[r.To]; ok && existing != "" {
			continue
		}
		if target.Fields == nil {
			target.Fields = make(map[string]string)
		}
		target.Fields[r.To] = v
		applied = append(applied, r.To)
	}
	return applied
}
