package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// State is the serializable engine state: everything needed to reconstruct
// a filing session between requests. Callers persist it opaquely (typically
// in a session store) and hand it back to ResumeEngine on the next request.
//
// Step encodes the state machine position:
//
//	0            not started
//	1..total     in progress at that step
//	total+1      complete (terminal pseudo-state; GoBack re-enters the last step)
type State struct {
	WorkflowID string `json:"workflow_id"`
	Step       int    `json:"step"`

	// Submissions maps step position to the submission id created when the
	// step was first visited. Entries are created lazily and survive Restart.
	Submissions map[int]string `json:"submissions,omitempty"`

	Actor Actor `json:"actor"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := s
	if s.Submissions != nil {
		out.Submissions = make(map[int]string, len(s.Submissions))
		for pos, id := range s.Submissions {
			out.Submissions[pos] = id
		}
	}
	return out
}

// Validate checks the structural invariants of the state. It does not know
// the workflow's total step count; position upper bounds are clamped by the
// engine against the definition at resume time.
func (s State) Validate() error {
	if s.WorkflowID == "" {
		return fmt.Errorf("%w: workflow id is empty", ErrMalformedState)
	}
	if s.Step < 0 {
		return fmt.Errorf("%w: step %d is negative", ErrMalformedState, s.Step)
	}
	for pos, id := range s.Submissions {
		if pos < 1 {
			return fmt.Errorf("%w: submission at non-positive position %d", ErrMalformedState, pos)
		}
		if id == "" {
			return fmt.Errorf("%w: empty submission id at position %d", ErrMalformedState, pos)
		}
	}
	if err := s.Actor.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	return nil
}

// EncodeState serializes a valid State to its JSON session-blob form.
func EncodeState(s State) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// DecodeState parses a session blob produced by EncodeState. Malformed
// input is rejected with ErrMalformedState rather than silently defaulted.
func DecodeState(data []byte) (State, error) {
	var s State
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if err := s.Validate(); err != nil {
		return State{}, err
	}
	return s, nil
}
