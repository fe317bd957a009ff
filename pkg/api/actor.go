package api

import "github.com/google/uuid"

// Actor identifies the owner of a filing session: either a registered user
// or an anonymous browser session. Exactly one of the two fields is set.
type Actor struct {
	UserID       string `json:"user_id,omitempty"`
	SessionToken string `json:"session_token,omitempty"`
}

// NewUserActor returns an Actor for a registered user.
func NewUserActor(userID string) Actor {
	return Actor{UserID: userID}
}

// NewAnonymousActor returns an Actor with a freshly generated session token.
func NewAnonymousActor() Actor {
	return Actor{SessionToken: uuid.NewString()}
}

// IsAnonymous reports whether the actor is identified by a session token.
func (a Actor) IsAnonymous() bool {
	return a.UserID == "" && a.SessionToken != ""
}

// Validate returns ErrInvalidActor unless exactly one of UserID and
// SessionToken is set.
func (a Actor) Validate() error {
	if (a.UserID == "") == (a.SessionToken == "") {
		return ErrInvalidActor
	}
	return nil
}

// Key returns a stable storage key for the actor, used to scope submissions
// and session state. The two identity spaces are kept disjoint by prefix.
func (a Actor) Key() string {
	if a.UserID != "" {
		return "user:" + a.UserID
	}
	return "session:" + a.SessionToken
}
