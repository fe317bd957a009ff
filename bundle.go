package guidedflow

import (
	"database/sql"

	"github.com/cancelei-org/ca-small-claims-sub001/pkg/api"
	"github.com/cancelei-org/ca-small-claims-sub001/internal/persistence"
)

// Bundle wires together a SessionRunner with durable submission, event,
// and session stores sharing the same database.
type Bundle struct {
	Runner      *SessionRunner
	Submissions CatalogSubmissionStore
	Events      EventStore
	Sessions    SessionStore
}

// NewSQLiteBundle constructs a durable store set plus a SessionRunner over
// a single SQLite database: submissions, filing events, and session blobs
// all live in the provided *sql.DB, and every engine operation is recorded
// to the event store.
//
// Typical usage:
//
//	db, _ := sql.Open("sqlite", "file:filings.db?_journal=WAL")
//	defs, _ := guidedflow.NewDefinitionDirStore("config/workflows")
//	bundle, err := guidedflow.NewSQLiteBundle(db, defs, nil)
//	// drive sessions via bundle.Runner
func NewSQLiteBundle(db *sql.DB, defs DefinitionStore, obs Observer) (*Bundle, error) {
	subs, err := persistence.NewSQLiteSubmissionStore(db)
	if err != nil {
		return nil, err
	}
	events, err := persistence.NewSQLiteEventStore(db)
	if err != nil {
		return nil, err
	}
	sessions, err := persistence.NewSQLiteSessionStore(db)
	if err != nil {
		return nil, err
	}

	cfg := Config{
		Definitions: defs,
		Submissions: subs,
		Observer: api.NewCompositeObserver(
			obs,
			api.NewEventRecordingObserver(events, nil),
		),
	}

	return &Bundle{
		Runner:      NewSessionRunner(cfg, sessions),
		Submissions: subs,
		Events:      events,
		Sessions:    sessions,
	}, nil
}
