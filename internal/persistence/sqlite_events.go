package persistence

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cancelei-org/ca-small-claims-sub001/pkg/api"
)

// SQLiteEventStore stores filing-session events in SQLite.
type SQLiteEventStore struct {
	db *sql.DB
}

// Ensure SQLiteEventStore implements the interface.
var _ api.EventStore = (*SQLiteEventStore)(nil)

func NewSQLiteEventStore(db *sql.DB) (*SQLiteEventStore, error) {
	s := &SQLiteEventStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteEventStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS filing_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			actor_key TEXT NOT NULL,
			workflow_id TEXT NOT NULL,
			at INTEGER NOT NULL,
			type TEXT NOT NULL,
			step INTEGER NOT NULL DEFAULT 0,
			form_id TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_filing_events_actor ON filing_events(actor_key, workflow_id, id);
	`)
	return err
}

func (s *SQLiteEventStore) Append(ctx context.Context, ev api.FilingEvent) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO filing_events (actor_key, workflow_id, at, type, step, form_id, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ActorKey,
		ev.WorkflowID,
		at.UnixNano(),
		string(ev.Type),
		ev.Step,
		ev.FormID,
		ev.Detail,
	)
	return err
}

func (s *SQLiteEventStore) List(ctx context.Context, actorKey, workflowID string) ([]api.FilingEvent, error) {
	query := `
		SELECT actor_key, workflow_id, at, type, step, form_id, detail
		FROM filing_events`
	var args []any
	var clauses []string

	if actorKey != "" {
		clauses = append(clauses, "actor_key = ?")
		args = append(args, actorKey)
	}
	if workflowID != "" {
		clauses = append(clauses, "workflow_id = ?")
		args = append(args, workflowID)
	}
	if len(clauses) > 0 {
		query = query + " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []api.FilingEvent
	for rows.Next() {
		var (
			ev  api.FilingEvent
			atN int64
			typ string
		)
		if err := rows.Scan(&ev.ActorKey, &ev.WorkflowID, &atN, &typ, &ev.Step, &ev.FormID, &ev.Detail); err != nil {
			return nil, err
		}
		ev.At = time.Unix(0, atN)
		ev.Type = api.FilingEventType(typ)
		out = append(out, ev)
	}
	return out, rows.Err()
}
