package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cancelei-org/ca-small-claims-sub001/pkg/api"
)

// SQLiteSubmissionStore is an api.SubmissionStore backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
//
// The find-or-create guarantee is enforced by a UNIQUE constraint on
// (form_id, actor_key, scope): concurrent first accesses race on the
// insert, and the loser reads the winner's row.
type SQLiteSubmissionStore struct {
	db *sql.DB

	mu    sync.RWMutex
	forms map[string]bool // nil means accept any form id
}

// Ensure SQLiteSubmissionStore implements api.SubmissionStore.
var _ api.SubmissionStore = (*SQLiteSubmissionStore)(nil)

// NewSQLiteSubmissionStore initializes the required schema in the given
// database and returns a new SQLiteSubmissionStore.
func NewSQLiteSubmissionStore(db *sql.DB) (*SQLiteSubmissionStore, error) {
	s := &SQLiteSubmissionStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSubmissionStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY,
			form_id TEXT NOT NULL,
			actor_key TEXT NOT NULL,
			scope TEXT NOT NULL,
			fields TEXT NOT NULL DEFAULT '{}',
			complete INTEGER NOT NULL DEFAULT 0,
			UNIQUE (form_id, actor_key, scope)
		);`,
	)
	return err
}

// SetFormCatalog restricts the store to the given form ids, mirroring the
// form registry of the surrounding application. The catalog is kept
// in-memory; submissions themselves stay in SQLite.
func (s *SQLiteSubmissionStore) SetFormCatalog(formIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.forms = make(map[string]bool, len(formIDs))
	for _, id := range formIDs {
		s.forms[id] = true
	}
}

func (s *SQLiteSubmissionStore) knownForm(formID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forms == nil || s.forms[formID]
}

func (s *SQLiteSubmissionStore) FindOrCreate(ctx context.Context, formID string, actor api.Actor, scope string) (*api.Submission, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if !s.knownForm(formID) {
		return nil, fmt.Errorf("%w: %s", api.ErrUnknownForm, formID)
	}

	// Insert-or-ignore first, then read back whichever row won.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, form_id, actor_key, scope)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (form_id, actor_key, scope) DO NOTHING`,
		uuid.NewString(), formID, actor.Key(), scope,
	)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, form_id, fields, complete
		FROM submissions
		WHERE form_id = ? AND actor_key = ? AND scope = ?`,
		formID, actor.Key(), scope,
	)
	return scanSubmission(row)
}

func (s *SQLiteSubmissionStore) Get(ctx context.Context, id string) (*api.Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, form_id, fields, complete
		FROM submissions
		WHERE id = ?`, id,
	)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", api.ErrSubmissionNotFound, id)
	}
	return sub, err
}

func (s *SQLiteSubmissionStore) UpdateFields(ctx context.Context, id string, fields map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var raw string
	if err := tx.QueryRowContext(ctx,
		`SELECT fields FROM submissions WHERE id = ?`, id,
	).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", api.ErrSubmissionNotFound, id)
		}
		return err
	}

	merged, err := mergeFields(raw, fields)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE submissions SET fields = ? WHERE id = ?`, merged, id,
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteSubmissionStore) MarkComplete(ctx context.Context, id string, complete bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET complete = ? WHERE id = ?`, boolToInt(complete), id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", api.ErrSubmissionNotFound, id)
	}
	return nil
}

// scanSubmission decodes a (id, form_id, fields, complete) row.
func scanSubmission(row *sql.Row) (*api.Submission, error) {
	var (
		sub      api.Submission
		raw      string
		complete int
	)
	if err := row.Scan(&sub.ID, &sub.FormID, &raw, &complete); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(raw), &sub.Fields); err != nil {
		return nil, fmt.Errorf("corrupt submission fields: %w", err)
	}
	if sub.Fields == nil {
		sub.Fields = make(map[string]string)
	}
	sub.Complete = complete != 0
	return &sub, nil
}

func mergeFields(raw string, fields map[string]string) (string, error) {
	current := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &current); err != nil {
		return "", fmt.Errorf("corrupt submission fields: %w", err)
	}
	for k, v := range fields {
		current[k] = v
	}
	out, err := json.Marshal(current)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
