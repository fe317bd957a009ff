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

// PostgresSubmissionStore is an api.SubmissionStore backed by PostgreSQL.
//
// It expects an *sql.DB using a Postgres driver; the caller imports the
// driver. Semantics mirror SQLiteSubmissionStore: the find-or-create
// guarantee comes from the UNIQUE constraint on (form_id, actor_key, scope).
type PostgresSubmissionStore struct {
	db *sql.DB

	mu    sync.RWMutex
	forms map[string]bool
}

// Ensure PostgresSubmissionStore implements api.SubmissionStore.
var _ api.SubmissionStore = (*PostgresSubmissionStore)(nil)

// NewPostgresSubmissionStore initializes the required schema in the given
// database and returns a new PostgresSubmissionStore.
func NewPostgresSubmissionStore(db *sql.DB) (*PostgresSubmissionStore, error) {
	s := &PostgresSubmissionStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresSubmissionStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY,
			form_id TEXT NOT NULL,
			actor_key TEXT NOT NULL,
			scope TEXT NOT NULL,
			fields TEXT NOT NULL DEFAULT '{}',
			complete BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE (form_id, actor_key, scope)
		);`,
	)
	return err
}

// SetFormCatalog restricts the store to the given form ids.
func (s *PostgresSubmissionStore) SetFormCatalog(formIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.forms = make(map[string]bool, len(formIDs))
	for _, id := range formIDs {
		s.forms[id] = true
	}
}

func (s *PostgresSubmissionStore) knownForm(formID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forms == nil || s.forms[formID]
}

func (s *PostgresSubmissionStore) FindOrCreate(ctx context.Context, formID string, actor api.Actor, scope string) (*api.Submission, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if !s.knownForm(formID) {
		return nil, fmt.Errorf("%w: %s", api.ErrUnknownForm, formID)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, form_id, actor_key, scope)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (form_id, actor_key, scope) DO NOTHING`,
		uuid.NewString(), formID, actor.Key(), scope,
	)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, form_id, fields, complete
		FROM submissions
		WHERE form_id = $1 AND actor_key = $2 AND scope = $3`,
		formID, actor.Key(), scope,
	)
	return scanPGSubmission(row)
}

func (s *PostgresSubmissionStore) Get(ctx context.Context, id string) (*api.Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, form_id, fields, complete
		FROM submissions
		WHERE id = $1`, id,
	)
	sub, err := scanPGSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", api.ErrSubmissionNotFound, id)
	}
	return sub, err
}

func (s *PostgresSubmissionStore) UpdateFields(ctx context.Context, id string, fields map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var raw string
	if err := tx.QueryRowContext(ctx,
		`SELECT fields FROM submissions WHERE id = $1 FOR UPDATE`, id,
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
		`UPDATE submissions SET fields = $1 WHERE id = $2`, merged, id,
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresSubmissionStore) MarkComplete(ctx context.Context, id string, complete bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET complete = $1 WHERE id = $2`, complete, id,
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

func scanPGSubmission(row *sql.Row) (*api.Submission, error) {
	var (
		sub api.Submission
		raw string
	)
	if err := row.Scan(&sub.ID, &sub.FormID, &raw, &sub.Complete); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(raw), &sub.Fields); err != nil {
		return nil, fmt.Errorf("corrupt submission fields: %w", err)
	}
	if sub.Fields == nil {
		sub.Fields = make(map[string]string)
	}
	return &sub, nil
}
