package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cancelei-org/ca-small-claims-sub001/pkg/api"
)

// SQLiteSessionStore persists engine-state blobs in SQLite, keyed per actor
// and workflow. Save is last-writer-wins.
type SQLiteSessionStore struct {
	db *sql.DB
}

// Ensure SQLiteSessionStore implements the interface.
var _ api.SessionStore = (*SQLiteSessionStore)(nil)

func NewSQLiteSessionStore(db *sql.DB) (*SQLiteSessionStore, error) {
	s := &SQLiteSessionStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSessionStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			key TEXT PRIMARY KEY,
			blob BLOB NOT NULL
		);`,
	)
	return err
}

func (s *SQLiteSessionStore) Load(ctx context.Context, key string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT blob FROM sessions WHERE key = ?`, key,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", api.ErrSessionNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return blob, nil
}

func (s *SQLiteSessionStore) Save(ctx context.Context, key string, blob []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (key, blob) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET blob = excluded.blob`,
		key, blob,
	)
	return err
}

func (s *SQLiteSessionStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE key = ?`, key)
	return err
}
