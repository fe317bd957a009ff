// Package persistence implements the submission, event, and session stores
// behind the workflow engine: a goroutine-safe in-memory store for tests
// and development, and SQLite/Postgres stores for durable deployments.
//
// The find-or-create guarantee of the submission stores is enforced at the
// storage boundary (a uniqueness constraint on (form, actor, scope)); the
// engine relies on it and does no locking of its own.
package persistence
