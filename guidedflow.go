package guidedflow

import (
	"database/sql"
	"io/fs"

	"github.com/cancelei-org/ca-small-claims-sub001/internal/definitions"
	"github.com/cancelei-org/ca-small-claims-sub001/internal/engine"
	"github.com/cancelei-org/ca-small-claims-sub001/internal/persistence"
	"github.com/cancelei-org/ca-small-claims-sub001/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Engine               = api.Engine
	WorkflowDefinition   = api.WorkflowDefinition
	StepDefinition       = api.StepDefinition
	FieldMapping         = api.FieldMapping
	Actor                = api.Actor
	State                = api.State
	Submission           = api.Submission
	Progress             = api.Progress
	Status               = api.Status
	RetryPolicy          = api.RetryPolicy
	FilingEvent          = api.FilingEvent
	FilingEventType      = api.FilingEventType
	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	NoopObserver         = api.NoopObserver
	CompositeObserver    = api.CompositeObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	PrometheusObserver   = api.PrometheusObserver
	DefinitionStore      = api.DefinitionStore
	SubmissionStore      = api.SubmissionStore
	EventStore           = api.EventStore
	SessionStore         = api.SessionStore
)

// Re-export common constructors and helpers.

var (
	NewUserActor              = api.NewUserActor
	NewAnonymousActor         = api.NewAnonymousActor
	NewLoggingObserver        = api.NewLoggingObserver
	NewCompositeObserver      = api.NewCompositeObserver
	NewEventRecordingObserver = api.NewEventRecordingObserver
	EncodeState               = api.EncodeState
	DecodeState               = api.DecodeState
	ApplyFieldMappings        = api.ApplyFieldMappings
	ComputeProgress           = api.ComputeProgress
	AtFinalStep               = api.AtFinalStep
)

// Re-export status values for convenience.

const (
	StatusNotStarted = api.StatusNotStarted
	StatusInProgress = api.StatusInProgress
	StatusComplete   = api.StatusComplete
)

// Re-export the error taxonomy for errors.Is checks.

var (
	ErrWorkflowNotFound        = api.ErrWorkflowNotFound
	ErrInvalidActor            = api.ErrInvalidActor
	ErrUnknownForm             = api.ErrUnknownForm
	ErrRequiredStepsIncomplete = api.ErrRequiredStepsIncomplete
	ErrMalformedState          = api.ErrMalformedState
	ErrSubmissionNotFound      = api.ErrSubmissionNotFound
	ErrSessionNotFound         = api.ErrSessionNotFound
)

// Config wires an engine's collaborators. Definitions and Submissions are
// required; Observer defaults to a no-op.
type Config struct {
	Definitions DefinitionStore
	Submissions SubmissionStore
	Observer    Observer
}

func (c Config) internal() engine.Config {
	return engine.Config{
		Definitions: c.Definitions,
		Submissions: c.Submissions,
		Observer:    c.Observer,
	}
}

// NewEngine creates an engine for a fresh, not-yet-started filing session.
func NewEngine(cfg Config, workflowID string, actor Actor) (Engine, error) {
	return engine.New(cfg.internal(), workflowID, actor)
}

// ResumeEngine reconstructs an engine from a previously serialized State.
func ResumeEngine(cfg Config, st State) (Engine, error) {
	return engine.Resume(cfg.internal(), st)
}

// ResumeEngineFromBlob decodes a session blob produced by EncodeState and
// resumes an engine from it.
func ResumeEngineFromBlob(cfg Config, blob []byte) (Engine, error) {
	st, err := DecodeState(blob)
	if err != nil {
		return nil, err
	}
	return ResumeEngine(cfg, st)
}

// Definition store constructors
// These wrap the internal/definitions package so external callers
// never need to import internal packages.

// DefinitionRegistry is a DefinitionStore populated by explicit Register
// calls, typically via WorkflowBuilder during application startup.
type DefinitionRegistry interface {
	DefinitionStore
	Register(def WorkflowDefinition) error
}

// NewDefinitionRegistry returns an empty in-memory definition registry.
func NewDefinitionRegistry() DefinitionRegistry {
	return definitions.NewRegistry()
}

// NewDefinitionDirStore returns a DefinitionStore reading the .yaml/.yml
// workflow definition files directly under dir. Reload re-reads the
// directory.
func NewDefinitionDirStore(dir string) (DefinitionStore, error) {
	return definitions.NewDirStore(dir)
}

// NewDefinitionFSStore is like NewDefinitionDirStore over an fs.FS,
// typically an embed.FS holding the definition files.
func NewDefinitionFSStore(fsys fs.FS, dir string) (DefinitionStore, error) {
	return definitions.NewFSStore(fsys, dir)
}

// ParseDefinition parses and validates a single YAML workflow definition.
func ParseDefinition(data []byte) (WorkflowDefinition, error) {
	return definitions.ParseDefinition(data)
}

// LoadDefinitionFile reads and parses one workflow definition from a file.
func LoadDefinitionFile(path string) (WorkflowDefinition, error) {
	return definitions.LoadDefinitionFile(path)
}

// Store constructors

// MemoryStore is the in-memory store used for tests and development. One
// instance serves as submission, event, and session store at once.
type MemoryStore interface {
	SubmissionStore
	EventStore
	SessionStore

	// SetFormCatalog restricts accepted form ids; without it any form id
	// is accepted.
	SetFormCatalog(formIDs ...string)
}

// NewMemoryStore returns a goroutine-safe, non-durable MemoryStore.
func NewMemoryStore() MemoryStore {
	return persistence.NewInMemoryStore()
}

// CatalogSubmissionStore is a SubmissionStore whose accepted form ids can
// be restricted to the application's form catalog.
type CatalogSubmissionStore interface {
	SubmissionStore
	SetFormCatalog(formIDs ...string)
}

// NewSQLiteSubmissionStore returns a SubmissionStore that persists
// submissions in a SQLite database. The caller imports the driver, e.g.
//
//	import _ "modernc.org/sqlite"
func NewSQLiteSubmissionStore(db *sql.DB) (CatalogSubmissionStore, error) {
	return persistence.NewSQLiteSubmissionStore(db)
}

// NewPostgresSubmissionStore returns a SubmissionStore that persists
// submissions in PostgreSQL.
func NewPostgresSubmissionStore(db *sql.DB) (CatalogSubmissionStore, error) {
	return persistence.NewPostgresSubmissionStore(db)
}

// NewSQLiteEventStore returns an EventStore persisting filing events in SQLite.
func NewSQLiteEventStore(db *sql.DB) (EventStore, error) {
	return persistence.NewSQLiteEventStore(db)
}

// NewSQLiteSessionStore returns a SessionStore persisting session blobs in SQLite.
func NewSQLiteSessionStore(db *sql.DB) (SessionStore, error) {
	return persistence.NewSQLiteSessionStore(db)
}

// NewRetryingStore decorates a SubmissionStore with a retry policy for
// transient storage failures. Domain errors are never retried.
func NewRetryingStore(inner SubmissionStore, policy RetryPolicy) SubmissionStore {
	return persistence.NewRetryingStore(inner, policy)
}
