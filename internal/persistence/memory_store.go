package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cancelei-org/ca-small-claims-sub001/pkg/api"
)

// submissionKey is the uniqueness key of the find-or-create contract.
type submissionKey struct {
	formID   string
	actorKey string
	scope    string
}

// InMemoryStore is a simple, goroutine-safe implementation of
// api.SubmissionStore, api.EventStore, and api.SessionStore backed by maps.
// It is non-durable and intended for tests and development.
type InMemoryStore struct {
	mu       sync.RWMutex
	forms    map[string]bool // nil means accept any form id
	byID     map[string]*api.Submission
	byKey    map[submissionKey]string
	events   []api.FilingEvent
	sessions map[string][]byte
}

// Ensure InMemoryStore implements the interfaces.
var _ api.SubmissionStore = (*InMemoryStore)(nil)

var _ api.EventStore = (*InMemoryStore)(nil)

var _ api.SessionStore = (*InMemoryStore)(nil)

// NewInMemoryStore creates a new InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:     make(map[string]*api.Submission),
		byKey:    make(map[submissionKey]string),
		sessions: make(map[string][]byte),
	}
}

// SetFormCatalog restricts the store to the given form ids. FindOrCreate
// for any other form returns ErrUnknownForm. Without a catalog, any form id
// is accepted.
func (s *InMemoryStore) SetFormCatalog(formIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.forms = make(map[string]bool, len(formIDs))
	for _, id := range formIDs {
		s.forms[id] = true
	}
}

func (s *InMemoryStore) FindOrCreate(ctx context.Context, formID string, actor api.Actor, scope string) (*api.Submission, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.forms != nil && !s.forms[formID] {
		return nil, fmt.Errorf("%w: %s", api.ErrUnknownForm, formID)
	}

	key := submissionKey{formID: formID, actorKey: actor.Key(), scope: scope}
	if id, ok := s.byKey[key]; ok {
		return s.byID[id].Clone(), nil
	}

	sub := &api.Submission{
		ID:     uuid.NewString(),
		FormID: formID,
		Fields: make(map[string]string),
	}
	s.byID[sub.ID] = sub
	s.byKey[key] = sub.ID
	return sub.Clone(), nil
}

func (s *InMemoryStore) Get(ctx context.Context, id string) (*api.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", api.ErrSubmissionNotFound, id)
	}
	return sub.Clone(), nil
}

func (s *InMemoryStore) UpdateFields(ctx context.Context, id string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", api.ErrSubmissionNotFound, id)
	}
	for k, v := range fields {
		sub.Fields[k] = v
	}
	return nil
}

func (s *InMemoryStore) MarkComplete(ctx context.Context, id string, complete bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", api.ErrSubmissionNotFound, id)
	}
	sub.Complete = complete
	return nil
}

func (s *InMemoryStore) Append(ctx context.Context, ev api.FilingEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, ev)
	return nil
}

func (s *InMemoryStore) List(ctx context.Context, actorKey, workflowID string) ([]api.FilingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []api.FilingEvent
	for _, ev := range s.events {
		if actorKey != "" && ev.ActorKey != actorKey {
			continue
		}
		if workflowID != "" && ev.WorkflowID != workflowID {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (s *InMemoryStore) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.sessions[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", api.ErrSessionNotFound, key)
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

func (s *InMemoryStore) Save(ctx context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(blob))
	copy(stored, blob)
	s.sessions[key] = stored
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, key)
	return nil
}
