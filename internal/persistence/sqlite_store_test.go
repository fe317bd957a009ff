package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/cancelei-org/ca-small-claims-sub001/pkg/api"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	// Each pooled connection would get its own in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func newTestSQLiteStore(t *testing.T) *SQLiteSubmissionStore {
	t.Helper()

	store, err := NewSQLiteSubmissionStore(newTestDB(t))
	if err != nil {
		t.Fatalf("NewSQLiteSubmissionStore failed: %v", err)
	}
	return store
}

func TestSQLiteSubmissionStoreFindOrCreate(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)
	actor := api.NewUserActor("user-1")

	first, err := store.FindOrCreate(ctx, "sc100", actor, "small-claims")
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}
	if first.ID == "" || first.FormID != "sc100" || first.Complete {
		t.Fatalf("unexpected submission: %+v", first)
	}
	if first.Fields == nil || len(first.Fields) != 0 {
		t.Fatalf("expected empty fields map, got %v", first.Fields)
	}

	again, err := store.FindOrCreate(ctx, "sc100", actor, "small-claims")
	if err != nil {
		t.Fatalf("second FindOrCreate failed: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("find-or-create created a duplicate: %q vs %q", first.ID, again.ID)
	}

	other, err := store.FindOrCreate(ctx, "sc100", actor, "fee-waiver")
	if err != nil {
		t.Fatalf("FindOrCreate in other scope failed: %v", err)
	}
	if other.ID == first.ID {
		t.Fatal("different scopes share a submission")
	}
}

func TestSQLiteSubmissionStoreFindOrCreateRejects(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	if _, err := store.FindOrCreate(ctx, "sc100", api.Actor{}, "wf"); !errors.Is(err, api.ErrInvalidActor) {
		t.Fatalf("expected ErrInvalidActor, got %v", err)
	}

	store.SetFormCatalog("sc100")
	if _, err := store.FindOrCreate(ctx, "bogus", api.NewUserActor("u"), "wf"); !errors.Is(err, api.ErrUnknownForm) {
		t.Fatalf("expected ErrUnknownForm, got %v", err)
	}
}

func TestSQLiteSubmissionStoreUpdateFieldsMerges(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)
	sub, _ := store.FindOrCreate(ctx, "sc100", api.NewUserActor("u"), "wf")

	if err := store.UpdateFields(ctx, sub.ID, map[string]string{"a": "1", "b": "2"}); err != nil {
		t.Fatalf("UpdateFields failed: %v", err)
	}
	if err := store.UpdateFields(ctx, sub.ID, map[string]string{"b": "changed"}); err != nil {
		t.Fatalf("second UpdateFields failed: %v", err)
	}

	got, err := store.Get(ctx, sub.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Fields["a"] != "1" || got.Fields["b"] != "changed" {
		t.Fatalf("merge semantics broken: %v", got.Fields)
	}

	if err := store.UpdateFields(ctx, "nope", map[string]string{"k": "v"}); !errors.Is(err, api.ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
}

func TestSQLiteSubmissionStoreMarkComplete(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)
	sub, _ := store.FindOrCreate(ctx, "sc100", api.NewUserActor("u"), "wf")

	if err := store.MarkComplete(ctx, sub.ID, true); err != nil {
		t.Fatalf("MarkComplete failed: %v", err)
	}
	got, _ := store.Get(ctx, sub.ID)
	if !got.Complete {
		t.Fatal("submission should be complete")
	}

	if err := store.MarkComplete(ctx, "nope", true); !errors.Is(err, api.ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
}

func TestSQLiteSubmissionStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, api.ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
}

func TestSQLiteEventStoreAppendAndList(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteEventStore(newTestDB(t))
	if err != nil {
		t.Fatalf("NewSQLiteEventStore failed: %v", err)
	}

	evs := []api.FilingEvent{
		{ActorKey: "user:a", WorkflowID: "wf1", Type: api.EventWorkflowStarted, Step: 1},
		{ActorKey: "user:a", WorkflowID: "wf1", Type: api.EventStepSaved, Step: 1, FormID: "sc100"},
		{ActorKey: "user:b", WorkflowID: "wf1", Type: api.EventWorkflowStarted},
		{ActorKey: "user:a", WorkflowID: "wf2", Type: api.EventWorkflowStarted},
	}
	for _, ev := range evs {
		if err := store.Append(ctx, ev); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := store.List(ctx, "user:a", "wf1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	// Append order is preserved.
	if got[0].Type != api.EventWorkflowStarted || got[1].Type != api.EventStepSaved {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[1].FormID != "sc100" || got[1].Step != 1 {
		t.Fatalf("event payload lost: %+v", got[1])
	}
	if got[0].At.IsZero() {
		t.Fatal("timestamp should be defaulted on append")
	}

	all, err := store.List(ctx, "", "")
	if err != nil || len(all) != 4 {
		t.Fatalf("unfiltered List: got %d events, err=%v", len(all), err)
	}
}

func TestSQLiteSessionStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteSessionStore(newTestDB(t))
	if err != nil {
		t.Fatalf("NewSQLiteSessionStore failed: %v", err)
	}

	if _, err := store.Load(ctx, "missing"); !errors.Is(err, api.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	if err := store.Save(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("upsert Save failed: %v", err)
	}

	blob, err := store.Load(ctx, "k")
	if err != nil || string(blob) != "v2" {
		t.Fatalf("Load: got %q err=%v", blob, err)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load(ctx, "k"); !errors.Is(err, api.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}
