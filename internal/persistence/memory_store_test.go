package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/cancelei-org/ca-small-claims-sub001/pkg/api"
)

func TestInMemoryStoreFindOrCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	actor := api.NewUserActor("user-1")

	first, err := store.FindOrCreate(ctx, "sc100", actor, "small-claims")
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}
	if first.ID == "" || first.FormID != "sc100" {
		t.Fatalf("unexpected submission: %+v", first)
	}

	again, err := store.FindOrCreate(ctx, "sc100", actor, "small-claims")
	if err != nil {
		t.Fatalf("second FindOrCreate failed: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected same submission, got %q and %q", first.ID, again.ID)
	}

	// A different actor, form, or scope each gets its own submission.
	other, _ := store.FindOrCreate(ctx, "sc100", api.NewUserActor("user-2"), "small-claims")
	if other.ID == first.ID {
		t.Fatal("different actors share a submission")
	}
	scoped, _ := store.FindOrCreate(ctx, "sc100", actor, "fee-waiver")
	if scoped.ID == first.ID {
		t.Fatal("different scopes share a submission")
	}
}

func TestInMemoryStoreFindOrCreateRejects(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if _, err := store.FindOrCreate(ctx, "sc100", api.Actor{}, "wf"); !errors.Is(err, api.ErrInvalidActor) {
		t.Fatalf("expected ErrInvalidActor, got %v", err)
	}

	store.SetFormCatalog("sc100", "sc103")
	if _, err := store.FindOrCreate(ctx, "bogus", api.NewUserActor("u"), "wf"); !errors.Is(err, api.ErrUnknownForm) {
		t.Fatalf("expected ErrUnknownForm, got %v", err)
	}
	if _, err := store.FindOrCreate(ctx, "sc103", api.NewUserActor("u"), "wf"); err != nil {
		t.Fatalf("catalogued form should be accepted: %v", err)
	}
}

func TestInMemoryStoreUpdateFieldsMerges(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	actor := api.NewUserActor("user-1")

	sub, _ := store.FindOrCreate(ctx, "sc100", actor, "wf")

	if err := store.UpdateFields(ctx, sub.ID, map[string]string{"a": "1", "b": "2"}); err != nil {
		t.Fatalf("UpdateFields failed: %v", err)
	}
	if err := store.UpdateFields(ctx, sub.ID, map[string]string{"b": "changed", "c": "3"}); err != nil {
		t.Fatalf("second UpdateFields failed: %v", err)
	}

	got, err := store.Get(ctx, sub.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	want := map[string]string{"a": "1", "b": "changed", "c": "3"}
	for k, v := range want {
		if got.Fields[k] != v {
			t.Fatalf("field %q: got %q want %q (all: %v)", k, got.Fields[k], v, got.Fields)
		}
	}

	if err := store.UpdateFields(ctx, "nope", nil); !errors.Is(err, api.ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
}

func TestInMemoryStoreMarkComplete(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	sub, _ := store.FindOrCreate(ctx, "sc100", api.NewUserActor("u"), "wf")

	if err := store.MarkComplete(ctx, sub.ID, true); err != nil {
		t.Fatalf("MarkComplete failed: %v", err)
	}
	got, _ := store.Get(ctx, sub.ID)
	if !got.Complete {
		t.Fatal("submission should be complete")
	}

	if err := store.MarkComplete(ctx, sub.ID, false); err != nil {
		t.Fatalf("MarkComplete(false) failed: %v", err)
	}
	got, _ = store.Get(ctx, sub.ID)
	if got.Complete {
		t.Fatal("submission should be incomplete again")
	}

	if err := store.MarkComplete(ctx, "nope", true); !errors.Is(err, api.ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
}

func TestInMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	sub, _ := store.FindOrCreate(ctx, "sc100", api.NewUserActor("u"), "wf")

	sub.Fields["mutated"] = "outside"

	got, _ := store.Get(ctx, sub.ID)
	if _, ok := got.Fields["mutated"]; ok {
		t.Fatal("store state leaked through a returned submission")
	}
}

func TestInMemoryStoreEvents(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	evs := []api.FilingEvent{
		{ActorKey: "user:a", WorkflowID: "wf1", Type: api.EventWorkflowStarted},
		{ActorKey: "user:a", WorkflowID: "wf2", Type: api.EventWorkflowStarted},
		{ActorKey: "user:b", WorkflowID: "wf1", Type: api.EventStepSaved},
	}
	for _, ev := range evs {
		if err := store.Append(ctx, ev); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	all, _ := store.List(ctx, "", "")
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
	if all[0].At.IsZero() {
		t.Fatal("Append should default the timestamp")
	}

	byActor, _ := store.List(ctx, "user:a", "")
	if len(byActor) != 2 {
		t.Fatalf("expected 2 events for user:a, got %d", len(byActor))
	}
	both, _ := store.List(ctx, "user:a", "wf1")
	if len(both) != 1 || both[0].Type != api.EventWorkflowStarted {
		t.Fatalf("unexpected filtered events: %+v", both)
	}
}

func TestInMemoryStoreSessions(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if _, err := store.Load(ctx, "missing"); !errors.Is(err, api.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	if err := store.Save(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	blob, err := store.Load(ctx, "k")
	if err != nil || string(blob) != "v1" {
		t.Fatalf("Load: got %q err=%v", blob, err)
	}

	// Last writer wins.
	if err := store.Save(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	blob, _ = store.Load(ctx, "k")
	if string(blob) != "v2" {
		t.Fatalf("expected v2, got %q", blob)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load(ctx, "k"); !errors.Is(err, api.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
	// Deleting a missing key is a no-op.
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("repeat Delete failed: %v", err)
	}
}
