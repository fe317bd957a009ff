package api

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompositeObserver(t *testing.T) {
	// All-nil collapses to the no-op observer.
	if _, ok := NewCompositeObserver(nil, nil).(NoopObserver); !ok {
		t.Fatal("expected NoopObserver for all-nil input")
	}

	// A single observer is returned unwrapped.
	m := &BasicMetrics{}
	if got := NewCompositeObserver(nil, m); got != Observer(m) {
		t.Fatalf("expected single observer unwrapped, got %T", got)
	}
}

func TestCompositeObserverFansOut(t *testing.T) {
	ctx := context.Background()
	a, b := &BasicMetrics{}, &BasicMetrics{}
	obs := NewCompositeObserver(a, b)

	st := State{WorkflowID: "wf", Step: 1, Actor: NewUserActor("u")}
	obs.OnWorkflowStarted(ctx, st)
	obs.OnStepSaved(ctx, st, StepDefinition{Position: 1, FormID: "f"}, "sub-1")
	obs.OnWorkflowCompleted(ctx, st)

	for _, m := range []*BasicMetrics{a, b} {
		snap := m.Snapshot()
		assert.Equal(t, int64(1), snap.WorkflowsStarted)
		assert.Equal(t, int64(1), snap.StepsSaved)
		assert.Equal(t, int64(1), snap.WorkflowsCompleted)
	}
}

func TestBasicMetricsCounters(t *testing.T) {
	ctx := context.Background()
	m := &BasicMetrics{}
	st := State{WorkflowID: "wf", Actor: NewUserActor("u")}

	m.OnWorkflowStarted(ctx, st)
	m.OnCompletionRefused(ctx, st, []int{1, 3})
	m.OnWorkflowRestarted(ctx, st)
	m.OnFieldsMapped(ctx, st, StepDefinition{}, StepDefinition{}, []string{"a", "b", "c"})

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.WorkflowsStarted)
	assert.Equal(t, int64(1), snap.CompletionsRefused)
	assert.Equal(t, int64(1), snap.WorkflowsRestarted)
	assert.Equal(t, int64(3), snap.FieldsMapped)
	assert.Equal(t, int64(0), snap.WorkflowsCompleted)
}

// capturingEventStore records appended events and optionally fails.
type capturingEventStore struct {
	events []FilingEvent
	fail   error
}

func (s *capturingEventStore) Append(ctx context.Context, ev FilingEvent) error {
	if s.fail != nil {
		return s.fail
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *capturingEventStore) List(ctx context.Context, actorKey, workflowID string) ([]FilingEvent, error) {
	return s.events, nil
}

func TestEventRecordingObserver(t *testing.T) {
	ctx := context.Background()
	store := &capturingEventStore{}
	obs := NewEventRecordingObserver(store, nil)

	st := State{WorkflowID: "small-claims", Step: 1, Actor: NewUserActor("u1")}
	from := StepDefinition{Position: 1, FormID: "sc100"}
	to := StepDefinition{Position: 2, FormID: "sc100a"}

	obs.OnWorkflowStarted(ctx, st)
	obs.OnStepSaved(ctx, st, from, "sub-1")
	obs.OnFieldsMapped(ctx, st, from, to, []string{"name", "address"})
	obs.OnCompletionRefused(ctx, st, []int{1})

	require.Len(t, store.events, 4)

	assert.Equal(t, EventWorkflowStarted, store.events[0].Type)
	assert.Equal(t, "user:u1", store.events[0].ActorKey)

	assert.Equal(t, EventStepSaved, store.events[1].Type)
	assert.Equal(t, "sc100", store.events[1].FormID)
	assert.Equal(t, 1, store.events[1].Step)

	assert.Equal(t, EventFieldsMapped, store.events[2].Type)
	assert.Equal(t, "sc100a", store.events[2].FormID)
	assert.Equal(t, "name,address", store.events[2].Detail)

	assert.Equal(t, EventCompletionRefused, store.events[3].Type)
	assert.Equal(t, "[1]", store.events[3].Detail)

	for _, ev := range store.events {
		assert.False(t, ev.At.IsZero(), "event timestamp should be set")
	}
}

func TestEventRecordingObserverSwallowsAppendErrors(t *testing.T) {
	ctx := context.Background()
	store := &capturingEventStore{fail: errors.New("disk full")}
	obs := NewEventRecordingObserver(store, nil)

	st := State{WorkflowID: "wf", Actor: NewUserActor("u")}

	// Must not panic or surface the error; history is best-effort.
	obs.OnWorkflowStarted(ctx, st)
	obs.OnWorkflowCompleted(ctx, st)
}
