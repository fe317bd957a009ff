package guidedflow

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/stretchr/testify/require"
)

func registerSmallClaims(t *testing.T) DefinitionRegistry {
	t.Helper()

	reg := NewDefinitionRegistry()
	New("small-claims").
		RequiredStep("sc100").
		ShareField("plaintiff_name").
		RequiredStep("sc103").
		MustRegister(reg)
	return reg
}

// TestSQLiteBundle_DurableAcrossRestart demonstrates that a filing session
// survives a simulated process restart: a new bundle over the same database
// resumes exactly where the previous one stopped, assuming workflows are
// re-registered on startup.
func TestSQLiteBundle_DurableAcrossRestart(t *testing.T) {
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "filings.db")
	dsn := "file:" + dbPath + "?_journal=WAL"
	actor := NewUserActor("user-1")

	// --- Phase 1: start the session and save the first form.

	db1, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)

	bundle1, err := NewSQLiteBundle(db1, registerSmallClaims(t), nil)
	require.NoError(t, err)

	p, err := bundle1.Runner.Start(ctx, "small-claims", actor)
	require.NoError(t, err)
	require.Equal(t, 1, p.Current)

	p, err = bundle1.Runner.Advance(ctx, "small-claims", actor, map[string]string{
		"plaintiff_name": "Jane Roe",
		"claim_amount":   "5000",
	})
	require.NoError(t, err)
	require.Equal(t, 2, p.Current)

	// Simulate a process crash.
	require.NoError(t, db1.Close())

	// --- Phase 2: "restart" with a new DB handle and bundle.

	db2, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db2.Close() })

	bundle2, err := NewSQLiteBundle(db2, registerSmallClaims(t), nil)
	require.NoError(t, err)

	p, err = bundle2.Runner.Progress(ctx, "small-claims", actor)
	require.NoError(t, err)
	require.Equal(t, 2, p.Current, "session should resume where it stopped")

	// The mapped value is waiting on the second form.
	sub, err := bundle2.Runner.CurrentSubmission(ctx, "small-claims", actor)
	require.NoError(t, err)
	require.Equal(t, "sc103", sub.FormID)
	require.Equal(t, "Jane Roe", sub.Fields["plaintiff_name"])
}

func TestSQLiteBundle_RecordsFilingEvents(t *testing.T) {
	ctx := context.Background()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	bundle, err := NewSQLiteBundle(db, registerSmallClaims(t), nil)
	require.NoError(t, err)

	actor := NewUserActor("user-1")
	_, err = bundle.Runner.Start(ctx, "small-claims", actor)
	require.NoError(t, err)
	_, err = bundle.Runner.Advance(ctx, "small-claims", actor, map[string]string{"plaintiff_name": "Jane Roe"})
	require.NoError(t, err)

	events, err := bundle.Events.List(ctx, actor.Key(), "small-claims")
	require.NoError(t, err)
	require.NotEmpty(t, events)

	var types []FilingEventType
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	require.Contains(t, types, FilingEventType("workflow.started"))
	require.Contains(t, types, FilingEventType("step.saved"))
	require.Contains(t, types, FilingEventType("fields.mapped"))
}

func TestSQLiteBundle_CompletionGatePersists(t *testing.T) {
	ctx := context.Background()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	bundle, err := NewSQLiteBundle(db, registerSmallClaims(t), nil)
	require.NoError(t, err)

	actor := NewUserActor("user-1")
	_, err = bundle.Runner.Start(ctx, "small-claims", actor)
	require.NoError(t, err)
	_, err = bundle.Runner.Advance(ctx, "small-claims", actor, map[string]string{"plaintiff_name": "Jane Roe"})
	require.NoError(t, err)

	// Refused: neither required submission is complete.
	_, err = bundle.Runner.Advance(ctx, "small-claims", actor, nil)
	require.ErrorIs(t, err, ErrRequiredStepsIncomplete)

	// Complete both required forms directly through the submission store.
	for _, form := range []string{"sc100", "sc103"} {
		sub, err := bundle.Submissions.FindOrCreate(ctx, form, actor, "small-claims")
		require.NoError(t, err)
		require.NoError(t, bundle.Submissions.MarkComplete(ctx, sub.ID, true))
	}

	p, err := bundle.Runner.Advance(ctx, "small-claims", actor, nil)
	require.NoError(t, err)
	require.Equal(t, 100, p.Percent)

	done, err := bundle.Runner.IsComplete(ctx, "small-claims", actor)
	require.NoError(t, err)
	require.True(t, done)
}
