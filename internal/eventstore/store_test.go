package eventstore

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testBuildID = "test-build-123"

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustEvent(t *testing.T, buildID string, typ EventType, at time.Time, payload any) Event {
	t.Helper()
	ev, err := NewEvent(buildID, typ, at, payload)
	require.NoError(t, err)
	return ev
}

func recordBuild(t *testing.T, store *SQLiteStore, buildID string, start time.Time, states ...string) {
	t.Helper()
	ctx := t.Context()
	require.NoError(t, store.Append(ctx, mustEvent(t, buildID, TypeBuildStarted, start,
		BuildStarted{Trigger: "webhook", Ref: "refs/heads/main", Commit: "abc"})))
	from := "Idle"
	for i, to := range states {
		require.NoError(t, store.Append(ctx, mustEvent(t, buildID, TypeBuildTransition,
			start.Add(time.Duration(i+1)*time.Second), BuildTransition{From: from, To: to})))
		from = to
	}
	require.NoError(t, store.Append(ctx, mustEvent(t, buildID, TypeBuildFinished,
		start.Add(10*time.Second), BuildFinished{State: from, Documents: 2, Pages: 9, Digest: "d1", DurationMS: 10000})))
}

func TestEventStoreAppendAndRetrieve(t *testing.T) {
	store := newTestStore(t)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(t.Context(), mustEvent(t, testBuildID, TypeBuildTransition, at,
		BuildTransition{From: "Idle", To: "CacheRestoring"})))

	events, err := store.GetByBuildID(t.Context(), testBuildID)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	if ev.Type != TypeBuildTransition {
		t.Errorf("expected type %s, got %s", TypeBuildTransition, ev.Type)
	}
	if !ev.Timestamp.Equal(at) {
		t.Errorf("expected timestamp %v, got %v", at, ev.Timestamp)
	}
	var p BuildTransition
	require.NoError(t, ev.Decode(&p))
	require.Equal(t, BuildTransition{From: "Idle", To: "CacheRestoring"}, p)
}

func TestSummaries(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	recordBuild(t, store, "b1", base, "CacheRestoring", "Rendering", "Publishing", "Done")
	recordBuild(t, store, "b2", base.Add(time.Hour), "CacheRestoring", "Rendering", "Failed")
	recordBuild(t, store, "b3", base.Add(2*time.Hour), "CacheRestoring", "Rendering", "Publishing", "Done")

	all, err := store.Summaries(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, []string{"b3", "b2", "b1"}, []string{all[0].BuildID, all[1].BuildID, all[2].BuildID})

	b2 := all[1]
	require.Equal(t, "Failed", b2.State)
	require.Equal(t, []string{"Idle", "CacheRestoring", "Rendering", "Failed"}, b2.Transitions)
	require.Equal(t, "webhook", b2.Trigger)
	require.Equal(t, "refs/heads/main", b2.Ref)
	require.NotNil(t, b2.FinishedAt)
	require.Equal(t, 10*time.Second, b2.Duration)
	require.Equal(t, 9, b2.Pages)

	limited, err := store.Summaries(t.Context(), 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, "b3", limited[0].BuildID)
}

func TestSummary(t *testing.T) {
	store := newTestStore(t)
	recordBuild(t, store, "one", time.Now().UTC(), "CacheRestoring", "Rendering", "Publishing", "Done")

	s, err := store.Summary(t.Context(), "one")
	require.NoError(t, err)
	require.Equal(t, "Done", s.State)
	require.Equal(t, "d1", s.Digest)

	_, err = store.Summary(t.Context(), "missing")
	if !errors.Is(err, ErrBuildNotFound) {
		t.Errorf("expected ErrBuildNotFound, got %v", err)
	}
}

func TestSummaries_RunningBuild(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(t.Context(), mustEvent(t, "run", TypeBuildStarted, time.Now(), BuildStarted{Trigger: "manual"})))

	all, err := store.Summaries(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, statusRunning, all[0].State)
	require.Nil(t, all[0].FinishedAt)
}

func TestOpen_FilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := Open(path)
	require.NoError(t, err)
	recordBuild(t, store, "persisted", time.Now().UTC(), "CacheRestoring", "Rendering", "Publishing", "Done")
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	all, err := reopened.Summaries(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "persisted", all[0].BuildID)
}
