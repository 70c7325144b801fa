package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SavePublish/internal/domain"
	"SavePublish/internal/ports"
)

func openSQLite(t *testing.T) *SQLStore {
	t.Helper()
	store, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "oracle", "dsn")
	assert.ErrorContains(t, err, "unsupported database driver")

	_, err = Open(context.Background(), DriverSQLite, " ")
	assert.ErrorContains(t, err, "dsn is required")
}

func TestSessionStores(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T) ports.SessionStore{
		"sqlite": func(t *testing.T) ports.SessionStore { return openSQLite(t) },
		"memory": func(*testing.T) ports.SessionStore { return NewMemoryStore() },
	}

	for name, build := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			store := build(t)

			created := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
			state := domain.NewRoundTripState("5b1d", domain.PublishRequest{ItemID: "{A1}", Language: "da", Version: 3}, created)
			state.Workflow = domain.WorkflowChecked
			state.Phase = domain.PhaseAwaitingWorkflowConfirm
			require.NoError(t, store.Save(ctx, state))

			state.Modified = domain.PageModified
			state.Phase = domain.PhaseAwaitingPublishConfirm
			state.UpdatedAt = created.Add(time.Minute)
			require.NoError(t, store.Save(ctx, state))

			loaded, err := store.Load(ctx, "5b1d")
			require.NoError(t, err)
			assert.Equal(t, *state, *loaded)

			require.NoError(t, store.Delete(ctx, "5b1d"))
			require.NoError(t, store.Delete(ctx, "5b1d"))

			_, err = store.Load(ctx, "5b1d")
			assert.ErrorIs(t, err, domain.ErrSessionNotFound)
		})
	}
}

func TestAuditNewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openSQLite(t)

	base := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	for i, msg := range []string{"first", "second", "third"} {
		require.NoError(t, store.Record(ctx, domain.AuditEntry{
			SessionID: "s",
			Item:      domain.ItemRef{ID: "{A1}", Language: "en", Version: 1},
			Actor:     "sitecore\\admin",
			Message:   msg,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	entries, err := store.ListAudit(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "third", entries[0].Message)
	assert.Equal(t, "second", entries[1].Message)
	assert.Equal(t, base.Add(2*time.Second), entries[0].CreatedAt)

	all, err := store.ListAudit(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestExpireSessions(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T) ports.SessionExpirer{
		"sqlite": func(t *testing.T) ports.SessionExpirer { return openSQLite(t) },
		"memory": func(*testing.T) ports.SessionExpirer { return NewMemoryStore() },
	}

	for name, build := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			store := build(t)
			sessions := store.(ports.SessionStore)

			base := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
			stale := domain.NewRoundTripState("stale", domain.PublishRequest{ItemID: "{A1}", Language: "en", Version: 1}, base)
			fresh := domain.NewRoundTripState("fresh", domain.PublishRequest{ItemID: "{B2}", Language: "en", Version: 1}, base.Add(time.Hour))
			require.NoError(t, sessions.Save(ctx, stale))
			require.NoError(t, sessions.Save(ctx, fresh))

			n, err := store.ExpireSessions(ctx, base.Add(30*time.Minute))
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			_, err = sessions.Load(ctx, "stale")
			assert.ErrorIs(t, err, domain.ErrSessionNotFound)
			_, err = sessions.Load(ctx, "fresh")
			assert.NoError(t, err)
		})
	}
}

func TestClaimSession(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T) ports.SessionStore{
		"sqlite": func(t *testing.T) ports.SessionStore { return openSQLite(t) },
		"memory": func(*testing.T) ports.SessionStore { return NewMemoryStore() },
	}

	for name, build := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			store := build(t)

			state := domain.NewRoundTripState("c1", domain.PublishRequest{ItemID: "{A1}", Language: "en", Version: 1}, time.Now())
			state.Phase = domain.PhaseAwaitingPublishConfirm
			require.NoError(t, store.Save(ctx, state))

			claimed, err := store.Claim(ctx, "c1", domain.PhaseAwaitingWorkflowConfirm)
			require.NoError(t, err)
			assert.False(t, claimed, "wrong phase must not claim")

			claimed, err = store.Claim(ctx, "c1", domain.PhaseAwaitingPublishConfirm)
			require.NoError(t, err)
			assert.True(t, claimed)

			claimed, err = store.Claim(ctx, "c1", domain.PhaseAwaitingPublishConfirm)
			require.NoError(t, err)
			assert.False(t, claimed, "second claim must lose")

			loaded, err := store.Load(ctx, "c1")
			require.NoError(t, err)
			assert.Equal(t, domain.PhaseExecuting, loaded.Phase)

			claimed, err = store.Claim(ctx, "missing", domain.PhaseAwaitingPublishConfirm)
			require.NoError(t, err)
			assert.False(t, claimed)
		})
	}
}

func TestPlaceholdersFollowDriver(t *testing.T) {
	t.Parallel()

	tests := []struct {
		driver string
		want   string
	}{
		{driver: DriverPostgres, want: "UPDATE publish_sessions SET phase = $1 WHERE session_id = $2 AND phase = $3"},
		{driver: DriverSQLite, want: "UPDATE publish_sessions SET phase = ? WHERE session_id = ? AND phase = ?"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			store := NewSQLStore(nil, tt.driver)

			query, args, err := store.claimQuery("c1", domain.PhaseAwaitingPublishConfirm)
			require.NoError(t, err)
			assert.Equal(t, tt.want, query)
			assert.Equal(t, []interface{}{"executing", "c1", "awaiting_publish_confirm"}, args)
		})
	}
}
