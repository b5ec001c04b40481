package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zenji/internal/core/domain"
)

func TestSessionStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	sessions := setupTestStore(t).SessionStore(0)

	state := domain.NewSessionState()
	state.AddTurn(domain.RoleAssistant, "Hi")

	id, err := sessions.Create(ctx, state)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, state, got)

	got.Stage = domain.StageConfirm
	got.Feelings = []string{"anxious"}
	got.Duration = domain.DurationPersistent
	require.NoError(t, sessions.Save(ctx, id, got))

	reloaded, err := sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StageConfirm, reloaded.Stage)
	assert.Equal(t, []string{"anxious"}, reloaded.Feelings)
	assert.Equal(t, domain.DurationPersistent, reloaded.Duration)
	assert.Len(t, reloaded.Turns, 1)

	require.NoError(t, sessions.Delete(ctx, id))
	_, err = sessions.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting again is not an error
	assert.NoError(t, sessions.Delete(ctx, id))
}

func TestSessionStore_UnknownSession(t *testing.T) {
	ctx := context.Background()
	sessions := setupTestStore(t).SessionStore(0)

	_, err := sessions.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = sessions.Save(ctx, "missing", domain.NewSessionState())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	sessions := setupTestStore(t).SessionStore(time.Hour)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return now }

	idle, err := sessions.Create(ctx, domain.NewSessionState())
	require.NoError(t, err)
	active, err := sessions.Create(ctx, domain.NewSessionState())
	require.NoError(t, err)

	now = now.Add(45 * time.Minute)
	require.NoError(t, sessions.Save(ctx, active, domain.NewSessionState()))

	now = now.Add(30 * time.Minute)

	_, err = sessions.Get(ctx, idle)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = sessions.Get(ctx, active)
	assert.NoError(t, err)
}

func TestSessionStore_Purge(t *testing.T) {
	ctx := context.Background()
	sessions := setupTestStore(t).SessionStore(time.Minute)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return now }

	_, err := sessions.Create(ctx, domain.NewSessionState())
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	kept, err := sessions.Create(ctx, domain.NewSessionState())
	require.NoError(t, err)

	removed, err := sessions.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = sessions.Get(ctx, kept)
	assert.NoError(t, err)

	// No ttl, nothing to purge
	removed, err = setupTestStore(t).SessionStore(0).Purge(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
