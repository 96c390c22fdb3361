package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zaloga/internal/db"
	"github.com/erazemk/zaloga/internal/session"
)

var _ session.Storage = (*Storage)(nil)

func TestStorageSaveLoadDelete(t *testing.T) {
	s := New(db.NewTestDB(t))
	ctx := context.Background()

	got, err := s.Load(ctx, session.KeyCredential, session.KeyRole)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Save(ctx, map[string]string{session.KeyCredential: "a", session.KeyRole: "b"}))
	require.NoError(t, s.Save(ctx, map[string]string{session.KeyRole: "c"}))

	got, err = s.Load(ctx, session.KeyCredential, session.KeyRole, "other")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{session.KeyCredential: "a", session.KeyRole: "c"}, got)

	require.NoError(t, s.Delete(ctx, session.KeyCredential, session.KeyRole))
	require.NoError(t, s.Delete(ctx, session.KeyCredential))

	got, err = s.Load(ctx, session.KeyCredential)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStorageBacksSession(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	codec := session.DefaultObfuscator()

	s := session.Load(ctx, New(database), codec)
	require.NoError(t, s.Establish(ctx, "tok", "ADMIN"))

	// A fresh load over the same file sees the persisted session.
	again := session.Load(ctx, New(database), codec)
	assert.True(t, again.IsAuthenticated())
	assert.True(t, again.IsAdmin())
	assert.Equal(t, "tok", again.Credential())

	require.NoError(t, again.Clear(ctx))
	assert.False(t, session.Load(ctx, New(database), codec).IsAuthenticated())
}

func TestStorageCanceledContext(t *testing.T) {
	s := New(db.NewTestDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, s.Save(ctx, map[string]string{"k": "v"}))
	got, err := s.Load(context.Background(), "k")
	require.NoError(t, err)
	assert.Empty(t, got)
}
