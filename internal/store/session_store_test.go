package store

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Victorissad/Mario-VIS/internal/domain"
)

func newTestStore() *MemorySessionStore {
	return NewMemorySessionStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMemorySessionStore_CreateGetDelete(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()
	s := newTestStore()
	now := time.Now()

	session := &domain.UserSession{ID: "s1", Token: "tok", Email: "mario@example.com", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, s.Create(ctx, session))
	assert.ErrorIs(t, s.Create(ctx, session), ErrSessionExists)

	got, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, "mario@example.com", got.Email)

	// stored copy is not shared with the caller
	got.Token = "changed"
	again, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "tok", again.Token)

	require.NoError(t, s.Delete(ctx, "s1"))
	_, err = s.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "s1"), ErrSessionNotFound)
}

func TestMemorySessionStore_DeleteExpired(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()
	s := newTestStore()
	now := time.Now()

	require.NoError(t, s.Create(ctx, &domain.UserSession{ID: "old", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, s.Create(ctx, &domain.UserSession{ID: "edge", ExpiresAt: now}))
	require.NoError(t, s.Create(ctx, &domain.UserSession{ID: "fresh", ExpiresAt: now.Add(time.Hour)}))

	removed, err := s.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, err = s.Get(ctx, "fresh")
	assert.NoError(t, err)
	_, err = s.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestNewPostgresSessionStore_NilDB(t *testing.T) {
	_, err := NewPostgresSessionStore(nil, slog.Default())
	assert.Error(t, err)
}
