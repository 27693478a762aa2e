package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFileCache(t *testing.T) (Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.json")
	return NewFileCache(path, zap.NewNop()), path
}

func testState(handle string, ttl time.Duration) *State {
	return &State{
		Handle:    handle,
		UserID:    uuid.New(),
		Name:      "Test User",
		Role:      "user",
		ExpiresAt: time.Now().Add(ttl),
	}
}

func TestFileCacheSetGetClear(t *testing.T) {
	cache, _ := newTestFileCache(t)
	ctx := context.Background()

	state := testState("handle-1", time.Hour)
	require.NoError(t, cache.Set(ctx, state))

	got, err := cache.Get(ctx, "handle-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, state.UserID, got.UserID)
	assert.Equal(t, state.Role, got.Role)

	require.NoError(t, cache.Clear(ctx, "handle-1"))
	got, err = cache.Get(ctx, "handle-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileCacheMissIsNotAnError(t *testing.T) {
	cache, _ := newTestFileCache(t)
	got, err := cache.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileCacheExpiredEntryReadsAsMiss(t *testing.T) {
	cache, _ := newTestFileCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testState("stale", -time.Minute)))
	got, err := cache.Get(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileCacheCorruptFileReadsAsEmpty(t *testing.T) {
	cache, path := newTestFileCache(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	got, err := cache.Get(ctx, "anything")
	require.NoError(t, err)
	assert.Nil(t, got)

	// The next write self-heals the file.
	require.NoError(t, cache.Set(ctx, testState("fresh", time.Hour)))
	got, err = cache.Get(ctx, "fresh")
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestFileCacheSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	ctx := context.Background()

	first := NewFileCache(path, zap.NewNop())
	state := testState("durable", time.Hour)
	require.NoError(t, first.Set(ctx, state))

	second := NewFileCache(path, zap.NewNop())
	got, err := second.Get(ctx, "durable")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, state.UserID, got.UserID)
}

func TestFileCachePurgeExpired(t *testing.T) {
	cache, _ := newTestFileCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testState("live", time.Hour)))
	require.NoError(t, cache.Set(ctx, testState("dead-1", -time.Minute)))
	require.NoError(t, cache.Set(ctx, testState("dead-2", -time.Hour)))

	purged, err := cache.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, purged)

	got, err := cache.Get(ctx, "live")
	require.NoError(t, err)
	assert.NotNil(t, got)

	purged, err = cache.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)
}

func TestFileCacheClearUnknownHandleIsNoop(t *testing.T) {
	cache, _ := newTestFileCache(t)
	assert.NoError(t, cache.Clear(context.Background(), "never-existed"))
}
