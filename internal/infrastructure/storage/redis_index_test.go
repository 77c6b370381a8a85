package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, ttl time.Duration) (*RedisIndex, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisIndex(client, "", ttl), mr
}

func TestRedisIndexRoundTrip(t *testing.T) {
	idx, mr := newTestIndex(t, 0)
	ctx := context.Background()

	got, err := idx.AlreadyProcessed(ctx, []string{"a1", "a2"})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, idx.MarkProcessed(ctx, []string{"a1", "a3"}))

	got, err = idx.AlreadyProcessed(ctx, []string{"a1", "a2", "a3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a1": true, "a3": true}, got)

	members, err := mr.Members(defaultProcessedKey)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a1", "a3"}, members)
}

func TestRedisIndexTTL(t *testing.T) {
	idx, mr := newTestIndex(t, time.Hour)

	require.NoError(t, idx.MarkProcessed(context.Background(), []string{"a1"}))
	assert.Equal(t, time.Hour, mr.TTL(defaultProcessedKey))

	mr.FastForward(2 * time.Hour)
	got, err := idx.AlreadyProcessed(context.Background(), []string{"a1"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisIndexUnavailable(t *testing.T) {
	idx, mr := newTestIndex(t, 0)
	mr.Close()

	_, err := idx.AlreadyProcessed(context.Background(), []string{"a1"})
	assert.Error(t, err)
	assert.Error(t, idx.MarkProcessed(context.Background(), []string{"a1"}))
}
