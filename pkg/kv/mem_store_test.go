package kv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore returns the in-memory fallback. RedisStore implements the
// identical Store interface but has no tests in this package; these tests
// pin down the semantics every implementation must share.
func newTestStore(t *testing.T) Store {
	t.Helper()
	s := NewMemStore()
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMemStore_StringGetSetDel(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "k", "v", 0))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, s.Del(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_TTLExpiresValue(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, "k", "v", 20*time.Millisecond))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	time.Sleep(40 * time.Millisecond)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_TTLReportsRemaining(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, "k", "v", 0))
	ttl, err := s.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, -1*time.Second, ttl)

	require.NoError(t, s.Expire(ctx, "k", 10*time.Second))
	ttl, err = s.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Greater(t, ttl, 5*time.Second)
}

func TestMemStore_HashOps(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.HSet(ctx, "h", "a", "1"))
	require.NoError(t, s.HSet(ctx, "h", "b", "2"))

	v, err := s.HGet(ctx, "h", "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	all, err := s.HGetAll(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, all)

	require.NoError(t, s.HDel(ctx, "h", "a"))
	_, err = s.HGet(ctx, "h", "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_ListBoundedHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.LPush(ctx, "l", "c"))
	require.NoError(t, s.LPush(ctx, "l", "b"))
	require.NoError(t, s.LPush(ctx, "l", "a"))

	all, err := s.LRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, all)

	require.NoError(t, s.LTrim(ctx, "l", 0, 1))
	all, err = s.LRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, all)

	n, err := s.LLen(ctx, "l")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestMemStore_SetOps(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SAdd(ctx, "s", "x", "y", "x"))
	members, err := s.SMembers(ctx, "s")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x", "y"}, members)

	require.NoError(t, s.SRem(ctx, "s", "x"))
	members, err = s.SMembers(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, members)
}

func TestMemStore_SortedSetIdempotentUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.ZAdd(ctx, "z", 1, "agent-1"))
	require.NoError(t, s.ZAdd(ctx, "z", 5, "agent-2"))
	require.NoError(t, s.ZAdd(ctx, "z", 9, "agent-1")) // idempotent re-score, same member

	members, err := s.ZRange(ctx, "z", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"agent-2", "agent-1"}, members)

	score, err := s.ZScore(ctx, "z", "agent-1")
	require.NoError(t, err)
	assert.Equal(t, float64(9), score)
}

func TestMemStore_IncrByAndFloat(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	v, err := s.IncrBy(ctx, "counter", 3)
	require.NoError(t, err)
	assert.EqualValues(t, 3, v)
	v, err = s.IncrBy(ctx, "counter", 4)
	require.NoError(t, err)
	assert.EqualValues(t, 7, v)

	f, err := s.IncrByFloat(ctx, "cost", 1.5)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, f, 0.0001)
	f, err = s.IncrByFloat(ctx, "cost", 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 1.75, f, 0.0001)
}

func TestMemStore_DeletePrefixClearsNamespace(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, AgentKey("agent-1", "state"), "x", 0))
	require.NoError(t, s.HSet(ctx, AgentKey("agent-1", "memstash"), "f", "v"))
	require.NoError(t, s.Set(ctx, AgentKey("agent-2", "state"), "y", 0))

	require.NoError(t, s.DeletePrefix(ctx, "agent:agent-1:"))

	_, err := s.Get(ctx, AgentKey("agent-1", "state"))
	assert.ErrorIs(t, err, ErrNotFound)
	v, err := s.Get(ctx, AgentKey("agent-2", "state"))
	require.NoError(t, err)
	assert.Equal(t, "y", v)
}

func TestAgentKeyNamespacing(t *testing.T) {
	assert.Equal(t, "agent:a1:heartbeat", AgentKey("a1", "heartbeat"))
	assert.Equal(t, "leaderboard:badges", LeaderboardKeyFor("badges"))
}
