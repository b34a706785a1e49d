// Package kv defines the typed key-value persistence interface shared by
// every agent namespace, plus a Redis-backed implementation and an
// in-memory fallback with identical semantics for tests and local runs.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get/HGet when the key or field is absent.
var ErrNotFound = errors.New("kv: not found")

// Namespaced key prefixes and TTLs from spec.md §4.2 / §6.
const (
	TTLHeartbeat   = 60 * time.Second
	TTLRewards     = time.Hour
	TTLStuck       = 5 * time.Minute
	TTLAgentState  = 24 * time.Hour
	LeaderboardKey = "leaderboard"
)

// AgentKey builds the namespaced key "agent:{id}:<suffix>" spec.md §6
// requires for every per-agent record.
func AgentKey(agentID, suffix string) string {
	return "agent:" + agentID + ":" + suffix
}

// LeaderboardKeyFor builds "leaderboard:<kind>" for a shared sorted set.
func LeaderboardKeyFor(kind string) string {
	return LeaderboardKey + ":" + kind
}

// Store is the typed KV interface. Every operation is safe for concurrent
// use by multiple agent namespaces; callers serialize only within their
// own namespace.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)

	HGet(ctx context.Context, key, field string) (string, error)
	HSet(ctx context.Context, key, field, value string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key, field string) error

	LPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LTrim(ctx context.Context, key string, start, stop int64) error
	LLen(ctx context.Context, key string) (int64, error)

	SAdd(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SRem(ctx context.Context, key string, members ...string) error

	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZScore(ctx context.Context, key, member string) (float64, error)

	Incr(ctx context.Context, key string) (int64, error)
	IncrBy(ctx context.Context, key string, delta int64) (int64, error)
	IncrByFloat(ctx context.Context, key string, delta float64) (float64, error)

	// DeletePrefix removes every key under the given prefix, used by
	// agent reset to clear "agent:{id}:*" in one call.
	DeletePrefix(ctx context.Context, prefix string) error

	Close() error
}
