// Package cache implements the faucet's cache/rate store: atomic
// counters with TTL, wallet last-request tracking, and generic short-
// lived key/value state, with an in-memory fallback when no remote
// backend is reachable. Operations never return an error to the
// caller; on backend trouble they degrade to fail-open sentinels
// instead.
package cache

import (
	"context"
	"time"
)

// DefaultKeyPrefix is prepended to every key this store touches.
const DefaultKeyPrefix = "suifx:"

// Store is the cache/rate-limit backend's capability set.
type Store interface {
	// Incr atomically increments key, setting an expiry of windowMs on
	// first hit, and returns the new count and remaining TTL in seconds.
	Incr(ctx context.Context, key string, windowMs int64) (count int64, ttlSeconds int64)

	// Get returns the current count and remaining TTL for key, or
	// (0, 0) if key does not exist.
	Get(ctx context.Context, key string) (count int64, ttlSeconds int64)

	// Reset clears key.
	Reset(ctx context.Context, key string)

	// SetCounter adjusts a named daily-metrics mirror counter by delta.
	SetCounter(ctx context.Context, name string, delta int64)

	// GetCounter reads a named daily-metrics mirror counter.
	GetCounter(ctx context.Context, name string) int64

	// TrackLastRequest records ts as the last request time for
	// walletAddress, with a TTL equal to windowMs.
	TrackLastRequest(ctx context.Context, walletAddress string, ts time.Time, windowMs int64)

	// GetLastRequest returns the last recorded request time for
	// walletAddress, or the zero time if none is tracked (or it expired).
	GetLastRequest(ctx context.Context, walletAddress string) (time.Time, bool)

	// SetKV stores value under key for ttl.
	SetKV(ctx context.Context, key string, value string, ttl time.Duration)

	// GetKV retrieves the value stored under key, if any and not expired.
	GetKV(ctx context.Context, key string) (string, bool)

	// DeleteKV removes key.
	DeleteKV(ctx context.Context, key string)

	// HealthCheck reports whether the backend is currently reachable and
	// the round-trip latency of the probe.
	HealthCheck(ctx context.Context) (healthy bool, latency time.Duration)

	// Flush removes every key under this store's prefix (MemoryStore
	// clears all of its entries). Used by the admin cache-flush
	// operation; never touches persistent storage.
	Flush(ctx context.Context) error

	// Close releases any held resources (connections, background
	// goroutines).
	Close() error
}

// RateLimitKey builds the rate_limit:<dimension>:<id> key.
func RateLimitKey(prefix, dimension, id string) string {
	return prefix + "rate_limit:" + dimension + ":" + id
}

// WalletKey builds the wallets:<address> key.
func WalletKey(prefix, address string) string {
	return prefix + "wallets:" + address
}

// MetricsKey builds the metrics:<name> key.
func MetricsKey(prefix, name string) string {
	return prefix + "metrics:" + name
}
