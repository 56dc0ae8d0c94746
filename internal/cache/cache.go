// Package cache provides the key-value cache port used for derived
// views, an in-memory implementation, a Redis implementation, and the
// coordinator that maps order mutations to the keys they invalidate.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is applied when Set is called without a positive TTL, so
// nothing is ever cached forever by accident.
const DefaultTTL = 30 * time.Minute

// Cache is a key-value store with per-key expiration. Values round-trip
// through JSON, so both backends share the same semantics; dest must be
// a pointer. Keys are opaque strings built by keys.go.
//
// Implementations must tolerate concurrent Get/Set/Remove on the same
// key; last write wins.
type Cache interface {
	// Get reads key into dest. The bool reports a hit; an expired or
	// missing key is (false, nil), not an error.
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set stores value under key. A non-positive ttl selects DefaultTTL.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Remove evicts key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// RemoveByPrefix evicts every key starting with prefix.
	RemoveByPrefix(ctx context.Context, prefix string) error
}
