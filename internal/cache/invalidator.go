package cache

import (
	"context"

	"go.uber.org/zap"
)

// Invalidator translates order mutations into the exact set of cache
// keys to evict. Callers must invoke it only after the mutation has been
// durably persisted: eviction is post-commit, never speculative.
//
// Eviction is best effort. A failing cache degrades to stale-until-TTL
// reads, which must never fail the business operation that triggered
// the invalidation, so errors are logged and swallowed here.
type Invalidator struct {
	cache Cache
	lg    *zap.Logger
}

// NewInvalidator creates an Invalidator over the given cache.
func NewInvalidator(c Cache, lg *zap.Logger) *Invalidator {
	return &Invalidator{cache: c, lg: lg}
}

// OrderChanged evicts every view derived from the given order: the
// order itself, its customer's order list, the full listing, and all
// analytics aggregates (a prefix sweep — analytics are derived, not
// authoritative, so over-eviction is harmless).
func (iv *Invalidator) OrderChanged(ctx context.Context, orderID, customerID string) {
	for _, key := range []string{
		OrderKey(orderID),
		CustomerOrdersKey(customerID),
		AllOrdersKey,
	} {
		if err := iv.cache.Remove(ctx, key); err != nil {
			iv.lg.Warn("Cache eviction failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	if err := iv.cache.RemoveByPrefix(ctx, AnalyticsKey); err != nil {
		iv.lg.Warn("Analytics cache sweep failed", zap.Error(err))
	}

	iv.lg.Debug("Invalidated order caches",
		zap.String("order_id", orderID),
		zap.String("customer_id", customerID),
	)
}
