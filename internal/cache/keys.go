package cache

import (
	"fmt"
	"time"
)

// Cache key grammar. The exact formats are part of the external
// contract; tooling and tests depend on them.
const (
	// AllOrdersKey caches the full order listing.
	AllOrdersKey = "all_orders"
	// AnalyticsKey caches the overall analytics report. It is also the
	// prefix of every date-range analytics key, so a prefix sweep over
	// it clears all analytics views at once.
	AnalyticsKey = "order_analytics"
)

const keyDateFormat = "2006-01-02"

// OrderKey returns the cache key for a single order.
func OrderKey(orderID string) string {
	return fmt.Sprintf("order_%s", orderID)
}

// CustomerOrdersKey returns the cache key for a customer's order list.
func CustomerOrdersKey(customerID string) string {
	return fmt.Sprintf("customer_%s_orders", customerID)
}

// AnalyticsRangeKey returns the cache key for a date-range analytics
// report.
func AnalyticsRangeKey(start, end time.Time) string {
	return fmt.Sprintf("%s_%s_%s", AnalyticsKey, start.Format(keyDateFormat), end.Format(keyDateFormat))
}
