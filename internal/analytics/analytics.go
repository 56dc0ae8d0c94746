// Package analytics derives summary statistics from order snapshots and
// memoizes them through the cache layer.
package analytics

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/order-management/internal/cache"
	"github.com/xenking/order-management/internal/domain/order"
)

// Report is the analytics response shape.
type Report struct {
	AverageOrderValue      decimal.Decimal `json:"averageOrderValue"`
	AverageFulfillmentTime time.Duration   `json:"averageFulfillmentTime"`
	TotalOrders            int             `json:"totalOrders"`
	TotalRevenue           decimal.Decimal `json:"totalRevenue"`
	OrdersByStatus         map[string]int  `json:"ordersByStatus"`
}

// zeroReport is returned for empty order sets instead of an error.
func zeroReport() Report {
	return Report{
		AverageOrderValue: decimal.Zero,
		TotalRevenue:      decimal.Zero,
		OrdersByStatus:    map[string]int{},
	}
}

// Compute derives a Report from the given orders. Orders that were never
// fulfilled are excluded from the fulfillment-time average, not counted
// as zero.
func Compute(orders []*order.Order) Report {
	if len(orders) == 0 {
		return zeroReport()
	}

	revenue := decimal.Zero
	for _, o := range orders {
		revenue = revenue.Add(o.FinalAmount().Amount)
	}

	var fulfilled time.Duration
	fulfilledCount := 0
	for _, o := range orders {
		if elapsed, ok := o.FulfillmentTime(); ok {
			fulfilled += elapsed
			fulfilledCount++
		}
	}

	avgFulfillment := time.Duration(0)
	if fulfilledCount > 0 {
		avgFulfillment = fulfilled / time.Duration(fulfilledCount)
	}

	return Report{
		AverageOrderValue:      revenue.Div(decimal.NewFromInt(int64(len(orders)))),
		AverageFulfillmentTime: avgFulfillment,
		TotalOrders:            len(orders),
		TotalRevenue:           revenue,
		OrdersByStatus: lo.CountValuesBy(orders, func(o *order.Order) string {
			return string(o.Status)
		}),
	}
}

// Config holds the memoization TTL policy. Historical aggregates are
// immutable once the window closes, so they are cached far longer than
// live-window aggregates that still change as orders arrive.
type Config struct {
	OverviewTTL      time.Duration
	LiveWindowTTL    time.Duration
	HistoricalTTL    time.Duration
	HistoricalCutoff time.Duration
}

// DefaultConfig returns the standard TTL policy.
func DefaultConfig() Config {
	return Config{
		OverviewTTL:      5 * time.Minute,
		LiveWindowTTL:    time.Hour,
		HistoricalTTL:    24 * time.Hour,
		HistoricalCutoff: 24 * time.Hour,
	}
}

// OrderSource provides the order snapshots the aggregator works over.
type OrderSource interface {
	FindAll(ctx context.Context) ([]*order.Order, error)
	FindByCreatedRange(ctx context.Context, start, end time.Time) ([]*order.Order, error)
}

// Service computes and memoizes analytics reports. Cache failures on
// either the read or write path degrade to a miss; they never fail the
// query.
type Service struct {
	orders OrderSource
	cache  cache.Cache
	cfg    Config
	lg     *zap.Logger
	now    func() time.Time
}

// NewService creates an analytics Service.
func NewService(orders OrderSource, c cache.Cache, cfg Config, lg *zap.Logger) *Service {
	return &Service{
		orders: orders,
		cache:  c,
		cfg:    cfg,
		lg:     lg,
		now:    time.Now,
	}
}

// Overview computes analytics over all orders, memoized under the
// order_analytics key.
func (s *Service) Overview(ctx context.Context) (Report, error) {
	if report, ok := s.cached(ctx, cache.AnalyticsKey); ok {
		return report, nil
	}

	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return Report{}, errors.Wrap(err, "load orders")
	}

	report := Compute(orders)
	s.memoize(ctx, cache.AnalyticsKey, report, s.cfg.OverviewTTL)
	return report, nil
}

// ByDateRange computes analytics over orders created inside [start, end].
// Bounds are normalized to whole UTC days with an exclusive end. Ranges
// that ended before the historical cutoff get the long TTL.
func (s *Service) ByDateRange(ctx context.Context, start, end time.Time) (Report, error) {
	normStart, normEnd := normalizeRange(start, end)
	key := cache.AnalyticsRangeKey(start, end)

	if report, ok := s.cached(ctx, key); ok {
		return report, nil
	}

	orders, err := s.orders.FindByCreatedRange(ctx, normStart, normEnd)
	if err != nil {
		return Report{}, errors.Wrap(err, "load orders for range")
	}
	if len(orders) == 0 {
		s.lg.Debug("No orders in analytics range",
			zap.Time("start", normStart),
			zap.Time("end", normEnd),
		)
		return zeroReport(), nil
	}

	report := Compute(orders)

	ttl := s.cfg.LiveWindowTTL
	if s.isHistorical(end) {
		ttl = s.cfg.HistoricalTTL
	}
	s.memoize(ctx, key, report, ttl)

	return report, nil
}

// cached reads a memoized report; any cache error is logged and treated
// as a miss.
func (s *Service) cached(ctx context.Context, key string) (Report, bool) {
	var report Report
	hit, err := s.cache.Get(ctx, key, &report)
	if err != nil {
		s.lg.Warn("Analytics cache read failed", zap.String("key", key), zap.Error(err))
		return Report{}, false
	}
	return report, hit
}

func (s *Service) memoize(ctx context.Context, key string, report Report, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, report, ttl); err != nil {
		s.lg.Warn("Analytics cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// isHistorical reports whether the range end is older than the cutoff,
// making the aggregate immutable.
func (s *Service) isHistorical(end time.Time) bool {
	return end.Before(s.now().Add(-s.cfg.HistoricalCutoff))
}

// normalizeRange truncates both bounds to UTC day boundaries, with the
// end exclusive at the start of the following day.
func normalizeRange(start, end time.Time) (time.Time, time.Time) {
	s := start.UTC().Truncate(24 * time.Hour)
	e := end.UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	return s, e
}
