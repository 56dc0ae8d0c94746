// Package discount implements the composable discount strategies and the
// engine that evaluates them against an order and its customer.
package discount

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/order-management/internal/domain/customer"
	"github.com/xenking/order-management/internal/domain/order"
)

// Strategy is a self-contained discount rule: an applicability predicate
// and a calculator. Calculate is only invoked when Applicable returned
// true. Priority is informational and does not affect evaluation order.
type Strategy interface {
	Applicable(o *order.Order, c *customer.Customer) bool
	Calculate(o *order.Order, c *customer.Customer) (decimal.Decimal, error)
	Priority() int
}

var (
	vipRate     = decimal.RequireFromString("0.15")
	loyaltyRate = decimal.RequireFromString("0.10")
	bulkRate    = decimal.RequireFromString("0.05")

	bulkThreshold    = decimal.NewFromInt(500)
	loyaltyMinOrders = 5
)

// VIP grants 15% off for customers in the VIP segment.
type VIP struct{}

func (VIP) Applicable(_ *order.Order, c *customer.Customer) bool {
	return c.Segment == customer.SegmentVIP
}

func (VIP) Calculate(o *order.Order, _ *customer.Customer) (decimal.Decimal, error) {
	return o.Amount.Amount.Mul(vipRate), nil
}

func (VIP) Priority() int { return 1 }

// Loyalty grants 10% off for customers with more than five prior orders.
type Loyalty struct{}

func (Loyalty) Applicable(_ *order.Order, c *customer.Customer) bool {
	return c.TotalOrders > loyaltyMinOrders
}

func (Loyalty) Calculate(o *order.Order, _ *customer.Customer) (decimal.Decimal, error) {
	return o.Amount.Amount.Mul(loyaltyRate), nil
}

func (Loyalty) Priority() int { return 2 }

// Bulk grants 5% off for orders above 500.
type Bulk struct{}

func (Bulk) Applicable(o *order.Order, _ *customer.Customer) bool {
	return o.Amount.Amount.GreaterThan(bulkThreshold)
}

func (Bulk) Calculate(o *order.Order, _ *customer.Customer) (decimal.Decimal, error) {
	return o.Amount.Amount.Mul(bulkRate), nil
}

func (Bulk) Priority() int { return 3 }

// DefaultStrategies returns the standard strategy set in its canonical
// registration order.
func DefaultStrategies() []Strategy {
	return []Strategy{VIP{}, Loyalty{}, Bulk{}}
}
