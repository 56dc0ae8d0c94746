package discount

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/order-management/internal/domain/customer"
	"github.com/xenking/order-management/internal/domain/money"
	"github.com/xenking/order-management/internal/domain/order"
)

var (
	// ErrNilOrder and ErrNilCustomer reject absent engine inputs.
	ErrNilOrder    = errors.New("order is required")
	ErrNilCustomer = errors.New("customer is required")
	// ErrNegativeDiscount indicates a misbehaving strategy produced a
	// negative total.
	ErrNegativeDiscount = errors.New("calculated discount cannot be negative")
)

// Engine evaluates an ordered strategy set. Strategies are advisory and
// commutative: every applicable strategy contributes, and the sum is
// clamped to the order amount.
type Engine struct {
	strategies []Strategy
}

// NewEngine creates an Engine over the given strategies. The slice order
// is the evaluation order.
func NewEngine(strategies []Strategy) *Engine {
	return &Engine{strategies: strategies}
}

// Calculate computes the total discount for the order and customer.
//
// For each strategy, Applicable is checked first and Calculate runs only
// when it returns true, so an expensive or failing calculator is never
// invoked needlessly. A strategy error aborts the whole calculation;
// there is no partial aggregation.
func (e *Engine) Calculate(o *order.Order, c *customer.Customer) (money.Money, error) {
	if o == nil {
		return money.Money{}, ErrNilOrder
	}
	if c == nil {
		return money.Money{}, ErrNilCustomer
	}

	total := decimal.Zero
	for _, s := range e.strategies {
		if !s.Applicable(o, c) {
			continue
		}

		amount, err := s.Calculate(o, c)
		if err != nil {
			return money.Money{}, errors.Wrap(err, "calculate discount")
		}
		total = total.Add(amount)
	}

	// Clamp to the order amount so the discount can never exceed it.
	clamped := decimal.Min(total, o.Amount.Amount)
	if clamped.IsNegative() {
		return money.Money{}, ErrNegativeDiscount
	}

	return money.NewWithCurrency(clamped, o.Amount.Currency), nil
}
