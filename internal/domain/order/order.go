// Package order holds the order aggregate: line items, amount totals,
// discounts, and the status state machine.
package order

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/order-management/internal/domain/money"
)

// Sentinel errors for order validation.
var (
	ErrNotFound              = errors.New("order not found")
	ErrEmptyProductName      = errors.New("product name required")
	ErrInvalidPrice          = errors.New("price must be greater than 0")
	ErrInvalidQuantity       = errors.New("quantity must be greater than 0")
	ErrNegativeDiscount      = errors.New("discount amount cannot be negative")
	ErrDiscountExceedsAmount = errors.New("discount cannot exceed order amount")
)

// InvalidTransitionError indicates an illegal status change.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

// Item is a single line item. Items are created only through NewItem and
// never mutated afterwards; they belong exclusively to their order.
type Item struct {
	ProductName string
	Price       money.Money
	Quantity    int
}

// NewItem validates and constructs a line item.
func NewItem(productName string, price money.Money, quantity int) (Item, error) {
	if productName == "" {
		return Item{}, ErrEmptyProductName
	}
	if !price.Amount.IsPositive() {
		return Item{}, errors.Wrapf(ErrInvalidPrice, "product %s", productName)
	}
	if quantity <= 0 {
		return Item{}, errors.Wrapf(ErrInvalidQuantity, "product %s", productName)
	}
	return Item{ProductName: productName, Price: price, Quantity: quantity}, nil
}

// TotalPrice returns price * quantity.
func (i Item) TotalPrice() money.Money {
	return i.Price.MulScalar(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the aggregate root. Amount always equals the sum of item
// totals and 0 <= DiscountAmount <= Amount.
type Order struct {
	ID             string
	CustomerID     string
	Items          []Item
	Amount         money.Money
	DiscountAmount money.Money
	Status         Status
	Notes          string
	CreatedAt      time.Time
	FulfilledAt    *time.Time
}

// New creates an empty pending order for the given customer.
func New(customerID, notes string, now time.Time) *Order {
	return &Order{
		ID:             uuid.New().String(),
		CustomerID:     customerID,
		Amount:         money.Zero,
		DiscountAmount: money.Zero,
		Status:         StatusPending,
		Notes:          notes,
		CreatedAt:      now,
	}
}

// AddItem appends the item and recomputes Amount as the sum of all item
// totals. The recomputation is always from scratch so the stored amount
// can never drift from the items.
func (o *Order) AddItem(item Item) error {
	items := append(o.Items, item)

	amount := money.NewWithCurrency(decimal.Zero, items[0].Price.Currency)
	for _, it := range items {
		sum, err := amount.Add(it.TotalPrice())
		if err != nil {
			return errors.Wrap(err, "recalculate amount")
		}
		amount = sum
	}

	o.Items = items
	o.Amount = amount
	return nil
}

// ApplyDiscount sets the discount amount after validating it against the
// order total. Applying a discount never changes the status.
func (o *Order) ApplyDiscount(discount money.Money) error {
	if discount.Currency != o.Amount.Currency {
		return errors.Wrapf(money.ErrCurrencyMismatch, "discount in %s on %s order", discount.Currency, o.Amount.Currency)
	}
	if discount.IsNegative() {
		return ErrNegativeDiscount
	}
	if discount.Amount.GreaterThan(o.Amount.Amount) {
		return ErrDiscountExceedsAmount
	}

	o.DiscountAmount = discount
	return nil
}

// UpdateStatus advances the state machine. On an illegal transition it
// returns InvalidTransitionError and leaves the order untouched. On
// success it returns the emitted status-changed event; reaching
// Delivered stamps FulfilledAt once (Delivered is terminal, so the stamp
// can never be overwritten).
func (o *Order) UpdateStatus(target Status, now time.Time) (StatusChangedEvent, error) {
	if !canTransition(o.Status, target) {
		return StatusChangedEvent{}, &InvalidTransitionError{From: o.Status, To: target}
	}

	old := o.Status
	o.Status = target

	if target == StatusDelivered {
		fulfilled := now
		o.FulfilledAt = &fulfilled
	}

	return StatusChangedEvent{
		OrderID:    o.ID,
		OldStatus:  old,
		NewStatus:  target,
		OccurredAt: now,
	}, nil
}

// FinalAmount returns Amount minus DiscountAmount. ApplyDiscount keeps
// the discount within [0, Amount] and in the same currency, so the
// subtraction cannot fail.
func (o *Order) FinalAmount() money.Money {
	return money.NewWithCurrency(o.Amount.Amount.Sub(o.DiscountAmount.Amount), o.Amount.Currency)
}

// FulfillmentTime returns the elapsed time between creation and
// fulfillment. The second return value distinguishes an unfulfilled
// order from one fulfilled in zero elapsed time.
func (o *Order) FulfillmentTime() (time.Duration, bool) {
	if o.FulfilledAt == nil {
		return 0, false
	}
	return o.FulfilledAt.Sub(o.CreatedAt), true
}
