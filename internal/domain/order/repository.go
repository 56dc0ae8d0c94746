package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository defines persistence operations for orders. Implementations
// own transactionality: a returned error means the mutation did not
// commit and no derived view may be invalidated for it.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Order, error)
	FindAll(ctx context.Context) ([]*Order, error)
	FindByCustomer(ctx context.Context, customerID string) ([]*Order, error)
	FindByCreatedRange(ctx context.Context, start, end time.Time) ([]*Order, error)
	Create(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error

	// Aggregate query helpers pushed down to the store.
	AverageOrderValue(ctx context.Context) (decimal.Decimal, error)
	AverageFulfillmentTime(ctx context.Context) (time.Duration, error)
}
