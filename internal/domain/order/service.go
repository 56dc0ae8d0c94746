package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/order-management/internal/cache"
	"github.com/xenking/order-management/internal/domain/customer"
	"github.com/xenking/order-management/internal/domain/money"
)

// ErrEmptyItems is returned when an order is created without items.
var ErrEmptyItems = errors.New("items required")

// DiscountCalculator computes the total discount for an order and its
// customer. Implemented by the discount engine.
type DiscountCalculator interface {
	Calculate(o *Order, c *customer.Customer) (money.Money, error)
}

// CacheConfig holds the read-path memoization TTLs.
type CacheConfig struct {
	Order          time.Duration
	CustomerOrders time.Duration
	AllOrders      time.Duration
}

// DefaultCacheConfig returns the standard read-path TTLs.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Order:          10 * time.Minute,
		CustomerOrders: 5 * time.Minute,
		AllOrders:      2 * time.Minute,
	}
}

// ItemRequest is one line item of a create request.
type ItemRequest struct {
	ProductName string
	Price       decimal.Decimal
	Quantity    int
}

// CreateRequest holds the input for creating an order.
type CreateRequest struct {
	CustomerID string
	Notes      string
	Items      []ItemRequest
}

// Service encapsulates the order use cases: creation with discount
// application, status updates, and cached reads. All mutations follow
// load → mutate → persist → invalidate; invalidation runs only after a
// successful commit.
type Service struct {
	orders      Repository
	customers   customer.Repository
	discounts   DiscountCalculator
	cache       cache.Cache
	invalidator *cache.Invalidator
	ttl         CacheConfig
	lg          *zap.Logger
	now         func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(
	orders Repository,
	customers customer.Repository,
	discounts DiscountCalculator,
	c cache.Cache,
	invalidator *cache.Invalidator,
	ttl CacheConfig,
	lg *zap.Logger,
) *Service {
	return &Service{
		orders:      orders,
		customers:   customers,
		discounts:   discounts,
		cache:       c,
		invalidator: invalidator,
		ttl:         ttl,
		lg:          lg,
		now:         time.Now,
	}
}

// Create builds the aggregate from the request, applies the computed
// discount, persists it, records the order on the customer, and evicts
// the derived views.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	cust, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, errors.Wrap(err, "find customer")
	}

	now := s.now()
	o := New(req.CustomerID, req.Notes, now)
	for _, ir := range req.Items {
		item, err := NewItem(ir.ProductName, money.New(ir.Price), ir.Quantity)
		if err != nil {
			return nil, err
		}
		if err := o.AddItem(item); err != nil {
			return nil, err
		}
	}

	discount, err := s.discounts.Calculate(o, cust)
	if err != nil {
		return nil, errors.Wrap(err, "calculate discount")
	}
	if err := o.ApplyDiscount(discount); err != nil {
		return nil, err
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	// The order row is committed: derived views are stale from this
	// point even if the customer update below fails.
	defer s.invalidator.OrderChanged(ctx, o.ID, o.CustomerID)

	cust.RecordOrder(now)
	if err := s.customers.Update(ctx, cust); err != nil {
		return nil, errors.Wrap(err, "update customer")
	}

	return o, nil
}

// UpdateStatus advances the order's state machine and persists the
// result. The emitted status-changed event drives the invalidation.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, target Status) (*Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "find order")
	}

	event, err := o.UpdateStatus(target, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update order")
	}

	s.invalidator.OrderChanged(ctx, event.OrderID, o.CustomerID)

	return o, nil
}

// Get returns a single order, served from cache when possible.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	key := cache.OrderKey(id)

	var cached Order
	if hit := s.cacheGet(ctx, key, &cached); hit {
		return &cached, nil
	}

	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "find order")
	}

	s.cacheSet(ctx, key, o, s.ttl.Order)
	return o, nil
}

// ListByCustomer returns the customer's orders, newest first.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]*Order, error) {
	key := cache.CustomerOrdersKey(customerID)

	var cached []*Order
	if hit := s.cacheGet(ctx, key, &cached); hit {
		return cached, nil
	}

	orders, err := s.orders.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "find customer orders")
	}

	s.cacheSet(ctx, key, orders, s.ttl.CustomerOrders)
	return orders, nil
}

// ListAll returns every order.
func (s *Service) ListAll(ctx context.Context) ([]*Order, error) {
	var cached []*Order
	if hit := s.cacheGet(ctx, cache.AllOrdersKey, &cached); hit {
		return cached, nil
	}

	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find all orders")
	}

	s.cacheSet(ctx, cache.AllOrdersKey, orders, s.ttl.AllOrders)
	return orders, nil
}

// cacheGet treats any cache failure as a miss.
func (s *Service) cacheGet(ctx context.Context, key string, dest any) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.lg.Warn("Order cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *Service) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.lg.Warn("Order cache write failed", zap.String("key", key), zap.Error(err))
	}
}
