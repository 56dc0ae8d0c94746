// Package customer holds the customer entity referenced by orders.
package customer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

// Segment classifies a customer for discount purposes.
type Segment string

const (
	SegmentNew     Segment = "new"
	SegmentRegular Segment = "regular"
	SegmentVIP     Segment = "vip"
)

// Customer is an account that places orders. The order core only reads
// Segment and TotalOrders; mutation happens through RecordOrder.
type Customer struct {
	ID          string
	Name        string
	Email       string
	Segment     Segment
	TotalOrders int
	LastOrderAt time.Time
	CreatedAt   time.Time
}

// RecordOrder notes that the customer placed another order and
// recomputes the segment from the order count: 3+ orders makes a
// customer regular, 10+ makes them VIP. The segment always follows the
// count, so a customer tagged VIP by hand drops back to regular until
// their history supports it.
func (c *Customer) RecordOrder(now time.Time) {
	c.TotalOrders++
	c.LastOrderAt = now

	switch {
	case c.TotalOrders >= 10:
		c.Segment = SegmentVIP
	case c.TotalOrders >= 3:
		c.Segment = SegmentRegular
	}
}

// Repository defines persistence operations for customers.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Customer, error)
	Update(ctx context.Context, c *Customer) error
}
