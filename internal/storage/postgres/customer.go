package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/order-management/internal/domain/customer"
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO customers (id, name, email, segment, total_orders, last_order_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.Name, c.Email, string(c.Segment), c.TotalOrders,
		nullableTime(c.LastOrderAt), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating customer %q: %w", c.ID, err)
	}
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*customer.Customer, error) {
	var (
		c           customer.Customer
		segment     string
		lastOrderAt *time.Time
	)

	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, segment, total_orders, last_order_at, created_at
		FROM customers
		WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Email, &segment, &c.TotalOrders, &lastOrderAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("finding customer %q: %w", id, err)
	}

	c.Segment = customer.Segment(segment)
	if lastOrderAt != nil {
		c.LastOrderAt = *lastOrderAt
	}
	return &c, nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE customers
		SET name = $2, email = $3, segment = $4, total_orders = $5, last_order_at = $6
		WHERE id = $1`,
		c.ID, c.Name, c.Email, string(c.Segment), c.TotalOrders, nullableTime(c.LastOrderAt),
	)
	if err != nil {
		return fmt.Errorf("updating customer %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotFound
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
