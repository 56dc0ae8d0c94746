package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/order-management/internal/domain/money"
	"github.com/xenking/order-management/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
// Line items are serialized into the JSONB items column; they have no
// identity outside their order.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// itemRecord is the JSONB representation of a line item.
type itemRecord struct {
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

const orderColumns = `id, customer_id, items, amount, discount_amount, currency, status, notes, created_at, fulfilled_at`

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	items, err := marshalItems(o.Items)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.CustomerID, items, o.Amount.Amount, o.DiscountAmount.Amount,
		o.Amount.Currency, string(o.Status), o.Notes, o.CreatedAt, o.FulfilledAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	items, err := marshalItems(o.Items)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET items = $2, amount = $3, discount_amount = $4, currency = $5,
		    status = $6, notes = $7, fulfilled_at = $8
		WHERE id = $1`,
		o.ID, items, o.Amount.Amount, o.DiscountAmount.Amount,
		o.Amount.Currency, string(o.Status), o.Notes, o.FulfilledAt,
	)
	if err != nil {
		return fmt.Errorf("updating order %q: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("finding order %q: %w", id, err)
	}
	return o, nil
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]*order.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return collectOrders(rows)
}

func (r *OrderRepository) FindByCustomer(ctx context.Context, customerID string) ([]*order.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing orders for customer %q: %w", customerID, err)
	}
	return collectOrders(rows)
}

func (r *OrderRepository) FindByCreatedRange(ctx context.Context, start, end time.Time) ([]*order.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("listing orders in range: %w", err)
	}
	return collectOrders(rows)
}

func (r *OrderRepository) AverageOrderValue(ctx context.Context) (decimal.Decimal, error) {
	var avg decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(amount - discount_amount), 0) FROM orders`,
	).Scan(&avg)
	if err != nil {
		return decimal.Zero, fmt.Errorf("averaging order value: %w", err)
	}
	return avg, nil
}

func (r *OrderRepository) AverageFulfillmentTime(ctx context.Context) (time.Duration, error) {
	var seconds float64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (fulfilled_at - created_at))), 0)
		FROM orders
		WHERE fulfilled_at IS NOT NULL`,
	).Scan(&seconds)
	if err != nil {
		return 0, fmt.Errorf("averaging fulfillment time: %w", err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func marshalItems(items []order.Item) ([]byte, error) {
	records := make([]itemRecord, len(items))
	for i, item := range items {
		records[i] = itemRecord{
			ProductName: item.ProductName,
			Price:       item.Price.Amount,
			Quantity:    item.Quantity,
		}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshaling order items: %w", err)
	}
	return data, nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o           order.Order
		itemsJSON   []byte
		amount      decimal.Decimal
		discount    decimal.Decimal
		currency    string
		status      string
		fulfilledAt *time.Time
	)

	err := row.Scan(&o.ID, &o.CustomerID, &itemsJSON, &amount, &discount,
		&currency, &status, &o.Notes, &o.CreatedAt, &fulfilledAt)
	if err != nil {
		return nil, err
	}

	var records []itemRecord
	if err := json.Unmarshal(itemsJSON, &records); err != nil {
		return nil, fmt.Errorf("unmarshaling order items: %w", err)
	}

	o.Items = make([]order.Item, len(records))
	for i, rec := range records {
		o.Items[i] = order.Item{
			ProductName: rec.ProductName,
			Price:       money.NewWithCurrency(rec.Price, currency),
			Quantity:    rec.Quantity,
		}
	}

	o.Amount = money.NewWithCurrency(amount, currency)
	o.DiscountAmount = money.NewWithCurrency(discount, currency)
	o.Status = order.Status(status)
	o.FulfilledAt = fulfilledAt

	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]*order.Order, error) {
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}
	return orders, nil
}
