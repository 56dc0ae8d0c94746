// Command seed-db fills the database with fake customers and demo orders.
// It drives the real order service so seeded data carries the same
// discounts and segment promotions production traffic would produce.
package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/order-management/internal/cache"
	"github.com/xenking/order-management/internal/discount"
	"github.com/xenking/order-management/internal/domain/customer"
	"github.com/xenking/order-management/internal/domain/order"
	"github.com/xenking/order-management/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		customers   int
		orders      int
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&customers, "customers", 20, "number of customers to create")
	flag.IntVar(&orders, "orders", 100, "number of orders to place")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, customers, orders); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string, customerCount, orderCount int) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	customerRepo := postgres.NewCustomerRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)

	slog.Info("seeding customers", slog.Int("count", customerCount))

	customerIDs := make([]string, customerCount)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range customerCount {
		customerIDs[i] = gofakeit.UUID()
		c := &customer.Customer{
			ID:        customerIDs[i],
			Name:      gofakeit.Name(),
			Email:     gofakeit.Email(),
			Segment:   customer.SegmentNew,
			CreatedAt: time.Now().UTC(),
		}
		g.Go(func() error {
			return customerRepo.Create(gctx, c)
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "seed customers")
	}

	slog.Info("placing orders", slog.Int("count", orderCount))

	// Orders go through the service so discounts and customer segment
	// promotions apply exactly as they would in production. The memory
	// cache is throwaway; only the database writes matter here.
	lg := zap.NewNop()
	mem := cache.NewMemory()
	svc := order.NewService(
		orderRepo,
		customerRepo,
		discount.NewEngine(discount.DefaultStrategies()),
		mem,
		cache.NewInvalidator(mem, lg),
		order.DefaultCacheConfig(),
		lg,
	)

	for range orderCount {
		req := order.CreateRequest{
			CustomerID: customerIDs[rand.IntN(len(customerIDs))],
			Notes:      gofakeit.Sentence(5),
		}
		for range rand.IntN(4) + 1 {
			req.Items = append(req.Items, order.ItemRequest{
				ProductName: gofakeit.ProductName(),
				Price:       decimal.NewFromFloat(gofakeit.Price(5, 200)),
				Quantity:    rand.IntN(5) + 1,
			})
		}

		o, err := svc.Create(ctx, req)
		if err != nil {
			return errors.Wrap(err, "place order")
		}

		advanceOrder(ctx, svc, o.ID)
	}

	avg, err := orderRepo.AverageOrderValue(ctx)
	if err != nil {
		return errors.Wrap(err, "average order value")
	}
	slog.Info("seeded",
		slog.Int("customers", customerCount),
		slog.Int("orders", orderCount),
		slog.String("avg_order_value", avg.StringFixed(2)),
	)

	return nil
}

// advanceOrder walks the order a random distance along its lifecycle so
// seeded data covers every status, including a few cancellations.
func advanceOrder(ctx context.Context, svc *order.Service, orderID string) {
	if rand.IntN(10) == 0 {
		_, _ = svc.UpdateStatus(ctx, orderID, order.StatusCancelled)
		return
	}

	path := []order.Status{
		order.StatusConfirmed,
		order.StatusProcessing,
		order.StatusShipped,
		order.StatusDelivered,
	}
	steps := rand.IntN(len(path) + 1)
	for _, status := range path[:steps] {
		if _, err := svc.UpdateStatus(ctx, orderID, status); err != nil {
			return
		}
	}
}
