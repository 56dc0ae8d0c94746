package postgres_test

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"go.uber.org/goleak"

	"github.com/xenking/order-management/internal/domain/customer"
	"github.com/xenking/order-management/internal/storage/postgres"
)

type customerRepositorySuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	repo      *postgres.CustomerRepository
	container testcontainers.Container
}

func TestCustomerRepositorySuite(t *testing.T) {
	defer goleak.VerifyNone(t)

	suite.Run(t, new(customerRepositorySuite))
}

func (suite *customerRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startPostgres(ctx)
	suite.NoError(err)

	suite.pool, err = postgres.NewPool(ctx, connStr)
	suite.NoError(err)

	suite.NoError(postgres.RunMigrations(ctx, suite.pool))

	suite.repo = postgres.NewCustomerRepository(suite.pool)
}

func (suite *customerRepositorySuite) TearDownSuite() {
	ctx := suite.T().Context()

	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

func (suite *customerRepositorySuite) TestCreateAndFind() {
	t := suite.T()
	ctx := t.Context()

	c := fakeCustomer()
	require.NoError(t, suite.repo.Create(ctx, c))

	actual, err := suite.repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assertCustomer(t, c, actual)
}

func (suite *customerRepositorySuite) TestFindMissing() {
	t := suite.T()

	_, err := suite.repo.FindByID(t.Context(), gofakeit.UUID())
	assert.ErrorIs(t, err, customer.ErrNotFound)
}

func (suite *customerRepositorySuite) TestUpdate() {
	t := suite.T()
	ctx := t.Context()

	c := fakeCustomer()
	require.NoError(t, suite.repo.Create(ctx, c))

	c.RecordOrder(time.Now())
	c.RecordOrder(time.Now())
	c.RecordOrder(time.Now())
	require.NoError(t, suite.repo.Update(ctx, c))

	actual, err := suite.repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.SegmentRegular, actual.Segment)
	assert.Equal(t, 3, actual.TotalOrders)
	assert.False(t, actual.LastOrderAt.IsZero())
}

func (suite *customerRepositorySuite) TestUpdateMissing() {
	t := suite.T()

	err := suite.repo.Update(t.Context(), fakeCustomer())
	assert.ErrorIs(t, err, customer.ErrNotFound)
}

func fakeCustomer() *customer.Customer {
	return &customer.Customer{
		ID:        gofakeit.UUID(),
		Name:      gofakeit.Name(),
		Email:     gofakeit.Email(),
		Segment:   customer.SegmentNew,
		CreatedAt: time.Now().UTC(),
	}
}

func assertCustomer(t *testing.T, expected, actual *customer.Customer) {
	t.Helper()

	opts := cmp.Options{
		cmpopts.EquateApproxTime(time.Millisecond),
	}

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)
}
