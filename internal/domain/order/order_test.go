package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/order-management/internal/domain/money"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func usd(v string) money.Money {
	return money.New(d(v))
}

func mustItem(t *testing.T, name string, price string, qty int) Item {
	t.Helper()
	item, err := NewItem(name, usd(price), qty)
	require.NoError(t, err)
	return item
}

// inStatus builds an order advanced along the happy path to the given status.
func inStatus(t *testing.T, status Status) *Order {
	t.Helper()
	o := New("cust-1", "", time.Now())

	path := map[Status][]Status{
		StatusPending:    {},
		StatusConfirmed:  {StatusConfirmed},
		StatusProcessing: {StatusConfirmed, StatusProcessing},
		StatusShipped:    {StatusConfirmed, StatusProcessing, StatusShipped},
		StatusDelivered:  {StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered},
		StatusCancelled:  {StatusCancelled},
	}
	for _, next := range path[status] {
		_, err := o.UpdateStatus(next, time.Now())
		require.NoError(t, err)
	}
	require.Equal(t, status, o.Status)
	return o
}

func TestNewItem_Validation(t *testing.T) {
	tests := []struct {
		name    string
		product string
		price   money.Money
		qty     int
		wantErr error
	}{
		{name: "valid", product: "Widget", price: usd("9.99"), qty: 1},
		{name: "empty product name", product: "", price: usd("9.99"), qty: 1, wantErr: ErrEmptyProductName},
		{name: "zero price", product: "Widget", price: usd("0"), qty: 1, wantErr: ErrInvalidPrice},
		{name: "negative price", product: "Widget", price: usd("-1"), qty: 1, wantErr: ErrInvalidPrice},
		{name: "zero quantity", product: "Widget", price: usd("9.99"), qty: 0, wantErr: ErrInvalidQuantity},
		{name: "negative quantity", product: "Widget", price: usd("9.99"), qty: -2, wantErr: ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewItem(tt.product, tt.price, tt.qty)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestAddItem_RecalculatesAmount(t *testing.T) {
	o := New("cust-1", "", time.Now())
	require.True(t, o.Amount.IsZero())

	require.NoError(t, o.AddItem(mustItem(t, "Widget", "10.00", 2)))
	assert.True(t, o.Amount.Equal(usd("20.00")))

	require.NoError(t, o.AddItem(mustItem(t, "Gadget", "5.50", 3)))
	assert.True(t, o.Amount.Equal(usd("36.50")))
	assert.Len(t, o.Items, 2)
}

func TestAddItem_CurrencyMismatch(t *testing.T) {
	o := New("cust-1", "", time.Now())
	require.NoError(t, o.AddItem(mustItem(t, "Widget", "10.00", 1)))

	eur, err := NewItem("Import", money.NewWithCurrency(d("5"), "EUR"), 1)
	require.NoError(t, err)

	err = o.AddItem(eur)
	require.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		name     string
		discount money.Money
		wantErr  error
	}{
		{name: "valid", discount: usd("25")},
		{name: "full amount", discount: usd("100")},
		{name: "zero", discount: usd("0")},
		{name: "negative", discount: usd("-1"), wantErr: ErrNegativeDiscount},
		{name: "exceeds amount", discount: usd("100.01"), wantErr: ErrDiscountExceedsAmount},
		{name: "wrong currency", discount: money.NewWithCurrency(d("10"), "EUR"), wantErr: money.ErrCurrencyMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New("cust-1", "", time.Now())
			require.NoError(t, o.AddItem(mustItem(t, "Widget", "100.00", 1)))

			err := o.ApplyDiscount(tt.discount)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, o.DiscountAmount.IsZero(), "failed discount must not mutate state")
				return
			}
			require.NoError(t, err)
			assert.True(t, o.DiscountAmount.Equal(tt.discount))
			assert.Equal(t, StatusPending, o.Status, "discount must not change status")
		})
	}
}

func TestFinalAmount(t *testing.T) {
	o := New("cust-1", "", time.Now())
	require.NoError(t, o.AddItem(mustItem(t, "Widget", "100.00", 1)))
	require.NoError(t, o.ApplyDiscount(usd("30")))

	assert.True(t, o.FinalAmount().Equal(usd("70")))
}

func TestUpdateStatus_TransitionMatrix(t *testing.T) {
	all := []Status{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

	allowed := map[Status]map[Status]bool{
		StatusPending:    {StatusConfirmed: true, StatusCancelled: true},
		StatusConfirmed:  {StatusProcessing: true, StatusCancelled: true},
		StatusProcessing: {StatusShipped: true, StatusCancelled: true},
		StatusShipped:    {StatusDelivered: true},
		StatusDelivered:  {},
		StatusCancelled:  {},
	}

	for _, from := range all {
		for _, to := range all {
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				o := inStatus(t, from)
				before := *o

				event, err := o.UpdateStatus(to, time.Now())
				if allowed[from][to] {
					require.NoError(t, err)
					assert.Equal(t, to, o.Status)
					assert.Equal(t, from, event.OldStatus)
					assert.Equal(t, to, event.NewStatus)
					assert.Equal(t, o.ID, event.OrderID)
					return
				}

				var itErr *InvalidTransitionError
				require.ErrorAs(t, err, &itErr)
				assert.Equal(t, from, itErr.From)
				assert.Equal(t, to, itErr.To)
				assert.Equal(t, before.Status, o.Status, "failed transition must not mutate state")
				assert.Equal(t, before.FulfilledAt, o.FulfilledAt)
			})
		}
	}
}

func TestUpdateStatus_DeliveredStampsFulfilledAt(t *testing.T) {
	o := inStatus(t, StatusShipped)
	require.Nil(t, o.FulfilledAt)

	delivered := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event, err := o.UpdateStatus(StatusDelivered, delivered)
	require.NoError(t, err)

	require.NotNil(t, o.FulfilledAt)
	assert.Equal(t, delivered, *o.FulfilledAt)
	assert.Equal(t, delivered, event.OccurredAt)

	// Delivered is terminal; no later mutation can touch the stamp.
	_, err = o.UpdateStatus(StatusCancelled, time.Now())
	require.Error(t, err)
	assert.Equal(t, delivered, *o.FulfilledAt)
}

func TestFulfillmentTime(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	o := New("cust-1", "", created)
	_, ok := o.FulfillmentTime()
	assert.False(t, ok, "unfulfilled order has no fulfillment time")

	for _, next := range []Status{StatusConfirmed, StatusProcessing, StatusShipped} {
		_, err := o.UpdateStatus(next, created)
		require.NoError(t, err)
	}
	_, err := o.UpdateStatus(StatusDelivered, created.Add(3*time.Hour))
	require.NoError(t, err)

	elapsed, ok := o.FulfillmentTime()
	require.True(t, ok)
	assert.Equal(t, 3*time.Hour, elapsed)
}

func TestFulfillmentTime_ZeroElapsedIsDistinct(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	o := New("cust-1", "", created)
	for _, next := range []Status{StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered} {
		_, err := o.UpdateStatus(next, created)
		require.NoError(t, err)
	}

	elapsed, ok := o.FulfillmentTime()
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), elapsed)
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, status)

	_, err = ParseStatus("teleported")
	require.Error(t, err)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusShipped.IsTerminal())
}
