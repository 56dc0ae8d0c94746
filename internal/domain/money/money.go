// Package money provides a currency-tagged decimal value object.
//
// All arithmetic is exact (shopspring/decimal) and every operation returns
// a new value; a Money is never mutated in place.
package money

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency is specified.
const DefaultCurrency = "USD"

// ErrCurrencyMismatch is returned by arithmetic on values with
// different currencies.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// Money is an immutable monetary amount in a single currency.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// Zero is the zero amount in the default currency.
var Zero = Money{Amount: decimal.Zero, Currency: DefaultCurrency}

// New returns the given amount in the default currency.
func New(amount decimal.Decimal) Money {
	return Money{Amount: amount, Currency: DefaultCurrency}
}

// NewWithCurrency returns the given amount tagged with currency.
func NewWithCurrency(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// Add returns m + other. Both values must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, errors.Wrapf(ErrCurrencyMismatch, "add %s to %s", other.Currency, m.Currency)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub returns m - other. Both values must share a currency.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, errors.Wrapf(ErrCurrencyMismatch, "subtract %s from %s", other.Currency, m.Currency)
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// MulScalar returns m scaled by factor, keeping the currency.
func (m Money) MulScalar(factor decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(factor), Currency: m.Currency}
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// Equal reports whether both amount and currency match.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.String(), m.Currency)
}
