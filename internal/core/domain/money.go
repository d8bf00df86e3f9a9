package domain

import (
	"fmt"

	"github.com/SscSPs/debt_settlement_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount tied to a currency.
// Amount is always rounded half-up to the currency's canonical precision.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewMoney rounds amount to the precision of currency.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount.Round(CurrencyPrecision(currency)), Currency: currency}
}

// ParseMoney parses a decimal string into Money.
func ParseMoney(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("%w: invalid amount '%s': %v", apperrors.ErrValidation, amount, err)
	}
	return NewMoney(d, currency), nil
}

// ZeroMoney returns a zero amount in currency.
func ZeroMoney(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// SetAmount returns a copy of m holding the freshly rounded amount.
func (m Money) SetAmount(amount decimal.Decimal) Money {
	return NewMoney(amount, m.Currency)
}

// Precision returns the number of fraction digits of m's currency.
func (m Money) Precision() int32 {
	return CurrencyPrecision(m.Currency)
}

// Cent returns the smallest representable unit of m's currency, e.g. 0.01 for EUR and 1 for JPY.
func (m Money) Cent() decimal.Decimal {
	return decimal.New(1, -m.Precision())
}

// MinorUnits returns the amount expressed in the smallest unit of the currency.
func (m Money) MinorUnits() int64 {
	return m.Amount.Shift(m.Precision()).IntPart()
}

// SameCurrency reports whether m and o are denominated in the same currency.
func (m Money) SameCurrency(o Money) bool {
	return m.Currency == o.Currency
}

// Cmp compares two amounts of the same currency.
func (m Money) Cmp(o Money) (int, error) {
	if !m.SameCurrency(o) {
		return 0, fmt.Errorf("%w: cannot compare %s with %s", apperrors.ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	return m.Amount.Cmp(o.Amount), nil
}

// Equal reports whether m and o have the same currency and amount.
func (m Money) Equal(o Money) bool {
	return m.SameCurrency(o) && m.Amount.Equal(o.Amount)
}

// Add returns m + o.
func (m Money) Add(o Money) (Money, error) {
	if !m.SameCurrency(o) {
		return Money{}, fmt.Errorf("%w: cannot add %s to %s", apperrors.ErrCurrencyMismatch, o.Currency, m.Currency)
	}
	return NewMoney(m.Amount.Add(o.Amount), m.Currency), nil
}

// Sub returns m - o.
func (m Money) Sub(o Money) (Money, error) {
	if !m.SameCurrency(o) {
		return Money{}, fmt.Errorf("%w: cannot subtract %s from %s", apperrors.ErrCurrencyMismatch, o.Currency, m.Currency)
	}
	return NewMoney(m.Amount.Sub(o.Amount), m.Currency), nil
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

// Abs returns |m|.
func (m Money) Abs() Money {
	return Money{Amount: m.Amount.Abs(), Currency: m.Currency}
}

func (m Money) IsPositive() bool { return m.Amount.IsPositive() }
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }
func (m Money) IsZero() bool     { return m.Amount.IsZero() }

// String renders the amount with its fixed precision followed by the currency code.
func (m Money) String() string {
	return m.Amount.StringFixed(m.Precision()) + " " + m.Currency
}
