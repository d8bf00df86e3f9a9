package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/debt_settlement_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// DateLayout is the ISO date format used for rate keys and cache file names.
const DateLayout = "2006-01-02"

// ExchangeRate states that on Date, 1 unit of From equals Rate units of To.
// Identity is (Date, From, To); Rate is not part of it.
type ExchangeRate struct {
	Date time.Time       `json:"date"`
	From string          `json:"fromCurrencyCode"`
	To   string          `json:"toCurrencyCode"`
	Rate decimal.Decimal `json:"rate"`
}

// RateKey identifies an exchange rate fact.
type RateKey struct {
	Date string
	From string
	To   string
}

func (k RateKey) String() string {
	return fmt.Sprintf("%s.%s.%s", k.Date, k.From, k.To)
}

// CurrencyPair is an ordered (from, to) pair.
type CurrencyPair struct {
	From string
	To   string
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO date (YYYY-MM-DD).
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date '%s': %v", apperrors.ErrValidation, s, err)
	}
	return t, nil
}

// NewExchangeRate validates and builds an exchange rate. The date is truncated to a calendar day.
func NewExchangeRate(date time.Time, from, to string, rate decimal.Decimal) (ExchangeRate, error) {
	if err := ValidateCurrencyCode(from); err != nil {
		return ExchangeRate{}, err
	}
	if err := ValidateCurrencyCode(to); err != nil {
		return ExchangeRate{}, err
	}
	if !rate.IsPositive() {
		return ExchangeRate{}, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if from == to && !rate.Equal(decimal.NewFromInt(1)) {
		return ExchangeRate{}, fmt.Errorf("%w: exchange rate from %s to itself must be 1", apperrors.ErrValidation, from)
	}
	return ExchangeRate{Date: DateOnly(date), From: from, To: to, Rate: rate}, nil
}

// Key returns the identity of the rate.
func (r ExchangeRate) Key() RateKey {
	return RateKey{Date: r.Date.Format(DateLayout), From: r.From, To: r.To}
}

// Pair returns the currency pair of the rate.
func (r ExchangeRate) Pair() CurrencyPair {
	return CurrencyPair{From: r.From, To: r.To}
}

// Inverse returns the rate for the opposite direction on the same date.
func (r ExchangeRate) Inverse() ExchangeRate {
	return ExchangeRate{Date: r.Date, From: r.To, To: r.From, Rate: decimal.NewFromInt(1).Div(r.Rate)}
}

// Convert converts m, which must be in From, into To, rounding to To's precision.
func (r ExchangeRate) Convert(m Money) (Money, error) {
	if m.Currency != r.From {
		return Money{}, fmt.Errorf("%w: rate %s cannot convert %s", apperrors.ErrCurrencyMismatch, r.Key(), m.Currency)
	}
	return NewMoney(m.Amount.Mul(r.Rate), r.To), nil
}
