package domain_test

import (
	"testing"

	"github.com/SscSPs/debt_settlement_app/internal/apperrors"
	"github.com/SscSPs/debt_settlement_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney_RoundsToCurrencyPrecision(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     string
	}{
		{name: "EUR rounds half up", amount: "10.005", currency: "EUR", want: "10.01"},
		{name: "EUR rounds down", amount: "10.004", currency: "EUR", want: "10"},
		{name: "JPY has no fraction digits", amount: "1234.5", currency: "JPY", want: "1235"},
		{name: "KWD keeps three digits", amount: "1.23456", currency: "KWD", want: "1.235"},
		{name: "unknown currency defaults to two digits", amount: "3.14159", currency: "XTS", want: "3.14"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := domain.NewMoney(decimal.RequireFromString(tt.amount), tt.currency)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(m.Amount), "got %s", m.Amount)
			assert.Equal(t, tt.currency, m.Currency)
		})
	}
}

func TestMoney_SetAmountRounds(t *testing.T) {
	m := domain.NewMoney(decimal.NewFromInt(1), "USD").SetAmount(decimal.RequireFromString("2.345"))
	assert.Equal(t, "2.35 USD", m.String())
}

func TestMoney_Cent(t *testing.T) {
	assert.True(t, decimal.RequireFromString("0.01").Equal(domain.ZeroMoney("EUR").Cent()))
	assert.True(t, decimal.NewFromInt(1).Equal(domain.ZeroMoney("JPY").Cent()))
	assert.True(t, decimal.RequireFromString("0.001").Equal(domain.ZeroMoney("BHD").Cent()))
}

func TestMoney_MinorUnits(t *testing.T) {
	m := domain.NewMoney(decimal.RequireFromString("12.34"), "EUR")
	assert.Equal(t, int64(1234), m.MinorUnits())
}

func TestMoney_CmpAcrossCurrenciesFails(t *testing.T) {
	eur := domain.NewMoney(decimal.NewFromInt(1), "EUR")
	usd := domain.NewMoney(decimal.NewFromInt(1), "USD")

	_, err := eur.Cmp(usd)
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)

	_, err = eur.Add(usd)
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)

	_, err = eur.Sub(usd)
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)

	assert.False(t, eur.Equal(usd))
}

func TestMoney_Arithmetic(t *testing.T) {
	a := domain.NewMoney(decimal.RequireFromString("10.50"), "EUR")
	b := domain.NewMoney(decimal.RequireFromString("0.75"), "EUR")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "11.25 EUR", sum.String())

	diff, err := b.Sub(a)
	require.NoError(t, err)
	assert.True(t, diff.IsNegative())
	assert.Equal(t, "9.75 EUR", diff.Abs().String())

	cmp, err := a.Cmp(b)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)
}

func TestParseMoney(t *testing.T) {
	m, err := domain.ParseMoney("19.999", "USD")
	require.NoError(t, err)
	assert.Equal(t, "20.00 USD", m.String())

	_, err = domain.ParseMoney("abc", "USD")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
