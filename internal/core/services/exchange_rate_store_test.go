package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/debt_settlement_app/internal/apperrors"
	"github.com/SscSPs/debt_settlement_app/internal/core/domain"
	"github.com/SscSPs/debt_settlement_app/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRate(t *testing.T, day time.Time, from, to, rate string) domain.ExchangeRate {
	t.Helper()
	r, err := domain.NewExchangeRate(day, from, to, decimal.RequireFromString(rate))
	require.NoError(t, err)
	return r
}

func TestExchangeRateStore_Closest(t *testing.T) {
	store := services.NewExchangeRateStore("")
	store.AddAll([]domain.ExchangeRate{
		mustRate(t, date(2024, 3, 1), "EUR", "USD", "1.01"),
		mustRate(t, date(2024, 3, 5), "EUR", "USD", "1.05"),
		mustRate(t, date(2024, 3, 10), "EUR", "USD", "1.10"),
	})

	tests := []struct {
		name string
		day  time.Time
		want string
	}{
		{name: "exact date", day: date(2024, 3, 5), want: "1.05"},
		{name: "most recent before", day: date(2024, 3, 7), want: "1.05"},
		{name: "latest known when after all", day: date(2024, 4, 1), want: "1.1"},
		{name: "earliest after when before all", day: date(2024, 2, 1), want: "1.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := store.Closest(tt.day, "EUR", "USD")
			require.True(t, ok)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(r.Rate), "got %s", r.Rate)
		})
	}

	_, ok := store.Closest(date(2024, 3, 5), "USD", "EUR")
	assert.False(t, ok)
}

func TestExchangeRateStore_ExactAndMostRecent(t *testing.T) {
	store := services.NewExchangeRateStore("")
	store.AddAll([]domain.ExchangeRate{
		mustRate(t, date(2024, 3, 1), "EUR", "USD", "1.01"),
		mustRate(t, date(2024, 3, 5), "EUR", "USD", "1.05"),
	})

	_, ok := store.Exact(date(2024, 3, 2), "EUR", "USD")
	assert.False(t, ok)
	r, ok := store.Exact(date(2024, 3, 1), "EUR", "USD")
	require.True(t, ok)
	assert.Equal(t, "1.01", r.Rate.String())

	r, ok = store.MostRecent("EUR", "USD")
	require.True(t, ok)
	assert.Equal(t, "1.05", r.Rate.String())

	r, ok = store.MostRecentOnOrBefore(date(2024, 3, 4), "EUR", "USD")
	require.True(t, ok)
	assert.Equal(t, "1.01", r.Rate.String())

	_, ok = store.MostRecentOnOrBefore(date(2024, 2, 28), "EUR", "USD")
	assert.False(t, ok)
}

func TestExchangeRateStore_AddReplacesSameKey(t *testing.T) {
	store := services.NewExchangeRateStore("")
	store.Add(mustRate(t, date(2024, 3, 1), "EUR", "USD", "1.01"))
	store.Add(mustRate(t, date(2024, 3, 1), "EUR", "USD", "1.02"))

	assert.Equal(t, 1, store.Len())
	r, ok := store.Exact(date(2024, 3, 1), "EUR", "USD")
	require.True(t, ok)
	assert.Equal(t, "1.02", r.Rate.String())
	assert.Equal(t, []string{"EUR", "USD"}, store.Currencies())
}

func TestExchangeRateStore_RateFallbacks(t *testing.T) {
	store := services.NewExchangeRateStore("USD")
	store.AddAll([]domain.ExchangeRate{
		mustRate(t, date(2024, 3, 1), "EUR", "USD", "1.25"),
		mustRate(t, date(2024, 3, 1), "GBP", "USD", "1.5"),
	})

	r, err := store.Rate(date(2024, 3, 1), "EUR", "EUR")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1).Equal(r.Rate))

	r, err = store.Rate(date(2024, 3, 1), "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, "0.8", r.Rate.String())

	// GBP -> EUR has no direct or reverse rate and goes through USD.
	r, err = store.Rate(date(2024, 3, 9), "GBP", "EUR")
	require.NoError(t, err)
	assert.Equal(t, "1.2", r.Rate.String())

	_, err = store.Rate(date(2024, 3, 1), "EUR", "JPY")
	assert.ErrorIs(t, err, apperrors.ErrNoExchangeRate)
}

func TestExchangeRateStore_ConvertResolvesViaNearestDate(t *testing.T) {
	store := services.NewExchangeRateStore("USD")
	store.AddAll([]domain.ExchangeRate{
		mustRate(t, date(2024, 3, 1), "EUR", "USD", "1.25"),
		mustRate(t, date(2024, 3, 1), "USD", "EUR", "0.8"),
		mustRate(t, date(2024, 2, 20), "CHF", "USD", "1.125"),
	})

	chf := domain.NewMoney(decimal.NewFromInt(100), "CHF")
	got, err := store.Convert(chf, date(2024, 3, 15), "EUR")
	require.NoError(t, err)
	assert.Equal(t, "90.00 EUR", got.String())

	_, err = store.Convert(domain.NewMoney(decimal.NewFromInt(100), "SEK"), date(2024, 3, 15), "EUR")
	assert.ErrorIs(t, err, apperrors.ErrNoExchangeRate)
}

func TestExchangeRateStore_GenerateCrossProduct(t *testing.T) {
	store := services.NewExchangeRateStore("USD")
	today := date(2024, 3, 2)

	generated, err := store.Generate("USD", map[string]decimal.Decimal{
		"EUR": decimal.RequireFromString("0.8"),
		"GBP": decimal.RequireFromString("0.5"),
	}, today)
	require.NoError(t, err)
	assert.Len(t, generated, 9)
	assert.Equal(t, 9, store.Len())

	r, ok := store.Exact(today, "EUR", "GBP")
	require.True(t, ok)
	assert.Equal(t, "0.625", r.Rate.String())

	r, ok = store.Exact(today, "GBP", "USD")
	require.True(t, ok)
	assert.Equal(t, "2", r.Rate.String())

	r, ok = store.Exact(today, "EUR", "EUR")
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(1).Equal(r.Rate))
}

func TestExchangeRateStore_GenerateSubstitutesDroppedCurrency(t *testing.T) {
	store := services.NewExchangeRateStore("USD")
	yesterday, today := date(2024, 3, 1), date(2024, 3, 2)

	_, err := store.Generate("USD", map[string]decimal.Decimal{
		"EUR": decimal.RequireFromString("0.8"),
		"GBP": decimal.RequireFromString("0.5"),
	}, yesterday)
	require.NoError(t, err)

	// the vendor stops quoting GBP
	_, err = store.Generate("USD", map[string]decimal.Decimal{
		"EUR": decimal.RequireFromString("0.9"),
	}, today)
	require.NoError(t, err)

	r, ok := store.Exact(today, "EUR", "GBP")
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("0.5").Div(decimal.RequireFromString("0.9")).Equal(r.Rate))

	r, ok = store.Exact(today, "USD", "GBP")
	require.True(t, ok)
	assert.Equal(t, "0.5", r.Rate.String())

	assert.Equal(t, []string{"EUR", "GBP", "USD"}, store.Currencies())
}

func TestExchangeRateStore_GenerateFallsBackToDirectRate(t *testing.T) {
	store := services.NewExchangeRateStore("USD")
	store.Add(mustRate(t, date(2024, 2, 1), "CHF", "SEK", "11.5"))
	today := date(2024, 3, 2)

	generated, err := store.Generate("USD", map[string]decimal.Decimal{
		"EUR": decimal.RequireFromString("0.8"),
	}, today)

	// CHF and SEK have no USD rate so every pair touching exactly one of them fails,
	// while the direct CHF -> SEK rate is carried over.
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoExchangeRate)

	r, ok := store.Exact(today, "CHF", "SEK")
	require.True(t, ok)
	assert.Equal(t, "11.5", r.Rate.String())

	_, ok = store.Exact(today, "SEK", "CHF")
	assert.False(t, ok)
	_, ok = store.Exact(today, "CHF", "EUR")
	assert.False(t, ok)

	r, ok = store.Exact(today, "EUR", "USD")
	require.True(t, ok)
	assert.Equal(t, "1.25", r.Rate.String())

	// identities for all 4 currencies, EUR<->USD, CHF->SEK
	assert.Len(t, generated, 7)
}

func TestExchangeRateStore_GenerateRejectsBadSnapshotEntries(t *testing.T) {
	store := services.NewExchangeRateStore("USD")
	_, err := store.Generate("USD", map[string]decimal.Decimal{
		"EUR":  decimal.RequireFromString("0.8"),
		"GBP":  decimal.Zero,
		"euro": decimal.NewFromInt(1),
	}, date(2024, 3, 2))

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, []string{"EUR", "USD"}, store.Currencies())

	_, err = store.Generate("us", nil, date(2024, 3, 2))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestExchangeRateStore_DeriveLeavesStoreUntouched(t *testing.T) {
	store := services.NewExchangeRateStore("USD")
	store.Add(mustRate(t, date(2024, 3, 1), "USD", "GBP", "0.5"))
	today := date(2024, 3, 2)

	derived, err := store.Derive("USD", map[string]decimal.Decimal{
		"EUR": decimal.RequireFromString("0.8"),
	}, today)
	require.NoError(t, err)
	assert.Len(t, derived, 9)

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, []string{"GBP", "USD"}, store.Currencies())
	_, ok := store.Exact(today, "EUR", "GBP")
	assert.False(t, ok)

	store.AddAll(derived)
	r, ok := store.Exact(today, "EUR", "GBP")
	require.True(t, ok)
	assert.Equal(t, "0.625", r.Rate.String())
}

type stubRateReader struct {
	rates []domain.ExchangeRate
	err   error
}

func (s stubRateReader) ListExchangeRates(context.Context) ([]domain.ExchangeRate, error) {
	return s.rates, s.err
}

func TestExchangeRateStore_LoadOverwritesAndNeverShrinks(t *testing.T) {
	store := services.NewExchangeRateStore("")
	store.Add(mustRate(t, date(2024, 3, 1), "EUR", "USD", "1.01"))
	store.Add(mustRate(t, date(2024, 3, 1), "EUR", "JPY", "161"))

	n, err := store.Load(context.Background(), stubRateReader{rates: []domain.ExchangeRate{
		mustRate(t, date(2024, 3, 1), "EUR", "USD", "1.09"),
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, store.Len())

	r, ok := store.Exact(date(2024, 3, 1), "EUR", "USD")
	require.True(t, ok)
	assert.Equal(t, "1.09", r.Rate.String())

	_, err = store.Load(context.Background(), stubRateReader{err: errors.New("disk gone")})
	assert.ErrorContains(t, err, "disk gone")
	assert.Equal(t, 2, store.Len())
}
