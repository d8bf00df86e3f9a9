package services

import (
	"context"
	"time"

	"github.com/SscSPs/debt_settlement_app/internal/core/domain"
	"github.com/SscSPs/debt_settlement_app/internal/dto"
)

// CurrencyReaderSvc defines read operations for currency data
type CurrencyReaderSvc interface {
	// ListCurrencies retrieves every currency the rate cache has seen.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// ExchangeRateReaderSvc defines read operations for exchange rate data
type ExchangeRateReaderSvc interface {
	// GetExchangeRate retrieves the closest known rate between two currencies for a date.
	GetExchangeRate(ctx context.Context, fromCode, toCode string, date time.Time) (*domain.ExchangeRate, error)

	// ListExchangeRates returns every cached rate ordered by date, from, to.
	ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error)
}

// ExchangeRateWriterSvc defines write operations for exchange rate data
type ExchangeRateWriterSvc interface {
	// CreateExchangeRate records a manually entered rate (and its inverse).
	CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest) (*domain.ExchangeRate, error)

	// LoadRates repopulates the in-memory cache from the configured repository.
	LoadRates(ctx context.Context) (int, error)

	// RefreshRates polls the rate supplier and derives today's cross rates.
	// It returns the number of rates generated; zero with a nil error means the supplier had nothing.
	RefreshRates(ctx context.Context, now time.Time) (int, error)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	CurrencyReaderSvc
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
}
