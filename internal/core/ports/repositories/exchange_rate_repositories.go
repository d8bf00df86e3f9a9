package repositories

import (
	"context"

	"github.com/SscSPs/debt_settlement_app/internal/core/domain"
)

// ExchangeRateReader defines read operations for persisted exchange rates.
type ExchangeRateReader interface {
	// ListExchangeRates returns every stored rate. Order is unspecified unless an
	// adapter documents it; later entries for the same key win when loaded.
	ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error)
}

// ExchangeRateWriter defines write operations for persisted exchange rates.
type ExchangeRateWriter interface {
	// SaveExchangeRates stores the rates, replacing any existing rate with the same (date, from, to).
	SaveExchangeRates(ctx context.Context, rates []domain.ExchangeRate) error
}

// ExchangeRateRepositoryFacade combines all exchange rate-related repository interfaces
// This is a facade for clients that need access to all operations
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
