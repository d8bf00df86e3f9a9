package pgsql

import (
	portsrepo "github.com/SscSPs/debt_settlement_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider builds the repositories backed by dbPool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		ExchangeRateRepo: NewPgxExchangeRateRepository(dbPool),
	}
}
