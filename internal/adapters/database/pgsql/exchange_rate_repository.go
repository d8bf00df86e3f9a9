package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/debt_settlement_app/internal/core/domain"
	portsrepo "github.com/SscSPs/debt_settlement_app/internal/core/ports/repositories"
	"github.com/SscSPs/debt_settlement_app/internal/models"
	"github.com/SscSPs/debt_settlement_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const upsertExchangeRateQuery = `
	INSERT INTO exchange_rates (
		exchange_rate_id, from_currency_code, to_currency_code, rate, date_effective,
		created_at, last_updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (date_effective, from_currency_code, to_currency_code)
	DO UPDATE SET rate = EXCLUDED.rate, last_updated_at = EXCLUDED.last_updated_at;
`

// PgxExchangeRateRepository stores rate facts in PostgreSQL, one row per (date, from, to).
type PgxExchangeRateRepository struct {
	BaseRepository
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

// NewPgxExchangeRateRepository creates a new PgxExchangeRateRepository.
func NewPgxExchangeRateRepository(db *pgxpool.Pool) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// SaveExchangeRates upserts all rates in one transaction.
func (r *PgxExchangeRateRepository) SaveExchangeRates(ctx context.Context, rates []domain.ExchangeRate) error {
	if len(rates) == 0 {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, rate := range rates {
		row := mapping.ToModelExchangeRate(rate, now)
		batch.Queue(upsertExchangeRateQuery,
			row.ExchangeRateID,
			row.FromCurrencyCode,
			row.ToCurrencyCode,
			row.Rate,
			row.DateEffective,
			row.CreatedAt,
			row.LastUpdatedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to upsert %d exchange rates: %w", len(rates), err)
	}
	return r.Commit(ctx, tx)
}

// ListExchangeRates returns every stored rate ordered by date, so later dates load last.
func (r *PgxExchangeRateRepository) ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	query := `
		SELECT exchange_rate_id, from_currency_code, to_currency_code, rate, date_effective,
		       created_at, last_updated_at
		FROM exchange_rates
		ORDER BY date_effective, from_currency_code, to_currency_code;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing exchange rates: %w", err)
	}
	defer rows.Close()

	var rates []domain.ExchangeRate
	for rows.Next() {
		var row models.ExchangeRate
		if err := rows.Scan(
			&row.ExchangeRateID, &row.FromCurrencyCode, &row.ToCurrencyCode, &row.Rate, &row.DateEffective,
			&row.CreatedAt, &row.LastUpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning exchange rate row: %w", err)
		}
		rate, err := mapping.ToDomainExchangeRateFromModel(row)
		if err != nil {
			return nil, fmt.Errorf("stored exchange rate %s is invalid: %w", row.ExchangeRateID, err)
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchange rates: %w", err)
	}
	return rates, nil
}
