// Package sqlite stores exchange rates in a local SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/SscSPs/debt_settlement_app/internal/core/domain"
	portsrepo "github.com/SscSPs/debt_settlement_app/internal/core/ports/repositories"
	"github.com/SscSPs/debt_settlement_app/internal/models"
	"github.com/SscSPs/debt_settlement_app/internal/utils/mapping"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

const upsertExchangeRateQuery = `
	INSERT INTO exchange_rates (
		exchange_rate_id, from_currency_code, to_currency_code, rate, date_effective,
		created_at, last_updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (date_effective, from_currency_code, to_currency_code)
	DO UPDATE SET rate = excluded.rate, last_updated_at = excluded.last_updated_at;
`

// Open opens (creating if needed) the database file at dbPath and migrates it.
func Open(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open(driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// ExchangeRateRepository stores rate facts in SQLite, one row per (date, from, to).
type ExchangeRateRepository struct {
	db *sql.DB
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*ExchangeRateRepository)(nil)

// NewExchangeRateRepository creates a repository on an open, migrated database.
func NewExchangeRateRepository(db *sql.DB) *ExchangeRateRepository {
	return &ExchangeRateRepository{db: db}
}

// NewRepositoryProvider builds the repositories backed by db.
func NewRepositoryProvider(db *sql.DB) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		ExchangeRateRepo: NewExchangeRateRepository(db),
	}
}

// SaveExchangeRates upserts all rates in one transaction.
func (r *ExchangeRateRepository) SaveExchangeRates(ctx context.Context, rates []domain.ExchangeRate) error {
	if len(rates) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertExchangeRateQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare exchange rate upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, rate := range rates {
		row := mapping.ToModelExchangeRate(rate, now)
		if _, err := stmt.ExecContext(ctx,
			row.ExchangeRateID,
			row.FromCurrencyCode,
			row.ToCurrencyCode,
			row.Rate.String(),
			row.DateEffective.Format(domain.DateLayout),
			row.CreatedAt.Format(time.RFC3339Nano),
			row.LastUpdatedAt.Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("failed to upsert exchange rate %s: %w", row.ExchangeRateID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListExchangeRates returns every stored rate ordered by date, so later dates load last.
func (r *ExchangeRateRepository) ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT exchange_rate_id, from_currency_code, to_currency_code, rate, date_effective
		FROM exchange_rates
		ORDER BY date_effective, from_currency_code, to_currency_code;
	`)
	if err != nil {
		return nil, fmt.Errorf("error listing exchange rates: %w", err)
	}
	defer rows.Close()

	var rates []domain.ExchangeRate
	for rows.Next() {
		var (
			row  models.ExchangeRate
			date string
		)
		if err := rows.Scan(&row.ExchangeRateID, &row.FromCurrencyCode, &row.ToCurrencyCode, &row.Rate, &date); err != nil {
			return nil, fmt.Errorf("error scanning exchange rate row: %w", err)
		}
		if row.DateEffective, err = domain.ParseDate(date); err != nil {
			return nil, fmt.Errorf("stored exchange rate %s is invalid: %w", row.ExchangeRateID, err)
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
