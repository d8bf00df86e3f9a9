package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/SscSPs/debt_settlement_app/internal/adapters/database/sqlite"
	"github.com/SscSPs/debt_settlement_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ExchangeRateRepositoryTestSuite struct {
	suite.Suite
	dbPath string
	repo   *sqlite.ExchangeRateRepository
	closer func() error
}

func (suite *ExchangeRateRepositoryTestSuite) SetupTest() {
	suite.dbPath = filepath.Join(suite.T().TempDir(), "nested", "rates.db")
	db, err := sqlite.Open(suite.dbPath)
	suite.Require().NoError(err)
	suite.closer = db.Close
	suite.repo = sqlite.NewExchangeRateRepository(db)
}

func (suite *ExchangeRateRepositoryTestSuite) TearDownTest() {
	suite.NoError(suite.closer())
}

func TestExchangeRateRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateRepositoryTestSuite))
}

func (suite *ExchangeRateRepositoryTestSuite) rate(day time.Time, from, to, value string) domain.ExchangeRate {
	r, err := domain.NewExchangeRate(day, from, to, decimal.RequireFromString(value))
	suite.Require().NoError(err)
	return r
}

func (suite *ExchangeRateRepositoryTestSuite) TestEmptyDatabase() {
	rates, err := suite.repo.ListExchangeRates(context.Background())
	suite.Require().NoError(err)
	suite.Empty(rates)
}

func (suite *ExchangeRateRepositoryTestSuite) TestSaveAndListOrderedByDate() {
	ctx := context.Background()
	mar1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mar2 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	suite.Require().NoError(suite.repo.SaveExchangeRates(ctx, []domain.ExchangeRate{
		suite.rate(mar2, "EUR", "USD", "1.0832"),
		suite.rate(mar1, "USD", "JPY", "150.125"),
		suite.rate(mar1, "EUR", "USD", "1.0799"),
	}))

	rates, err := suite.repo.ListExchangeRates(ctx)

	suite.Require().NoError(err)
	suite.Require().Len(rates, 3)
	suite.Equal("2024-03-01.EUR.USD", rates[0].Key().String())
	suite.Equal("2024-03-01.USD.JPY", rates[1].Key().String())
	suite.Equal("150.125", rates[1].Rate.String())
	suite.Equal("2024-03-02.EUR.USD", rates[2].Key().String())
	suite.True(rates[2].Date.Equal(mar2))
}

func (suite *ExchangeRateRepositoryTestSuite) TestSaveReplacesSameKey() {
	ctx := context.Background()
	day := time.Date(2024, 3, 2, 15, 4, 5, 0, time.UTC)

	suite.Require().NoError(suite.repo.SaveExchangeRates(ctx, []domain.ExchangeRate{suite.rate(day, "EUR", "GBP", "0.85")}))
	suite.Require().NoError(suite.repo.SaveExchangeRates(ctx, []domain.ExchangeRate{suite.rate(day, "EUR", "GBP", "0.8571428571428571")}))

	rates, err := suite.repo.ListExchangeRates(ctx)

	suite.Require().NoError(err)
	suite.Require().Len(rates, 1)
	suite.Equal("0.8571428571428571", rates[0].Rate.String())
}

func (suite *ExchangeRateRepositoryTestSuite) TestReopenKeepsRatesAndSkipsAppliedMigrations() {
	ctx := context.Background()
	day := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	suite.Require().NoError(suite.repo.SaveExchangeRates(ctx, []domain.ExchangeRate{suite.rate(day, "CHF", "SEK", "11.5")}))

	db, err := sqlite.Open(suite.dbPath)
	suite.Require().NoError(err)
	defer db.Close()

	rates, err := sqlite.NewRepositoryProvider(db).ExchangeRateRepo.ListExchangeRates(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(rates, 1)
	suite.Equal("11.5", rates[0].Rate.String())
}

func (suite *ExchangeRateRepositoryTestSuite) TestSaveNothing() {
	suite.NoError(suite.repo.SaveExchangeRates(context.Background(), nil))
}
