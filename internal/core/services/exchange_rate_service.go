package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/debt_settlement_app/internal/apperrors"
	"github.com/SscSPs/debt_settlement_app/internal/core/domain"
	portsrepo "github.com/SscSPs/debt_settlement_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/debt_settlement_app/internal/core/ports/services"
	"github.com/SscSPs/debt_settlement_app/internal/dto"
	"github.com/SscSPs/debt_settlement_app/internal/utils/mapping"
)

// exchangeRateService keeps the in-memory rate store in step with the repository and
// the external rate supplier.
type exchangeRateService struct {
	BaseService
	store      *ExchangeRateStore
	rateRepo   portsrepo.ExchangeRateRepositoryFacade
	supplier   portssvc.RateSupplier
	vendorBase string
}

// NewExchangeRateService creates a new exchange rate service. supplier may be nil, in
// which case RefreshRates never produces rates.
func NewExchangeRateService(store *ExchangeRateStore, rateRepo portsrepo.ExchangeRateRepositoryFacade, supplier portssvc.RateSupplier, vendorBase string) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{
		store:      store,
		rateRepo:   rateRepo,
		supplier:   supplier,
		vendorBase: vendorBase,
	}
}

// CreateExchangeRate records a manually entered rate together with its inverse.
func (s *exchangeRateService) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest) (*domain.ExchangeRate, error) {
	if req.FromCurrencyCode == req.ToCurrencyCode {
		return nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}
	rate, err := mapping.ToDomainExchangeRate(req)
	if err != nil {
		return nil, err
	}

	rates := []domain.ExchangeRate{rate, rate.Inverse()}
	if err := s.rateRepo.SaveExchangeRates(ctx, rates); err != nil {
		s.LogError(ctx, err, "Failed to save exchange rate", slog.String("rate", rate.Key().String()))
		return nil, fmt.Errorf("failed to create exchange rate in service: %w", err)
	}
	s.store.AddAll(rates)

	s.LogInfo(ctx, "Exchange rate created",
		slog.String("rate", rate.Key().String()),
		slog.String("value", rate.Rate.String()))
	return &rate, nil
}

// GetExchangeRate resolves the rate the settlement engine would use for the pair on date.
func (s *exchangeRateService) GetExchangeRate(ctx context.Context, fromCode, toCode string, date time.Time) (*domain.ExchangeRate, error) {
	fromCode = strings.ToUpper(fromCode)
	toCode = strings.ToUpper(toCode)
	if err := domain.ValidateCurrencyCode(fromCode); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrencyCode(toCode); err != nil {
		return nil, err
	}

	rate, err := s.store.Rate(date, fromCode, toCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoExchangeRate) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrNotFound, err)
		}
		return nil, fmt.Errorf("failed to get exchange rate in service: %w", err)
	}
	return &rate, nil
}

// ListExchangeRates returns a snapshot of the rate store.
func (s *exchangeRateService) ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	rates := s.store.Rates()
	s.LogDebug(ctx, "Listing exchange rates", slog.Int("count", len(rates)))
	return rates, nil
}

// ListCurrencies returns every currency seen by the rate store.
func (s *exchangeRateService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	codes := s.store.Currencies()
	currencies := make([]domain.Currency, len(codes))
	for i, code := range codes {
		currencies[i] = domain.LookupCurrency(code)
	}
	return currencies, nil
}

// LoadRates repopulates the store from the repository.
func (s *exchangeRateService) LoadRates(ctx context.Context) (int, error) {
	n, err := s.store.Load(ctx, s.rateRepo)
	if err != nil {
		s.LogError(ctx, err, "Failed to load exchange rates")
		return 0, err
	}
	s.LogInfo(ctx, "Exchange rates loaded", slog.Int("count", n), slog.Int("cached", s.store.Len()))
	return n, nil
}

// RefreshRates pulls a vendor snapshot, derives today's cross rates and persists them.
// A failing supplier skips the cycle. Pairs that could not be derived are logged and
// the rest are kept. The store only sees the rates once the repository has them.
func (s *exchangeRateService) RefreshRates(ctx context.Context, now time.Time) (int, error) {
	if s.supplier == nil {
		s.LogDebug(ctx, "No rate supplier configured, skipping refresh")
		return 0, nil
	}

	snapshot, err := s.supplier.LatestRates(ctx, s.vendorBase)
	if err != nil {
		s.LogWarn(ctx, "Rate supplier unavailable, keeping cached rates",
			slog.String("error", err.Error()),
			slog.String("base", s.vendorBase))
		return 0, nil
	}

	generated, genErr := s.store.Derive(s.vendorBase, snapshot, now)
	if generated == nil && genErr != nil {
		return 0, fmt.Errorf("failed to generate exchange rates: %w", genErr)
	}
	if genErr != nil {
		s.LogWarn(ctx, "Some exchange rates could not be derived",
			slog.String("error", genErr.Error()),
			slog.Int("generated", len(generated)))
	}

	if len(generated) > 0 {
		if err := s.rateRepo.SaveExchangeRates(ctx, generated); err != nil {
			s.LogError(ctx, err, "Failed to persist generated exchange rates", slog.Int("count", len(generated)))
			return 0, fmt.Errorf("failed to persist generated exchange rates: %w", err)
		}
		s.store.AddAll(generated)
	}

	s.LogInfo(ctx, "Exchange rates refreshed",
		slog.Int("generated", len(generated)),
		slog.String("date", domain.DateOnly(now).Format(domain.DateLayout)))
	return len(generated), nil
}
