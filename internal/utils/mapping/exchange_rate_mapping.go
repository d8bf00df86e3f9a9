package mapping

import (
	"time"

	"github.com/SscSPs/debt_settlement_app/internal/core/domain"
	"github.com/SscSPs/debt_settlement_app/internal/dto"
	"github.com/SscSPs/debt_settlement_app/internal/models"
)

// ToDomainExchangeRate converts a create request into a validated domain ExchangeRate
func ToDomainExchangeRate(req dto.CreateExchangeRateRequest) (domain.ExchangeRate, error) {
	return domain.NewExchangeRate(req.DateEffective, req.FromCurrencyCode, req.ToCurrencyCode, req.Rate)
}

// ToModelExchangeRate converts a domain ExchangeRate to its persisted row
func ToModelExchangeRate(rate domain.ExchangeRate, now time.Time) models.ExchangeRate {
	return models.ExchangeRate{
		ExchangeRateID:   rate.Key().String(),
		FromCurrencyCode: rate.From,
		ToCurrencyCode:   rate.To,
		Rate:             rate.Rate,
		DateEffective:    domain.DateOnly(rate.Date),
		AuditFields: models.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
}

// ToDomainExchangeRateFromModel validates a persisted row and converts it to a domain ExchangeRate
func ToDomainExchangeRateFromModel(m models.ExchangeRate) (domain.ExchangeRate, error) {
	return domain.NewExchangeRate(m.DateEffective, m.FromCurrencyCode, m.ToCurrencyCode, m.Rate)
}
