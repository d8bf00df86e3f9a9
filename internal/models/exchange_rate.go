package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields tracks when a persisted row was written.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// ExchangeRate is the persisted form of one (date, from, to) rate fact.
// The natural key doubles as the primary key, e.g. "2024-03-02.EUR.USD".
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	DateEffective    time.Time       `json:"dateEffective"`
	AuditFields
}
