package services

import (
	"context"

	"github.com/shopspring/decimal"
)

// RateSupplier is the external vendor of daily rates.
// LatestRates returns, for every currency the vendor knows, the value of one unit of base
// expressed in that currency. Any error means "no update this cycle"; callers must never
// substitute zero or unity rates for a failed request.
type RateSupplier interface {
	LatestRates(ctx context.Context, base string) (map[string]decimal.Decimal, error)
}
