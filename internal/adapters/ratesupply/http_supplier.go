// Package ratesupply fetches the daily rate table from an external HTTP vendor.
package ratesupply

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	portssvc "github.com/SscSPs/debt_settlement_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

const defaultTimeout = 30 * time.Second

// HTTPRateSupplier polls a vendor endpoint answering
//
//	GET <endpoint>?base=USD  ->  {"base":"USD","rates":{"EUR":0.92,"JPY":"151.3"}}
//
// Rates may be JSON numbers or strings; both decode exactly into decimals.
type HTTPRateSupplier struct {
	endpoint string
	client   *http.Client
}

var _ portssvc.RateSupplier = (*HTTPRateSupplier)(nil)

// NewHTTPRateSupplier creates a supplier for endpoint. A nil client gets a default one with a timeout.
func NewHTTPRateSupplier(endpoint string, client *http.Client) (*HTTPRateSupplier, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid rate provider URL %q", endpoint)
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPRateSupplier{endpoint: endpoint, client: client}, nil
}

type latestRatesResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// LatestRates fetches the vendor's current table relative to base.
func (s *HTTPRateSupplier) LatestRates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse provider URL: %w", err)
	}
	q := u.Query()
	q.Set("base", base)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rate provider returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result latestRatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode rate provider response: %w", err)
	}
	if result.Base != "" && !strings.EqualFold(result.Base, base) {
		return nil, fmt.Errorf("rate provider answered for base %s, requested %s", result.Base, base)
	}
	if len(result.Rates) == 0 {
		return nil, fmt.Errorf("rate provider returned no rates for base %s", base)
	}

	rates := make(map[string]decimal.Decimal, len(result.Rates))
	for code, rate := range result.Rates {
		rates[strings.ToUpper(code)] = rate
	}
	return rates, nil
}
