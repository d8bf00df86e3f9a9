package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/debt_settlement_app/internal/apperrors"
	"github.com/SscSPs/debt_settlement_app/internal/core/domain"
	portsrepo "github.com/SscSPs/debt_settlement_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// RateConverter converts money into another currency as of a date.
type RateConverter interface {
	Convert(m domain.Money, date time.Time, to string) (domain.Money, error)
}

// ExchangeRateStore caches exchange rate facts and answers conversion queries.
// It never forgets a rate or a currency. Writes take an exclusive lock so the rate
// set and the currency set are always updated together.
type ExchangeRateStore struct {
	mu         sync.RWMutex
	rates      map[domain.CurrencyPair]map[string]domain.ExchangeRate // pair -> ISO date -> rate
	currencies map[string]struct{}
	pivot      string // vendor base currency used for cross-currency interpolation
}

var _ RateConverter = (*ExchangeRateStore)(nil)

// NewExchangeRateStore creates an empty store. pivot is the currency through which
// conversions without any direct rate are interpolated; empty disables interpolation.
func NewExchangeRateStore(pivot string) *ExchangeRateStore {
	return &ExchangeRateStore{
		rates:      make(map[domain.CurrencyPair]map[string]domain.ExchangeRate),
		currencies: make(map[string]struct{}),
		pivot:      pivot,
	}
}

// Add inserts rate, replacing any rate with the same (date, from, to).
func (s *ExchangeRateStore) Add(rate domain.ExchangeRate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLocked(rate)
}

// AddAll inserts every rate in order; later rates win on equal keys.
func (s *ExchangeRateStore) AddAll(rates []domain.ExchangeRate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rates {
		s.addLocked(r)
	}
}

func (s *ExchangeRateStore) addLocked(rate domain.ExchangeRate) {
	pair := rate.Pair()
	byDate, ok := s.rates[pair]
	if !ok {
		byDate = make(map[string]domain.ExchangeRate)
		s.rates[pair] = byDate
	}
	byDate[rate.Key().Date] = rate
	s.currencies[rate.From] = struct{}{}
	s.currencies[rate.To] = struct{}{}
}

// Len returns the number of cached rates.
func (s *ExchangeRateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, byDate := range s.rates {
		n += len(byDate)
	}
	return n
}

// Currencies returns every currency ever seen, sorted.
func (s *ExchangeRateStore) Currencies() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currenciesLocked()
}

func (s *ExchangeRateStore) currenciesLocked() []string {
	out := make([]string, 0, len(s.currencies))
	for c := range s.currencies {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Rates returns a snapshot of all cached rates ordered by date, from, to.
func (s *ExchangeRateStore) Rates() []domain.ExchangeRate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ExchangeRate, 0)
	for _, byDate := range s.rates {
		for _, r := range byDate {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key(), out[j].Key()
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.From != b.From {
			return a.From < b.From
		}
		return a.To < b.To
	})
	return out
}

// Exact returns the rate recorded for exactly (date, from, to).
func (s *ExchangeRateStore) Exact(date time.Time, from, to string) (domain.ExchangeRate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rates[domain.CurrencyPair{From: from, To: to}][date.Format(domain.DateLayout)]
	return r, ok
}

// MostRecent returns the latest rate known for the pair.
func (s *ExchangeRateStore) MostRecent(from, to string) (domain.ExchangeRate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mostRecentLocked(from, to)
}

func (s *ExchangeRateStore) mostRecentLocked(from, to string) (domain.ExchangeRate, bool) {
	var (
		best  domain.ExchangeRate
		found bool
	)
	for d, r := range s.rates[domain.CurrencyPair{From: from, To: to}] {
		if !found || d > best.Key().Date {
			best, found = r, true
		}
	}
	return best, found
}

// MostRecentOnOrBefore returns the latest rate for the pair dated no later than date.
func (s *ExchangeRateStore) MostRecentOnOrBefore(date time.Time, from, to string) (domain.ExchangeRate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := date.Format(domain.DateLayout)
	var (
		best  domain.ExchangeRate
		found bool
	)
	for d, r := range s.rates[domain.CurrencyPair{From: from, To: to}] {
		if d <= key && (!found || d > best.Key().Date) {
			best, found = r, true
		}
	}
	return best, found
}

// Closest returns the exact-date rate if present, else the most recent rate strictly
// before date, else the earliest rate strictly after date.
func (s *ExchangeRateStore) Closest(date time.Time, from, to string) (domain.ExchangeRate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closestLocked(date, from, to)
}

func (s *ExchangeRateStore) closestLocked(date time.Time, from, to string) (domain.ExchangeRate, bool) {
	byDate := s.rates[domain.CurrencyPair{From: from, To: to}]
	key := date.Format(domain.DateLayout)
	if r, ok := byDate[key]; ok {
		return r, true
	}

	var before, after *domain.ExchangeRate
	for d := range byDate {
		r := byDate[d]
		switch {
		case d < key:
			if before == nil || d > before.Key().Date {
				before = &r
			}
		case d > key:
			if after == nil || d < after.Key().Date {
				after = &r
			}
		}
	}
	if before != nil {
		return *before, true
	}
	if after != nil {
		return *after, true
	}
	return domain.ExchangeRate{}, false
}

// Rate resolves the rate to use for converting from -> to on date. Lookup order:
// identity for equal currencies, the closest direct rate, the inverse of the closest
// reverse rate, then interpolation through the pivot currency.
func (s *ExchangeRateStore) Rate(date time.Time, from, to string) (domain.ExchangeRate, error) {
	if from == to {
		return domain.ExchangeRate{Date: domain.DateOnly(date), From: from, To: to, Rate: decimal.NewFromInt(1)}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.directLocked(date, from, to); ok {
		return r, nil
	}
	if s.pivot != "" && from != s.pivot && to != s.pivot {
		toPivot, okFrom := s.directLocked(date, from, s.pivot)
		fromPivot, okTo := s.directLocked(date, s.pivot, to)
		if okFrom && okTo {
			return domain.ExchangeRate{
				Date: domain.DateOnly(date),
				From: from,
				To:   to,
				Rate: toPivot.Rate.Mul(fromPivot.Rate),
			}, nil
		}
	}
	return domain.ExchangeRate{}, fmt.Errorf("%w: %s to %s on %s", apperrors.ErrNoExchangeRate, from, to, date.Format(domain.DateLayout))
}

// directLocked returns the closest from -> to rate, or the inverse of the closest to -> from rate.
func (s *ExchangeRateStore) directLocked(date time.Time, from, to string) (domain.ExchangeRate, bool) {
	if r, ok := s.closestLocked(date, from, to); ok {
		return r, true
	}
	if r, ok := s.closestLocked(date, to, from); ok {
		return r.Inverse(), true
	}
	return domain.ExchangeRate{}, false
}

// Convert converts m into currency to using the rate resolved by Rate.
func (s *ExchangeRateStore) Convert(m domain.Money, date time.Time, to string) (domain.Money, error) {
	if m.Currency == to {
		return domain.NewMoney(m.Amount, to), nil
	}
	r, err := s.Rate(date, m.Currency, to)
	if err != nil {
		return domain.Money{}, err
	}
	return r.Convert(m)
}

// Generate derives and caches the full cross product of rates between every currency
// ever seen, from a vendor snapshot giving the value of one unit of base in each currency.
// See Derive for how missing currencies are handled.
func (s *ExchangeRateStore) Generate(base string, snapshot map[string]decimal.Decimal, date time.Time) ([]domain.ExchangeRate, error) {
	generated, err := s.Derive(base, snapshot, date)
	s.AddAll(generated)
	return generated, err
}

// Derive computes what Generate would cache without touching the store.
//
// A currency missing from the snapshot is substituted by the most recent cached
// base -> currency rate. When both sides of a pair are missing the most recent direct
// rate is carried over to date. Pairs that cannot be derived are reported in the
// returned error without aborting the rest of the batch.
func (s *ExchangeRateStore) Derive(base string, snapshot map[string]decimal.Decimal, date time.Time) ([]domain.ExchangeRate, error) {
	if err := domain.ValidateCurrencyCode(base); err != nil {
		return nil, err
	}
	day := domain.DateOnly(date)
	one := decimal.NewFromInt(1)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var errs []error
	values := map[string]decimal.Decimal{base: one}
	for code, v := range snapshot {
		if code == base {
			continue
		}
		if err := domain.ValidateCurrencyCode(code); err != nil {
			errs = append(errs, err)
			continue
		}
		if !v.IsPositive() {
			errs = append(errs, fmt.Errorf("%w: vendor rate %s->%s is not positive", apperrors.ErrValidation, base, code))
			continue
		}
		values[code] = v
	}
	known := make(map[string]struct{}, len(s.currencies)+len(values))
	for code := range s.currencies {
		known[code] = struct{}{}
	}
	for code := range values {
		known[code] = struct{}{}
	}
	currencies := make([]string, 0, len(known))
	for code := range known {
		currencies = append(currencies, code)
	}
	sort.Strings(currencies)

	substitute := func(code string) (decimal.Decimal, bool) {
		if r, ok := s.mostRecentLocked(base, code); ok {
			return r.Rate, true
		}
		if r, ok := s.mostRecentLocked(code, base); ok {
			return one.Div(r.Rate), true
		}
		return decimal.Zero, false
	}

	generated := make([]domain.ExchangeRate, 0, len(currencies)*len(currencies))
	for _, from := range currencies {
		for _, to := range currencies {
			if from == to {
				generated = append(generated, domain.ExchangeRate{Date: day, From: from, To: to, Rate: one})
				continue
			}

			fromValue, fromOK := values[from]
			toValue, toOK := values[to]
			var rate decimal.Decimal
			switch {
			case fromOK && toOK:
				rate = toValue.Div(fromValue)
			case fromOK || toOK:
				missing := to
				if !fromOK {
					missing = from
				}
				v, ok := substitute(missing)
				if !ok {
					errs = append(errs, fmt.Errorf("%w: no cached %s rate to substitute for %s->%s", apperrors.ErrNoExchangeRate, missing, from, to))
					continue
				}
				if !fromOK {
					fromValue = v
				} else {
					toValue = v
				}
				rate = toValue.Div(fromValue)
			default:
				direct, ok := s.mostRecentLocked(from, to)
				if !ok {
					errs = append(errs, fmt.Errorf("%w: no cached rate for %s->%s", apperrors.ErrNoExchangeRate, from, to))
					continue
				}
				rate = direct.Rate
			}
			generated = append(generated, domain.ExchangeRate{Date: day, From: from, To: to, Rate: rate})
		}
	}

	return generated, errors.Join(errs...)
}

// Load repopulates the cache from repo. Loaded rates overwrite cached rates with the same key.
func (s *ExchangeRateStore) Load(ctx context.Context, repo portsrepo.ExchangeRateReader) (int, error) {
	rates, err := repo.ListExchangeRates(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load exchange rates: %w", err)
	}
	s.AddAll(rates)
	return len(rates), nil
}
