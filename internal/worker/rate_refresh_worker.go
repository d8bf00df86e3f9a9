package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// RateRefresher is the part of the exchange rate service the worker drives.
type RateRefresher interface {
	RefreshRates(ctx context.Context, now time.Time) (int, error)
}

// RateRefreshWorker polls the rate supplier on a fixed interval.
type RateRefreshWorker struct {
	refresher RateRefresher
	interval  time.Duration
	logger    *slog.Logger
}

// NewRateRefreshWorker creates a worker. A nil logger uses slog.Default().
func NewRateRefreshWorker(refresher RateRefresher, interval time.Duration, logger *slog.Logger) (*RateRefreshWorker, error) {
	if refresher == nil {
		return nil, errors.New("rate refresher is required")
	}
	if interval <= 0 {
		return nil, errors.New("refresh interval must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RateRefreshWorker{refresher: refresher, interval: interval, logger: logger}, nil
}

// Run refreshes once immediately and then on every tick until ctx is cancelled.
// Failed cycles are logged; the next tick tries again.
func (w *RateRefreshWorker) Run(ctx context.Context) {
	w.logger.Info("Rate refresh worker started", slog.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Rate refresh worker stopped")
			return
		case now := <-ticker.C:
			w.refresh(ctx, now)
		}
	}
}

func (w *RateRefreshWorker) refresh(ctx context.Context, now time.Time) {
	count, err := w.refresher.RefreshRates(ctx, now)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Error("Rate refresh failed", slog.String("error", err.Error()))
		return
	}
	w.logger.Info("Rate refresh complete",
		slog.Int("rates_generated", count),
		slog.String("next_check", now.Add(w.interval).Format(time.RFC3339)))
}
