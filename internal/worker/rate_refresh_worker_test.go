package worker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/debt_settlement_app/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) RefreshRates(ctx context.Context, now time.Time) (int, error) {
	c.calls.Add(1)
	return 3, c.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runWorker(t *testing.T, refresher worker.RateRefresher, interval time.Duration) (context.CancelFunc, <-chan struct{}) {
	t.Helper()
	w, err := worker.NewRateRefreshWorker(refresher, interval, quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	return cancel, done
}

func TestRateRefreshWorker_RunsAtStartAndOnTicks(t *testing.T) {
	refresher := &countingRefresher{}
	cancel, done := runWorker(t, refresher, 10*time.Millisecond)
	defer cancel()

	require.Eventually(t, func() bool { return refresher.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestRateRefreshWorker_KeepsGoingAfterFailures(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("disk full")}
	cancel, done := runWorker(t, refresher, 10*time.Millisecond)

	require.Eventually(t, func() bool { return refresher.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestRateRefreshWorker_FirstRefreshIsImmediate(t *testing.T) {
	refresher := &countingRefresher{}
	cancel, done := runWorker(t, refresher, time.Hour)

	require.Eventually(t, func() bool { return refresher.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, int32(1), refresher.calls.Load())
}

func TestNewRateRefreshWorker_Validation(t *testing.T) {
	_, err := worker.NewRateRefreshWorker(nil, time.Minute, nil)
	assert.Error(t, err)

	_, err = worker.NewRateRefreshWorker(&countingRefresher{}, 0, nil)
	assert.Error(t, err)

	w, err := worker.NewRateRefreshWorker(&countingRefresher{}, time.Minute, nil)
	assert.NoError(t, err)
	assert.NotNil(t, w)
}
