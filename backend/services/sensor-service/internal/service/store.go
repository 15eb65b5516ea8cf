package service

import (
	"context"
	"time"

	"airwatch/backend/services/sensor-service/internal/metrics"
	"airwatch/backend/services/sensor-service/internal/models"
)

const defaultStoreTimeout = 5 * time.Second

// ReadingStore is the append-only reading persistence the service depends on.
type ReadingStore interface {
	Insert(ctx context.Context, reading *models.Reading) error
	QueryByDate(ctx context.Context, date string) ([]models.Reading, error)
	ListDistinctDates(ctx context.Context) ([]string, error)
	// Latest returns nil, nil when the store is empty.
	Latest(ctx context.Context) (*models.Reading, error)
	// List returns up to limit readings, newest first.
	List(ctx context.Context, limit int) ([]models.Reading, error)
}

// RollupCache caches hourly rollups per calendar date. Each date has a generation that
// Invalidate advances; an entry written under an older generation reads as a miss. A date
// whose invalidation failed makes Generation return an error until it is retried.
type RollupCache interface {
	Generation(ctx context.Context, date string) (int64, error)
	Get(ctx context.Context, date string, generation int64) ([]models.HourlyBucket, bool, error)
	Set(ctx context.Context, date string, generation int64, buckets []models.HourlyBucket) error
	Invalidate(ctx context.Context, date string) error
}

// Notifier accepts announced alerts for asynchronous delivery. Enqueue must not block.
type Notifier interface {
	Enqueue(n models.Notification)
}

type storeCall struct {
	timeout time.Duration
}

func newStoreCall(timeout time.Duration) storeCall {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return storeCall{timeout: timeout}
}

// run bounds fn by the store timeout and records its latency.
func (c storeCall) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	metrics.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		return storeUnavailable(op, err)
	}
	return nil
}
