package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"airwatch/backend/services/sensor-service/internal/metrics"
	"airwatch/backend/services/sensor-service/internal/models"
)

// RollupService answers historical queries over the reading store.
type RollupService struct {
	store  ReadingStore
	cache  RollupCache
	call   storeCall
	logger *zap.Logger
}

// NewRollupService builds the rollup engine and date index. cache may be nil.
func NewRollupService(store ReadingStore, cache RollupCache, storeTimeout time.Duration, logger *zap.Logger) *RollupService {
	return &RollupService{
		store:  store,
		cache:  cache,
		call:   newStoreCall(storeTimeout),
		logger: logger,
	}
}

// HourlyAverages returns per-hour channel means for date (YYYY-MM-DD), ascending by hour.
// Hours without readings are omitted.
func (s *RollupService) HourlyAverages(ctx context.Context, date string) ([]models.HourlyBucket, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	// The generation is read before the store so a concurrent ingest makes this fill stale.
	var (
		generation int64
		useCache   bool
	)
	if s.cache != nil {
		gen, err := s.cache.Generation(ctx, date)
		if err != nil {
			metrics.RollupCacheRequests.WithLabelValues("bypass").Inc()
			s.logger.Warn("rollup cache bypassed", zap.String("date", date), zap.Error(err))
		} else {
			generation, useCache = gen, true
		}
	}

	if useCache {
		buckets, ok, err := s.cache.Get(ctx, date, generation)
		switch {
		case err != nil:
			metrics.RollupCacheRequests.WithLabelValues("error").Inc()
			s.logger.Warn("rollup cache read failed", zap.String("date", date), zap.Error(err))
		case ok:
			metrics.RollupCacheRequests.WithLabelValues("hit").Inc()
			return buckets, nil
		default:
			metrics.RollupCacheRequests.WithLabelValues("miss").Inc()
		}
	}

	var readings []models.Reading
	if err := s.call.run(ctx, "query_by_date", func(ctx context.Context) error {
		var err error
		readings, err = s.store.QueryByDate(ctx, date)
		return err
	}); err != nil {
		return nil, err
	}

	buckets := Rollup(date, readings)

	if useCache {
		if err := s.cache.Set(ctx, date, generation, buckets); err != nil {
			s.logger.Warn("rollup cache write failed", zap.String("date", date), zap.Error(err))
		}
	}
	return buckets, nil
}

type channelSum struct {
	sum   float64
	count int
}

func (c *channelSum) add(v *float64) {
	if v == nil {
		return
	}
	c.sum += *v
	c.count++
}

func (c channelSum) mean() *float64 {
	if c.count == 0 {
		return nil
	}
	m := c.sum / float64(c.count)
	return &m
}

type hourAccumulator struct {
	hour        time.Time
	readings    int
	temperature channelSum
	humidity    channelSum
	mq135       channelSum
	mq2         channelSum
}

// Rollup groups readings dated date by hour and averages each channel independently.
// Readings from other dates are ignored.
func Rollup(date string, readings []models.Reading) []models.HourlyBucket {
	groups := make(map[string]*hourAccumulator)
	for _, r := range readings {
		if r.Date() != date {
			continue
		}
		hour := r.Hour()
		label := hour.Format(models.HourLayout)
		acc, ok := groups[label]
		if !ok {
			acc = &hourAccumulator{hour: hour}
			groups[label] = acc
		}
		acc.readings++
		acc.temperature.add(r.Temperature)
		acc.humidity.add(r.Humidity)
		acc.mq135.add(r.MQ135)
		acc.mq2.add(r.MQ2)
	}

	buckets := make([]models.HourlyBucket, 0, len(groups))
	for label, acc := range groups {
		buckets = append(buckets, models.HourlyBucket{
			Label:       label,
			Temperature: acc.temperature.mean(),
			Humidity:    acc.humidity.mean(),
			MQ135:       acc.mq135.mean(),
			MQ2:         acc.mq2.mean(),
			Count:       acc.readings,
			Hour:        acc.hour,
		})
	}
	// Labels share the date prefix, so lexical order is hour order.
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Label < buckets[j].Label })
	return buckets
}

// ListDates returns the distinct calendar dates present in the store, ascending.
func (s *RollupService) ListDates(ctx context.Context) ([]string, error) {
	var raw []string
	if err := s.call.run(ctx, "list_dates", func(ctx context.Context) error {
		var err error
		raw, err = s.store.ListDistinctDates(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	return distinctDates(raw, s.logger), nil
}

func distinctDates(raw []string, logger *zap.Logger) []string {
	seen := make(map[string]struct{}, len(raw))
	dates := make([]string, 0, len(raw))
	for _, d := range raw {
		if _, err := time.Parse(models.DateLayout, d); err != nil {
			logger.Warn("skipping malformed date from store", zap.String("date", d))
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}
