package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"airwatch/backend/services/sensor-service/internal/models"
)

const (
	keyPrefix           = "airwatch:rollup:"
	generationKeyPrefix = "airwatch:rollup:gen:"
)

// ErrInvalidationPending is returned by Generation while an earlier invalidation of the date
// has not reached redis. Callers must not use the cache for that date until it clears.
var ErrInvalidationPending = errors.New("rollup cache invalidation pending")

// RollupCache stores computed hourly rollups in redis, one key per calendar date. Every
// date has a generation counter; Invalidate advances it and entries written under an older
// generation read as misses.
type RollupCache struct {
	client redis.Cmdable
	ttl    time.Duration

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewRollupCache returns redis-backed cache.
func NewRollupCache(client redis.Cmdable, ttl time.Duration) *RollupCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RollupCache{client: client, ttl: ttl, pending: make(map[string]struct{})}
}

func (c *RollupCache) key(date string) string {
	return keyPrefix + date
}

func (c *RollupCache) generationKey(date string) string {
	return generationKeyPrefix + date
}

type cachedBucket struct {
	Label       string    `json:"label"`
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
	MQ135       *float64  `json:"mq135"`
	MQ2         *float64  `json:"mq2"`
	Count       int       `json:"count"`
	Hour        time.Time `json:"hour"`
}

type cachedRollup struct {
	Generation int64          `json:"generation"`
	Buckets    []cachedBucket `json:"buckets"`
}

// Generation returns the current generation of date. A date whose last invalidation failed
// is retried here first and reported as ErrInvalidationPending while redis stays unreachable.
func (c *RollupCache) Generation(ctx context.Context, date string) (int64, error) {
	c.mu.Lock()
	_, pending := c.pending[date]
	c.mu.Unlock()
	if pending {
		if err := c.Invalidate(ctx, date); err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidationPending, date, err)
		}
	}

	gen, err := c.client.Get(ctx, c.generationKey(date)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Get returns cached buckets written under generation; ok is false on a miss.
func (c *RollupCache) Get(ctx context.Context, date string, generation int64) ([]models.HourlyBucket, bool, error) {
	data, err := c.client.Get(ctx, c.key(date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var cached cachedRollup
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, err
	}
	if cached.Generation != generation {
		return nil, false, nil
	}
	buckets := make([]models.HourlyBucket, 0, len(cached.Buckets))
	for _, b := range cached.Buckets {
		buckets = append(buckets, models.HourlyBucket{
			Label:       b.Label,
			Temperature: b.Temperature,
			Humidity:    b.Humidity,
			MQ135:       b.MQ135,
			MQ2:         b.MQ2,
			Count:       b.Count,
			Hour:        b.Hour,
		})
	}
	return buckets, true, nil
}

// Set caches buckets for date, tagged with the generation read before they were computed.
func (c *RollupCache) Set(ctx context.Context, date string, generation int64, buckets []models.HourlyBucket) error {
	cached := cachedRollup{Generation: generation, Buckets: make([]cachedBucket, 0, len(buckets))}
	for _, b := range buckets {
		cached.Buckets = append(cached.Buckets, cachedBucket{
			Label:       b.Label,
			Temperature: b.Temperature,
			Humidity:    b.Humidity,
			MQ135:       b.MQ135,
			MQ2:         b.MQ2,
			Count:       b.Count,
			Hour:        b.Hour,
		})
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(date), data, c.ttl).Err()
}

// Invalidate advances the generation of date. On failure the date stays bypassed until a
// later Generation call manages to advance it.
func (c *RollupCache) Invalidate(ctx context.Context, date string) error {
	if err := c.client.Incr(ctx, c.generationKey(date)).Err(); err != nil {
		c.mu.Lock()
		c.pending[date] = struct{}{}
		c.mu.Unlock()
		return err
	}
	c.mu.Lock()
	delete(c.pending, date)
	c.mu.Unlock()
	return nil
}
