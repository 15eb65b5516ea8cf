package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"airwatch/backend/services/sensor-service/internal/metrics"
	"airwatch/backend/services/sensor-service/internal/models"
)

// IngestService validates, stores and evaluates inbound readings.
type IngestService struct {
	store    ReadingStore
	state    *AlertState
	notifier Notifier
	cache    RollupCache
	call     storeCall
	logger   *zap.Logger
}

// NewIngestService builds the ingestion gate. notifier and cache may be nil.
func NewIngestService(
	store ReadingStore,
	state *AlertState,
	notifier Notifier,
	cache RollupCache,
	storeTimeout time.Duration,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		store:    store,
		state:    state,
		notifier: notifier,
		cache:    cache,
		call:     newStoreCall(storeTimeout),
		logger:   logger,
	}
}

// Ingest stores one reading and evaluates it against the alert state. Evaluation runs once
// per successfully stored reading and never when the write fails.
func (s *IngestService) Ingest(ctx context.Context, raw models.RawReading) (*models.Reading, error) {
	eventTime, err := models.ParseTimestamp(raw.Timestamp)
	if err != nil {
		metrics.ReadingsIngested.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTimestamp, raw.Timestamp, err)
	}

	reading := &models.Reading{
		Temperature: raw.Temperature,
		Humidity:    raw.Humidity,
		MQ135:       raw.MQ135,
		MQ2:         raw.MQ2,
		Timestamp:   raw.Timestamp,
		EventTime:   eventTime,
	}
	// A zero on mq135 means the sensor is not reporting.
	if reading.MQ135 != nil && *reading.MQ135 == 0 {
		reading.MQ135 = nil
	}

	if err := s.call.run(ctx, "insert", func(ctx context.Context) error {
		return s.store.Insert(ctx, reading)
	}); err != nil {
		metrics.ReadingsIngested.WithLabelValues("store_error").Inc()
		s.logger.Error("failed to store reading", zap.String("timestamp", raw.Timestamp), zap.Error(err))
		return nil, err
	}
	metrics.ReadingsIngested.WithLabelValues("stored").Inc()

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, reading.Date()); err != nil {
			metrics.RollupCacheRequests.WithLabelValues("invalidate_error").Inc()
			s.logger.Warn("failed to invalidate rollup cache, date bypasses the cache until retried",
				zap.String("date", reading.Date()), zap.Error(err))
		}
	}

	notification := Evaluate(*reading, s.state)
	if notification != nil {
		metrics.AlertsAnnounced.WithLabelValues(notification.Severity.String()).Inc()
		s.logger.Info("alert announced",
			zap.String("notification_id", notification.ID),
			zap.String("severity", notification.Severity.String()),
			zap.String("timestamp", notification.Timestamp),
		)
		if s.notifier != nil {
			s.notifier.Enqueue(*notification)
		}
	}

	return reading, nil
}

// AlertStatus returns the current alert state.
func (s *IngestService) AlertStatus() AlertSnapshot {
	return s.state.Snapshot()
}
