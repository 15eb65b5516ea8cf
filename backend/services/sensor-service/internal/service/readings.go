package service

import (
	"context"
	"time"

	"airwatch/backend/services/sensor-service/internal/models"
)

const (
	defaultListLimit = 500
	maxListLimit     = 5000
)

// ReadingService serves raw reading lookups.
type ReadingService struct {
	store ReadingStore
	call  storeCall
}

// NewReadingService returns reading lookups over store.
func NewReadingService(store ReadingStore, storeTimeout time.Duration) *ReadingService {
	return &ReadingService{store: store, call: newStoreCall(storeTimeout)}
}

// Latest returns the most recently inserted reading.
func (s *ReadingService) Latest(ctx context.Context) (*models.Reading, error) {
	var latest *models.Reading
	if err := s.call.run(ctx, "latest", func(ctx context.Context) error {
		var err error
		latest, err = s.store.Latest(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

// List returns readings newest first. limit <= 0 selects the default; it is capped at 5000.
func (s *ReadingService) List(ctx context.Context, limit int) ([]models.Reading, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	var readings []models.Reading
	if err := s.call.run(ctx, "list", func(ctx context.Context) error {
		var err error
		readings, err = s.store.List(ctx, limit)
		return err
	}); err != nil {
		return nil, err
	}
	if readings == nil {
		readings = []models.Reading{}
	}
	return readings, nil
}
