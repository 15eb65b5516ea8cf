package repository

import (
	"context"
	"sort"
	"sync"

	"airwatch/backend/services/sensor-service/internal/models"
)

// MemoryStore is an in-process reading store for local runs and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	readings []models.Reading
	nextID   int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Insert appends a copy of reading and sets its ID.
func (s *MemoryStore) Insert(ctx context.Context, reading *models.Reading) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	reading.ID = s.nextID
	s.nextID++
	s.readings = append(s.readings, *reading)
	return nil
}

// QueryByDate returns readings dated date in insertion order.
func (s *MemoryStore) QueryByDate(ctx context.Context, date string) ([]models.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Reading
	for _, r := range s.readings {
		if r.Date() == date {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListDistinctDates returns the distinct event dates, ascending.
func (s *MemoryStore) ListDistinctDates(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	dates := []string{}
	for _, r := range s.readings {
		d := r.Date()
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates, nil
}

// Latest returns the last inserted reading, or nil when empty.
func (s *MemoryStore) Latest(ctx context.Context) (*models.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.readings) == 0 {
		return nil, nil
	}
	latest := s.readings[len(s.readings)-1]
	return &latest, nil
}

// List returns up to limit readings, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]models.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.readings) {
		limit = len(s.readings)
	}
	out := make([]models.Reading, 0, limit)
	for i := len(s.readings) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.readings[i])
	}
	return out, nil
}
