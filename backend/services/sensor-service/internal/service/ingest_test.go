package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"airwatch/backend/services/sensor-service/internal/models"
	"airwatch/backend/services/sensor-service/internal/repository"
)

// fakeStore wraps the memory store with failure injection.
type fakeStore struct {
	*repository.MemoryStore

	mu        sync.Mutex
	insertErr error
	queryErr  error
	hang      bool
	inserts   int

	// queryRead and queryRelease pause QueryByDate after it has read the store.
	queryRead    chan struct{}
	queryRelease chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{MemoryStore: repository.NewMemoryStore()}
}

func (f *fakeStore) Insert(ctx context.Context, r *models.Reading) error {
	f.mu.Lock()
	err, hang := f.insertErr, f.hang
	f.inserts++
	f.mu.Unlock()
	if hang {
		<-ctx.Done()
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	return f.MemoryStore.Insert(ctx, r)
}

func (f *fakeStore) QueryByDate(ctx context.Context, date string) ([]models.Reading, error) {
	f.mu.Lock()
	err, read, release := f.queryErr, f.queryRead, f.queryRelease
	f.queryRead, f.queryRelease = nil, nil
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	readings, err := f.MemoryStore.QueryByDate(ctx, date)
	if read != nil {
		close(read)
		<-release
	}
	return readings, err
}

// pauseNextQuery makes the next QueryByDate block after reading until the returned release
// func is called. The read channel closes once the store has been read.
func (f *fakeStore) pauseNextQuery() (read <-chan struct{}, release func()) {
	r, rel := make(chan struct{}), make(chan struct{})
	f.mu.Lock()
	f.queryRead, f.queryRelease = r, rel
	f.mu.Unlock()
	return r, func() { close(rel) }
}

func (f *fakeStore) ListDistinctDates(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	err := f.queryErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.MemoryStore.ListDistinctDates(ctx)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (n *recordingNotifier) Enqueue(notification models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// fakeCache mirrors the generation rules of the redis rollup cache.
type fakeCache struct {
	mu          sync.Mutex
	data        map[string]cachedRollup
	generations map[string]int64
	pending     map[string]bool
	invalidated []string
	getErr      error
	invalErr    error
	sets        int
}

type cachedRollup struct {
	generation int64
	buckets    []models.HourlyBucket
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		data:        make(map[string]cachedRollup),
		generations: make(map[string]int64),
		pending:     make(map[string]bool),
	}
}

func (c *fakeCache) Generation(ctx context.Context, date string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending[date] {
		if c.invalErr != nil {
			return 0, c.invalErr
		}
		c.generations[date]++
		delete(c.pending, date)
	}
	return c.generations[date], nil
}

func (c *fakeCache) Get(ctx context.Context, date string, generation int64) ([]models.HourlyBucket, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	entry, ok := c.data[date]
	if !ok || entry.generation != generation {
		return nil, false, nil
	}
	return entry.buckets, true, nil
}

func (c *fakeCache) Set(ctx context.Context, date string, generation int64, buckets []models.HourlyBucket) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[date] = cachedRollup{generation: generation, buckets: buckets}
	c.sets++
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, date string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, date)
	if c.invalErr != nil {
		c.pending[date] = true
		return c.invalErr
	}
	c.generations[date]++
	return nil
}

func (c *fakeCache) setInvalidateErr(err error) {
	c.mu.Lock()
	c.invalErr = err
	c.mu.Unlock()
}

func (c *fakeCache) setCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

type ingestFixture struct {
	store    *fakeStore
	state    *AlertState
	notifier *recordingNotifier
	cache    *fakeCache
	svc      *IngestService
}

func newIngestFixture(timeout time.Duration) *ingestFixture {
	f := &ingestFixture{
		store:    newFakeStore(),
		state:    NewAlertState(DefaultThresholds()),
		notifier: &recordingNotifier{},
		cache:    newFakeCache(),
	}
	f.svc = NewIngestService(f.store, f.state, f.notifier, f.cache, timeout, zap.NewNop())
	return f
}

func TestIngestEndToEndDanger(t *testing.T) {
	f := newIngestFixture(time.Second)
	raw := models.RawReading{
		Temperature: models.Float(30),
		Humidity:    models.Float(40),
		MQ135:       models.Float(0),
		MQ2:         models.Float(90),
		Timestamp:   "2024-06-01T08:00:00",
	}

	stored, err := f.svc.Ingest(context.Background(), raw)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if stored.MQ135 != nil {
		t.Fatalf("expected mq135 normalised to null, got %v", *stored.MQ135)
	}
	if stored.Timestamp != "2024-06-01T08:00:00" || stored.ID == 0 {
		t.Fatalf("unexpected stored reading %+v", stored)
	}

	latest, _ := f.store.Latest(context.Background())
	if latest == nil || latest.MQ135 != nil {
		t.Fatalf("expected stored record with null mq135, got %+v", latest)
	}

	if f.notifier.count() != 1 {
		t.Fatalf("expected one notification, got %d", f.notifier.count())
	}
	n := f.notifier.sent[0]
	if n.Severity != models.SeverityDanger || *n.MQ2 != 90 {
		t.Fatalf("unexpected notification %+v", n)
	}
	if f.state.Snapshot().ActiveSeverity != models.SeverityDanger {
		t.Fatalf("expected active severity danger")
	}
	if len(f.cache.invalidated) != 1 || f.cache.invalidated[0] != "2024-06-01" {
		t.Fatalf("expected rollup cache invalidation for 2024-06-01, got %v", f.cache.invalidated)
	}
}

func TestIngestDuplicateTimestampNotifiesOnce(t *testing.T) {
	f := newIngestFixture(time.Second)
	raw := models.RawReading{MQ2: models.Float(60), Timestamp: "2024-06-01T08:30:00"}

	for i := 0; i < 2; i++ {
		if _, err := f.svc.Ingest(context.Background(), raw); err != nil {
			t.Fatalf("ingest %d: %v", i, err)
		}
	}
	if f.notifier.count() != 1 {
		t.Fatalf("expected exactly one notification, got %d", f.notifier.count())
	}
	if list, _ := f.store.List(context.Background(), 0); len(list) != 2 {
		t.Fatalf("expected both readings stored, got %d", len(list))
	}
}

func TestIngestConcurrentDuplicatesNotifyOnce(t *testing.T) {
	f := newIngestFixture(time.Second)
	raw := models.RawReading{MQ2: models.Float(75), Timestamp: "2024-06-01T08:30:00"}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Ingest(context.Background(), raw); err != nil {
				t.Errorf("ingest: %v", err)
			}
		}()
	}
	wg.Wait()

	if f.notifier.count() != 1 {
		t.Fatalf("expected exactly one notification, got %d", f.notifier.count())
	}
}

func TestIngestRejectsBadTimestamp(t *testing.T) {
	f := newIngestFixture(time.Second)
	for _, ts := range []string{"", "not-a-date"} {
		_, err := f.svc.Ingest(context.Background(), models.RawReading{MQ2: models.Float(99), Timestamp: ts})
		if !errors.Is(err, ErrInvalidTimestamp) || !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("timestamp %q: expected invalid timestamp error, got %v", ts, err)
		}
	}
	if f.store.inserts != 0 {
		t.Fatalf("expected no store writes, got %d", f.store.inserts)
	}
	if f.notifier.count() != 0 || f.state.Snapshot().Latest != nil {
		t.Fatalf("expected no evaluation for rejected readings")
	}
}

func TestIngestStoreFailureSkipsEvaluation(t *testing.T) {
	f := newIngestFixture(time.Second)
	f.store.insertErr = errors.New("connection refused")

	_, err := f.svc.Ingest(context.Background(), models.RawReading{MQ2: models.Float(99), Timestamp: "2024-06-01T08:00:00"})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
	if f.notifier.count() != 0 {
		t.Fatalf("expected no notification for unpersisted reading")
	}
	snap := f.state.Snapshot()
	if snap.ActiveSeverity != models.SeverityNone || snap.Latest != nil {
		t.Fatalf("expected alert state untouched, got %+v", snap)
	}
	if len(f.cache.invalidated) != 0 {
		t.Fatalf("expected no cache invalidation, got %v", f.cache.invalidated)
	}
}

func TestIngestHangingStoreTimesOut(t *testing.T) {
	f := newIngestFixture(20 * time.Millisecond)
	f.store.hang = true

	start := time.Now()
	_, err := f.svc.Ingest(context.Background(), models.RawReading{MQ2: models.Float(99), Timestamp: "2024-06-01T08:00:00"})
	if !errors.Is(err, ErrStoreUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected store unavailable wrapping deadline, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("ingest was not bounded by the store timeout")
	}
}

func TestIngestPassesNullsThrough(t *testing.T) {
	f := newIngestFixture(time.Second)
	stored, err := f.svc.Ingest(context.Background(), models.RawReading{Timestamp: "2024-06-01 08:00:00"})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if stored.Temperature != nil || stored.Humidity != nil || stored.MQ135 != nil || stored.MQ2 != nil {
		t.Fatalf("expected all channels null, got %+v", stored)
	}
	if f.notifier.count() != 0 {
		t.Fatalf("expected no notification")
	}
	if f.state.Snapshot().Latest == nil {
		t.Fatalf("expected stored reading to be evaluated")
	}
}

func TestIngestKeepsNonZeroMQ135AndZeroMQ2(t *testing.T) {
	f := newIngestFixture(time.Second)
	stored, err := f.svc.Ingest(context.Background(), models.RawReading{
		MQ135:     models.Float(12),
		MQ2:       models.Float(0),
		Timestamp: "2024-06-01T08:00:00",
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if stored.MQ135 == nil || *stored.MQ135 != 12 {
		t.Fatalf("expected mq135 kept, got %v", stored.MQ135)
	}
	if stored.MQ2 == nil || *stored.MQ2 != 0 {
		t.Fatalf("expected mq2 zero kept, got %v", stored.MQ2)
	}
}

func TestIngestWithoutNotifierOrCache(t *testing.T) {
	svc := NewIngestService(newFakeStore(), NewAlertState(DefaultThresholds()), nil, nil, 0, zap.NewNop())
	if _, err := svc.Ingest(context.Background(), models.RawReading{MQ2: models.Float(99), Timestamp: "2024-06-01T08:00:00"}); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if svc.AlertStatus().ActiveSeverity != models.SeverityDanger {
		t.Fatalf("expected danger status")
	}
}
