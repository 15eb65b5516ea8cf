package app

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"airwatch/backend/services/sensor-service/internal/config"
)

func TestAppRunsWithMemoryStoreAndStops(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = config.DriverMemory
	cfg.HTTP.Port = "0"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	a, err := New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("app did not stop after cancellation")
	}
}

func TestAppFailsFastOnUnreachableRedis(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = config.DriverMemory
	cfg.Redis.Addr = "127.0.0.1:1"

	if _, err := New(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatalf("expected redis connection error")
	}
}
