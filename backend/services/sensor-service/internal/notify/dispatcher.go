package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"airwatch/backend/services/sensor-service/internal/metrics"
	"airwatch/backend/services/sensor-service/internal/models"
)

// Sink delivers one notification.
type Sink interface {
	Name() string
	Send(ctx context.Context, n models.Notification) error
}

// Dispatcher queues announced alerts and delivers them to every sink off the ingest path.
type Dispatcher struct {
	sinks       []Sink
	queue       chan models.Notification
	sendTimeout time.Duration
	logger      *zap.Logger
}

// NewDispatcher builds dispatcher with a bounded queue.
func NewDispatcher(sinks []Sink, queueSize int, sendTimeout time.Duration, logger *zap.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	return &Dispatcher{
		sinks:       sinks,
		queue:       make(chan models.Notification, queueSize),
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// Enqueue hands n to the worker. It never blocks; a full queue drops n.
func (d *Dispatcher) Enqueue(n models.Notification) {
	select {
	case d.queue <- n:
	default:
		metrics.NotificationsDropped.Inc()
		d.logger.Warn("dropping notification, queue full",
			zap.String("notification_id", n.ID),
			zap.String("severity", n.Severity.String()),
		)
	}
}

// Run delivers queued notifications until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-d.queue:
			d.deliver(ctx, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n models.Notification) {
	for _, sink := range d.sinks {
		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		err := sink.Send(sendCtx, n)
		cancel()
		if err != nil {
			metrics.NotificationsSent.WithLabelValues(sink.Name(), "error").Inc()
			d.logger.Warn("notification delivery failed",
				zap.String("sink", sink.Name()),
				zap.String("notification_id", n.ID),
				zap.Error(err),
			)
			continue
		}
		metrics.NotificationsSent.WithLabelValues(sink.Name(), "ok").Inc()
		d.logger.Info("notification delivered",
			zap.String("sink", sink.Name()),
			zap.String("notification_id", n.ID),
		)
	}
}
