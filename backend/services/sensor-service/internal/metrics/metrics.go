package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by route and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airwatch_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration observes HTTP latency by route.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "airwatch_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// ReadingsIngested counts ingest attempts by outcome (stored, invalid, store_error).
	ReadingsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airwatch_readings_ingested_total",
			Help: "Total number of sensor readings submitted for ingestion",
		},
		[]string{"result"},
	)

	// AlertsAnnounced counts notifications produced by the alert evaluator.
	AlertsAnnounced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airwatch_alerts_announced_total",
			Help: "Total number of alerts announced",
		},
		[]string{"severity"},
	)

	// ActiveSeverity is the severity of the latest evaluated reading (0 none, 1 elevated, 2 danger).
	ActiveSeverity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "airwatch_alert_active_severity",
			Help: "Severity of the most recently evaluated reading",
		},
	)

	// NotificationsSent counts sink deliveries by sink and status.
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airwatch_notifications_sent_total",
			Help: "Total number of notification deliveries",
		},
		[]string{"sink", "status"},
	)

	// NotificationsDropped counts notifications dropped because the queue was full.
	NotificationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "airwatch_notifications_dropped_total",
			Help: "Total number of notifications dropped on a full queue",
		},
	)

	// RollupCacheRequests counts rollup cache outcomes (hit, miss, error, bypass, invalidate_error).
	RollupCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airwatch_rollup_cache_requests_total",
			Help: "Total number of rollup cache lookups",
		},
		[]string{"result"},
	)

	// StoreLatency observes reading store calls by operation.
	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "airwatch_store_latency_seconds",
			Help:    "Reading store call latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	// WebSocketClients is the number of connected alert stream clients.
	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "airwatch_ws_clients",
			Help: "Number of connected alert stream clients",
		},
	)
)
