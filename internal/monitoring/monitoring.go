// Package monitoring provides Prometheus metrics for the Broilink backend.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "broilink"

var (
	// HTTPRequestTotal counts requests by method, path and status.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, path, and status.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDurationSeconds is request latency histogram.
	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2.5, 10), // 1ms to ~9.3s
		},
		[]string{"method", "path"},
	)

	// ReadingsIngestedTotal counts stored environment readings by source.
	ReadingsIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_ingested_total",
			Help:      "Total number of environment readings stored, by data source.",
		},
		[]string{"source"},
	)

	// IngestErrorsTotal counts rejected or failed ingest attempts.
	IngestErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_errors_total",
			Help:      "Total number of failed reading ingest attempts, by source.",
		},
		[]string{"source"},
	)

	// AlertsFiredTotal counts alerts delivered after dedup, by status.
	AlertsFiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_fired_total",
			Help:      "Total number of farm alerts delivered, by status.",
		},
		[]string{"status"},
	)

	// AlertsSuppressedTotal counts alerts dropped by the dedup window.
	AlertsSuppressedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_suppressed_total",
			Help:      "Total number of farm alerts suppressed by deduplication.",
		},
	)

	// AggregateQueryDurationSeconds is monitoring query latency by range.
	AggregateQueryDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregate_query_duration_seconds",
			Help:      "Monitoring aggregate query duration in seconds, by range.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		},
		[]string{"range"},
	)

	// TelegramSendTotal counts bot message deliveries by outcome.
	TelegramSendTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telegram_send_total",
			Help:      "Total number of Telegram messages sent, by outcome.",
		},
		[]string{"outcome"},
	)

	// MQTTMessagesTotal counts ingest bridge messages by outcome.
	MQTTMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mqtt_messages_total",
			Help:      "Total number of MQTT ingest messages processed, by outcome.",
		},
		[]string{"outcome"},
	)
)
