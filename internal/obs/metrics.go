// Package obs holds the process-wide Prometheus collectors.
package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shop"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)

	rateLimitRejects = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejects_total",
			Help:      "Total number of requests rejected due to rate limiting",
		},
	)

	panicRecoveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panic_recoveries_total",
			Help:      "Total number of panics recovered in HTTP handlers",
		},
	)

	busPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "published_total",
			Help:      "Messages handed to the bus",
		},
		[]string{"subject"},
	)

	busPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "publish_failures_total",
			Help:      "Messages the bus refused",
		},
		[]string{"subject", "reason"},
	)

	busConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "consumed_total",
			Help:      "Messages delivered to subscribers",
		},
		[]string{"subject"},
	)

	busConnEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "connection_events_total",
			Help:      "Broker connection state changes",
		},
		[]string{"event"},
	)

	eventEmitFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "emit_failures_total",
			Help:      "Events that could not be encoded or published",
		},
		[]string{"type"},
	)

	eventHandleFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "handle_failures_total",
			Help:      "Events the worker failed to process",
		},
		[]string{"type"},
	)

	batchFlushed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "flushed_items_total",
			Help:      "Items written by batch writers",
		},
		[]string{"writer"},
	)

	batchFlushDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "flush_duration_seconds",
			Help:      "Batch flush latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"writer"},
	)

	batchFlushFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "flush_failures_total",
			Help:      "Batch flushes that returned an error",
		},
		[]string{"writer"},
	)

	batchDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "dropped_total",
			Help:      "Items rejected because the batch queue was full",
		},
		[]string{"writer"},
	)

	hubConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "connections",
			Help:      "Open notification sockets",
		},
	)

	hubDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "delivered_total",
			Help:      "Frames queued to notification sockets",
		},
	)

	hubDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "dropped_total",
			Help:      "Frames dropped by a full socket queue",
		},
	)
)

// HTTPInFlight increments the in-flight gauge and returns its decrement.
func HTTPInFlight() func() {
	httpRequestsInFlight.Inc()
	return httpRequestsInFlight.Dec
}

// ObserveHTTP records one finished request.
func ObserveHTTP(method, route, status string, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RateLimited()    { rateLimitRejects.Inc() }
func PanicRecovered() { panicRecoveries.Inc() }

func BusPublished(subject string) { busPublished.WithLabelValues(subject).Inc() }
func BusConsumed(subject string)  { busConsumed.WithLabelValues(subject).Inc() }

func BusPublishFailed(subject, reason string) {
	busPublishFailures.WithLabelValues(subject, reason).Inc()
}

// BusConnEvent counts broker connection changes such as "disconnected" or "reconnected".
func BusConnEvent(event string) { busConnEvents.WithLabelValues(event).Inc() }

func EventEmitFailed(eventType string)   { eventEmitFailures.WithLabelValues(eventType).Inc() }
func EventHandleFailed(eventType string) { eventHandleFailures.WithLabelValues(eventType).Inc() }

// BatchFlushed records a successful flush of n items.
func BatchFlushed(writer string, n int, d time.Duration) {
	batchFlushed.WithLabelValues(writer).Add(float64(n))
	batchFlushDuration.WithLabelValues(writer).Observe(d.Seconds())
}

func BatchFlushFailed(writer string) { batchFlushFailures.WithLabelValues(writer).Inc() }
func BatchDropped(writer string)     { batchDropped.WithLabelValues(writer).Inc() }

func HubConnected()    { hubConnections.Inc() }
func HubDisconnected() { hubConnections.Dec() }
func HubDelivered()    { hubDelivered.Inc() }
func HubDropped()      { hubDropped.Inc() }
