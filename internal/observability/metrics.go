package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	notificationsTotal     *prometheus.CounterVec
	notificationFanoutMiss *prometheus.CounterVec
	offersCreatedTotal     prometheus.Counter
	messagesSentTotal      prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nearbuy_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nearbuy_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nearbuy_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nearbuy_notifications_created_total",
			Help: "Notifications written, labelled by event type.",
		}, []string{"type"})

		notificationFanoutMiss = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nearbuy_notification_fanout_failures_total",
			Help: "Recipients skipped during notification fan-out due to insert failures.",
		}, []string{"type"})

		offersCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nearbuy_offers_created_total",
			Help: "Offers successfully created.",
		})

		messagesSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nearbuy_messages_sent_total",
			Help: "Messages appended to threads.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			notificationsTotal,
			notificationFanoutMiss,
			offersCreatedTotal,
			messagesSentTotal,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// NotificationsCreated exposes the notification counter.
func NotificationsCreated() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// NotificationFanoutFailures exposes the fan-out miss counter.
func NotificationFanoutFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationFanoutMiss
}

// OffersCreated exposes the offer counter.
func OffersCreated() prometheus.Counter {
	RegisterMetrics()
	return offersCreatedTotal
}

// MessagesSent exposes the message counter.
func MessagesSent() prometheus.Counter {
	RegisterMetrics()
	return messagesSentTotal
}
