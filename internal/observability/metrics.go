package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec

	notificationsPublishedTotal *prometheus.CounterVec
	emailsSentTotal             *prometheus.CounterVec
	mentionsResolvedTotal       prometheus.Counter
	sseClientsActive            prometheus.Gauge
	chatClientsActive           prometheus.Gauge

	uploadsTotal   *prometheus.CounterVec
	uploadRejected *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collabflow_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "collabflow_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collabflow_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		notificationsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collabflow_notifications_published_total",
			Help: "Total number of notifications persisted, by type.",
		}, []string{"type"})

		emailsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collabflow_emails_sent_total",
			Help: "Total number of notification email attempts, by outcome.",
		}, []string{"status"})

		mentionsResolvedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "collabflow_mentions_resolved_total",
			Help: "Total number of @mentions resolved to roster members.",
		})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "collabflow_sse_clients_active",
			Help: "Number of currently connected notification stream clients.",
		})

		chatClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "collabflow_chat_clients_active",
			Help: "Number of currently connected chat websocket clients.",
		})

		uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collabflow_uploads_total",
			Help: "Total number of stored attachments, by detected type.",
		}, []string{"type"})

		uploadRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collabflow_uploads_rejected_total",
			Help: "Total number of rejected attachment uploads, by reason.",
		}, []string{"reason"})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			notificationsPublishedTotal, emailsSentTotal, mentionsResolvedTotal,
			sseClientsActive, chatClientsActive,
			uploadsTotal, uploadRejected,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// NotificationsPublishedTotal exposes the notification publish counter.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublishedTotal
}

// EmailsSentTotal exposes the email delivery counter.
func EmailsSentTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return emailsSentTotal
}

// MentionsResolvedTotal exposes the resolved mention counter.
func MentionsResolvedTotal() prometheus.Counter {
	RegisterMetrics()
	return mentionsResolvedTotal
}

// SSEClientsActive exposes the notification stream client gauge.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}

// ChatClientsActive exposes the chat websocket client gauge.
func ChatClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return chatClientsActive
}

// UploadsTotal exposes the stored attachment counter.
func UploadsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadsTotal
}

// UploadRejected exposes the rejected upload counter.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejected
}
