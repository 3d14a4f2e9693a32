package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "halewell",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "halewell",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	generationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "halewell",
			Subsystem: "generate",
			Name:      "runs_total",
			Help:      "Content generation pipeline runs by outcome.",
		},
		[]string{"outcome"},
	)
	generationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "halewell",
			Subsystem: "generate",
			Name:      "run_duration_seconds",
			Help:      "Content generation pipeline run duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	mailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "halewell",
			Subsystem: "mail",
			Name:      "sent_total",
			Help:      "Outbound notification mails by kind.",
		},
		[]string{"kind", "success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, generationRuns, generationDuration, mailsSent)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func RecordGenerationRun(outcome string, duration time.Duration) {
	RegisterMetrics()
	generationRuns.WithLabelValues(outcome).Inc()
	generationDuration.Observe(duration.Seconds())
}

func RecordMail(kind string, success bool) {
	RegisterMetrics()
	mailsSent.WithLabelValues(kind, strconv.FormatBool(success)).Inc()
}
