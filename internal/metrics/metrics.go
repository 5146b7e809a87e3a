package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "neura"

var (
	ModelCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Hosted model call latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~50s
		},
		[]string{"kind", "status"},
	)

	MailFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mail_fetch_duration_seconds",
			Help:      "Mail provider list-then-get latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"status"},
	)

	ToolInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_invocations_total",
			Help:      "Agent tool invocations",
		},
		[]string{"tool", "outcome"},
	)

	ClassificationLabels = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classification_labels_total",
			Help:      "Emails classified, by label",
		},
		[]string{"label"},
	)

	ClassificationCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classification_cache_total",
			Help:      "Classification cache lookups",
		},
		[]string{"result"}, // hit, miss, error
	)

	AgentSteps = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agent_steps",
			Help:      "Model steps taken per chat turn",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~30s
		},
		[]string{"method", "route", "status"},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveModelCall records one model call that started at start.
func ObserveModelCall(kind string, start time.Time, err error) {
	ModelCallDuration.WithLabelValues(kind, status(err)).Observe(time.Since(start).Seconds())
}

func ObserveMailFetch(start time.Time, err error) {
	MailFetchDuration.WithLabelValues(status(err)).Observe(time.Since(start).Seconds())
}

func RecordTool(tool string, err error) {
	ToolInvocations.WithLabelValues(tool, status(err)).Inc()
}

func RecordLabel(label string) {
	ClassificationLabels.WithLabelValues(label).Inc()
}

func RecordCache(result string) {
	ClassificationCache.WithLabelValues(result).Inc()
}

func RecordAgentSteps(steps int) {
	AgentSteps.Observe(float64(steps))
}

func RecordHTTPRequest(method, route, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
