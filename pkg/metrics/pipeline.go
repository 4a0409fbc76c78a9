package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tenantgate"

var (
	pipelineDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "denials_total",
		Help:      "Requests rejected by the tenant pipeline, by error code.",
	}, []string{"code"})

	pipelineStepLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "step_duration_seconds",
		Help:      "Latency of each tenant pipeline step.",
		Buckets: []float64{
			0.0005, 0.001, 0.002, 0.005,
			0.01, 0.02, 0.05, 0.1,
			0.2, 0.5, 1, 2, 5,
		},
	}, []string{"step"})

	identityRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "identity",
		Name:      "requests_total",
		Help:      "Identity provider calls by operation and result.",
	}, []string{"operation", "result"})

	identityLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "identity",
		Name:      "latency_seconds",
		Help:      "Identity provider call latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	usersProvisioned = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "users",
		Name:      "provisioned_total",
		Help:      "User provisioning outcomes: existing, created or conflict.",
	}, []string{"outcome"})

	discardedConnections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "discarded_connections_total",
		Help:      "Pooled connections closed because their search_path could not be reset.",
	})
)

func RecordDenial(code string) {
	pipelineDenials.WithLabelValues(code).Inc()
}

func ObserveStep(step string, d time.Duration) {
	pipelineStepLatency.WithLabelValues(step).Observe(d.Seconds())
}

func RecordIdentityCall(operation, result string, d time.Duration) {
	identityRequests.WithLabelValues(operation, result).Inc()
	identityLatency.WithLabelValues(operation).Observe(d.Seconds())
}

func RecordProvisioning(outcome string) {
	usersProvisioned.WithLabelValues(outcome).Inc()
}

func RecordDiscardedConnection() {
	discardedConnections.Inc()
}
