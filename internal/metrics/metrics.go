// Package metrics holds the Prometheus collectors exported on the metrics
// listener.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "procurement"

var (
	workflowEventsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "workflow_events_total",
		Help:      "Committed workflow transitions by event name.",
	}, []string{"event"})

	auditWritesMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_writes_total",
		Help:      "Audit records written, by outcome.",
	}, []string{"outcome"})

	httpDurationMetric = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latency of API requests by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func WorkflowEvent(event string) {
	workflowEventsMetric.WithLabelValues(event).Inc()
}

// AuditWrite counts one audit write attempt
func AuditWrite(err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	auditWritesMetric.WithLabelValues(outcome).Inc()
}

func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpDurationMetric.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
