// Package metrics exposes Prometheus instrumentation for the routing and
// suspend/resume layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the collectors the router and controller report into.
type Metrics struct {
	Requests           *prometheus.CounterVec
	Suspensions        *prometheus.CounterVec
	Resumes            *prometheus.CounterVec
	LoopIterations     prometheus.Histogram
	PendingCheckpoints prometheus.Gauge
	UIEvents           prometheus.Counter
}

// New registers all collectors with reg and returns the bundle.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "requests_total",
			Help:      "Requests handled, by domain and outcome.",
		}, []string{"domain", "outcome"}),
		Suspensions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "suspensions_total",
			Help:      "Checkpoints created for approval-required capabilities, by capability.",
		}, []string{"capability"}),
		Resumes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "resumes_total",
			Help:      "Resume attempts, by outcome (completed, resuspended, rejected, failed).",
		}, []string{"outcome"}),
		LoopIterations: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "concierge",
			Name:      "loop_iterations",
			Help:      "Reasoning-loop iterations consumed per worker run.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		PendingCheckpoints: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "concierge",
			Name:      "pending_checkpoints",
			Help:      "Checkpoints currently awaiting a decision.",
		}),
		UIEvents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "ui_events_total",
			Help:      "UI events relayed to callers.",
		}),
	}
}
