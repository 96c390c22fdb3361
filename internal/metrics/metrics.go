// Package metrics defines the Prometheus metrics of the web client. All
// metrics register with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "zaloga"

// BackendRequestsTotal counts calls to the inventory backend.
// Labels:
//   - endpoint: route template of the call (e.g. "GET /supplies/all")
//   - code: HTTP status code, or "error" when no response arrived
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the inventory backend.",
	},
	[]string{"endpoint", "code"},
)

// BackendRequestDuration measures backend round trips.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of requests to the inventory backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)

// GateDecisionsTotal counts route admission decisions.
// Labels:
//   - class: public, authenticated or admin
//   - outcome: admit, unauthenticated or insufficient_role
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of route admission decisions.",
	},
	[]string{"class", "outcome"},
)
