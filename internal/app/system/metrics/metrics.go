// Package metrics exposes Prometheus instrumentation for the role and
// membership core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PermissionChecks counts hasPermission outcomes, labeled allowed|denied.
	PermissionChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attesthub_permission_checks_total",
		Help: "Permission check outcomes.",
	}, []string{"result"})

	// Reprojections counts participant-projection rebuilds per trigger.
	Reprojections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attesthub_participant_reprojections_total",
		Help: "Participant projection rebuilds by triggering operation.",
	}, []string{"trigger"})

	// ReprojectionDuration observes how long a full rebuild takes.
	ReprojectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "attesthub_participant_reprojection_seconds",
		Help:    "Duration of participant projection rebuilds.",
		Buckets: prometheus.DefBuckets,
	})
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
