// Package metrics exposes Prometheus counters for the engagement pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EmailsSent counts successfully dispatched emails by template.
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engage_emails_sent_total",
			Help: "Total number of emails dispatched through a transport",
		},
		[]string{"template"},
	)

	// OpensRecorded counts pixel fetches that matched a known tracking id.
	OpensRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engage_opens_recorded_total",
			Help: "Total number of open events recorded",
		},
	)

	// ClicksRecorded counts redirects that matched a known tracking id.
	ClicksRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engage_clicks_recorded_total",
			Help: "Total number of click events recorded",
		},
	)

	// PersistFailures counts swallowed store save errors. Saves are
	// best-effort, so this counter is the only surfaced signal.
	PersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engage_persist_failures_total",
			Help: "Total number of event store persist failures",
		},
	)
)

// Handler returns the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
