// Package metrics exposes Prometheus collectors for catalog activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "addonctl"

// Registry holds every addonctl collector plus the Go runtime collectors.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// DocumentFetches counts remote document fetches by kind (repository, list, package) and outcome.
	DocumentFetches = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_fetches_total",
			Help:      "Remote document fetches by document kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// RepositoryRefreshes counts refresh passes per repository.
	RepositoryRefreshes = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repository_refreshes_total",
			Help:      "Repository refreshes by outcome",
		},
		[]string{"repository", "outcome"},
	)

	// CatalogAddons is the number of add-ons known per repository after the last refresh.
	CatalogAddons = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_addons",
			Help:      "Add-ons known per repository",
		},
		[]string{"repository"},
	)

	// Installs counts install attempts by outcome.
	Installs = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "installs_total",
			Help:      "Install attempts by outcome",
		},
		[]string{"outcome"},
	)

	// PendingUpgrades is the size of the last computed upgrade list.
	PendingUpgrades = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_upgrades",
			Help:      "Add-ons reported stale by their transfer session",
		},
	)
)

// Outcome label values.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
