// Package metrics defines the Prometheus instruments exported by the server
// and the helpers that keep the gauge family current.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route pattern, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swu_tracker_http_requests_total",
		Help: "HTTP requests processed, labeled by method, route, and status code.",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request latency by method and route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "swu_tracker_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// CollectionCardsTotal is the summed quantity of all owned printings.
	CollectionCardsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swu_tracker_collection_cards_total",
		Help: "Total card copies in the collection.",
	})

	// CollectionCardsBySet breaks the owned quantity down per set.
	CollectionCardsBySet = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "swu_tracker_collection_cards_by_set",
		Help: "Card copies in the collection, labeled by set.",
	}, []string{"set"})

	// CardDatabaseSize is the number of catalog entries known locally.
	CardDatabaseSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swu_tracker_card_database_size",
		Help: "Catalog cards in the local database.",
	})

	// ImportJobsTotal counts finished import jobs by outcome.
	ImportJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swu_tracker_import_jobs_total",
		Help: "Completed CSV import jobs, labeled by outcome.",
	}, []string{"status"})

	// ImportRowsTotal counts rows written by import jobs.
	ImportRowsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swu_tracker_import_rows_total",
		Help: "Collection rows written by CSV imports.",
	})

	// DuplicateChecksTotal counts duplicate lookups by strongest match kind.
	DuplicateChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swu_tracker_duplicate_checks_total",
		Help: "Duplicate checks performed, labeled by the strongest match found.",
	}, []string{"result"})
)
