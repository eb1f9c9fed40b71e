// Package metrics holds the Prometheus collectors shared by the services.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ingest groups the counters emitted by the trending ingestion pipeline.
// Category label is "movie" or "tv".
type Ingest struct {
	registry *prometheus.Registry

	Runs         prometheus.Counter
	PagesFetched *prometheus.CounterVec
	FetchErrors  *prometheus.CounterVec
	RowsCreated  *prometheus.CounterVec
	RowsUpdated  *prometheus.CounterVec
	WriteFailed  *prometheus.CounterVec
}

func NewIngest() *Ingest {
	m := &Ingest{
		registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ingest_runs_total",
			Help: "Total pipeline invocations",
		}),
		PagesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_pages_fetched_total",
			Help: "Upstream pages fetched successfully",
		}, []string{"category"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_fetch_errors_total",
			Help: "Upstream page fetches that failed and were skipped",
		}, []string{"category"}),
		RowsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_rows_created_total",
			Help: "Catalog rows inserted by the store writer",
		}, []string{"category"}),
		RowsUpdated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_rows_updated_total",
			Help: "Catalog rows updated by the store writer",
		}, []string{"category"}),
		WriteFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_write_failures_total",
			Help: "Store write transactions rolled back",
		}, []string{"category"}),
	}
	m.registry.MustRegister(m.Runs, m.PagesFetched, m.FetchErrors, m.RowsCreated, m.RowsUpdated, m.WriteFailed)
	return m
}

// Handler exposes the ingest registry in Prometheus text format.
func (m *Ingest) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
