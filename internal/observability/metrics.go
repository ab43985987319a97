// Package observability exposes Prometheus metrics for a scrape run.
package observability

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks operational metrics for the scraper.
type Metrics struct {
	PagesFetched     prometheus.Counter
	PagesFailed      prometheus.Counter
	RecordsExtracted prometheus.Counter
	RecordsRejected  prometheus.Counter
	RecordsDuplicate prometheus.Counter
	RecordsStored    prometheus.Counter
	FetchDuration    prometheus.Histogram

	registry *prometheus.Registry
	logger   *slog.Logger
}

// NewMetrics creates a new Metrics instance with its own registry.
func NewMetrics(logger *slog.Logger) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		PagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "expodir_pages_fetched_total",
			Help: "Directory pages fetched successfully.",
		}),
		PagesFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "expodir_pages_failed_total",
			Help: "Directory pages that failed to fetch.",
		}),
		RecordsExtracted: factory.NewCounter(prometheus.CounterOpts{
			Name: "expodir_records_extracted_total",
			Help: "Company records extracted from containers.",
		}),
		RecordsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "expodir_records_rejected_total",
			Help: "Records rejected by validation.",
		}),
		RecordsDuplicate: factory.NewCounter(prometheus.CounterOpts{
			Name: "expodir_records_duplicate_total",
			Help: "Records dropped as duplicates of earlier records.",
		}),
		RecordsStored: factory.NewCounter(prometheus.CounterOpts{
			Name: "expodir_records_stored_total",
			Help: "Records handed to storage backends.",
		}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "expodir_fetch_duration_seconds",
			Help:    "Time spent fetching each page.",
			Buckets: prometheus.DefBuckets,
		}),
		registry: reg,
		logger:   logger.With("component", "metrics"),
	}
}

// Handler returns the HTTP handler serving the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer starts the metrics HTTP server in the background.
func (m *Metrics) StartServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	addr := fmt.Sprintf(":%d", port)
	m.logger.Info("metrics server starting", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			m.logger.Error("metrics server error", "error", err)
		}
	}()

	return nil
}
