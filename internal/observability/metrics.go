// Package observability exports sync and import metrics to Prometheus.
package observability

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentstation/supplymap"
	"github.com/agentstation/supplymap/pkg/constants"
	"github.com/agentstation/supplymap/pkg/ingest"
	"github.com/agentstation/supplymap/pkg/logging"
	pkgsync "github.com/agentstation/supplymap/pkg/sync"
)

const namespace = "supplymap"

var _ supplymap.Metrics = (*Metrics)(nil)

// Metrics holds the collectors on a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	syncRuns       *prometheus.CounterVec
	syncRecords    *prometheus.CounterVec
	syncDuration   prometheus.Histogram
	supplierRows   *prometheus.CounterVec
	unavailable    *prometheus.CounterVec
	importRuns     *prometheus.CounterVec
	importRows     *prometheus.CounterVec
	importDuration *prometheus.HistogramVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Sync runs by outcome.",
		}, []string{"outcome"}),
		syncRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_records_total",
			Help:      "Canonical records handled by sync runs, by result.",
		}, []string{"result"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of sync runs.",
			Buckets:   prometheus.DefBuckets,
		}),
		supplierRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "supplier_rows_loaded_total",
			Help:      "Staging rows loaded per supplier.",
		}, []string{"supplier"}),
		unavailable: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "supplier_unavailable_total",
			Help:      "Sync runs in which a supplier's staging table could not be read.",
		}, []string{"supplier"}),
		importRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_runs_total",
			Help:      "Imports by supplier and outcome.",
		}, []string{"supplier", "outcome"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Rows handled by committed imports, by result.",
		}, []string{"supplier", "result"}),
		importDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Duration of imports.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"supplier"}),
	}

	m.registry.MustRegister(
		m.syncRuns, m.syncRecords, m.syncDuration,
		m.supplierRows, m.unavailable,
		m.importRuns, m.importRows, m.importDuration,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSync records a finished sync run.
func (m *Metrics) ObserveSync(result *pkgsync.Result, elapsed time.Duration) {
	m.syncDuration.Observe(elapsed.Seconds())
	if result == nil {
		m.syncRuns.WithLabelValues("failed").Inc()
		return
	}

	switch {
	case !result.Success:
		m.syncRuns.WithLabelValues("failed").Inc()
	case result.DryRun:
		m.syncRuns.WithLabelValues("dry_run").Inc()
	default:
		m.syncRuns.WithLabelValues("succeeded").Inc()
	}

	m.syncRecords.WithLabelValues("added").Add(float64(result.Added))
	m.syncRecords.WithLabelValues("updated").Add(float64(result.Updated))
	m.syncRecords.WithLabelValues("skipped").Add(float64(result.Skipped))
	m.syncRecords.WithLabelValues("no_identity").Add(float64(result.NoIdentity))
	m.syncRecords.WithLabelValues("duplicate").Add(float64(result.Duplicates))

	for key, sr := range result.Suppliers {
		m.supplierRows.WithLabelValues(key).Add(float64(sr.Loaded))
		if sr.Unavailable {
			m.unavailable.WithLabelValues(key).Inc()
		}
	}
}

// ObserveImport records a finished import.
func (m *Metrics) ObserveImport(supplier string, result *ingest.Result, err error, elapsed time.Duration) {
	m.importDuration.WithLabelValues(supplier).Observe(elapsed.Seconds())
	if err != nil || result == nil {
		m.importRuns.WithLabelValues(supplier, "failed").Inc()
		return
	}
	m.importRuns.WithLabelValues(supplier, "succeeded").Inc()
	m.importRows.WithLabelValues(supplier, "imported").Add(float64(result.Imported))
	m.importRows.WithLabelValues(supplier, "updated").Add(float64(result.Updated))
	m.importRows.WithLabelValues(supplier, "skipped").Add(float64(result.Skipped))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logging.Info().Str("addr", addr).Msg("Metrics server listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
