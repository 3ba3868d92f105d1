package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricTablesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radar_tables_written_total",
			Help: "Total number of tables written to the cache.",
		},
		[]string{"collection"},
	)

	metricRowsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radar_rows_written_total",
			Help: "Total number of rows written to the cache.",
		},
		[]string{"collection"},
	)

	metricSnapshotErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "radar_record_snapshot_errors_total",
			Help: "Total number of failed scheduled snapshots.",
		},
	)

	metricMirrorErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "radar_table_mirror_failed_total",
			Help: "Total number of tables that could not be mirrored.",
		},
	)

	metricPublishErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "radar_table_events_failed_total",
			Help: "Total number of table events that could not be published.",
		},
	)
)

func init() {
	prometheus.MustRegister(metricTablesWritten, metricRowsWritten, metricSnapshotErrors, metricMirrorErrors, metricPublishErrors)
}

// serveMetrics serves /metrics on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string) {
	router := http.NewServeMux()
	router.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	go func() {
		slog.Info("metrics: listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics: server stopped", "error", err)
		}
	}()
}
