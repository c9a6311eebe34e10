package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Exporter names accepted by InitMetrics
const (
	ExporterScraper = "scraper"
	ExporterGRPC    = "grpc"
)

// Telemetry owns the meter provider and, for the scraper exporter, the metrics server
type Telemetry struct {
	server   *http.Server          // If type of metrics collection == "scraper".
	Provider *metric.MeterProvider // If not scraper use gRPC.
	meter    api.Meter
	ctx      context.Context
	once     sync.Once
}

// InitMetrics installs the global meter provider. exporter "scraper" serves
// /metrics on port; anything else pushes over OTLP gRPC.
func (t *Telemetry) InitMetrics(ctx context.Context, meterName, exporter, port string) *Telemetry {
	t.ctx = ctx

	t.once.Do(func() {
		if exporter == ExporterScraper {
			slog.Info("Starting metrics with scraper exporter", "port", port)
			t.initScrapeMetrics(meterName, port)
		} else {
			slog.Info("Starting metrics with grpc exporter")
			// Sends to localhost:4317 or whatever OTEL_EXPORTER_OTLP_METRICS_ENDPOINT is set to.
			t.initGRPCMetrics(meterName)
		}
	})
	return t
}

// Meter returns the configured meter, or the global one when initialization failed
func (t *Telemetry) Meter() api.Meter {
	if t.meter != nil {
		return t.meter
	}
	return otel.Meter("storefront")
}

// Close flushes pending metrics and stops the exporter and metrics server
func (t *Telemetry) Close(ctx context.Context) {
	t.shutdownScraperMetrics(ctx)
	if t.Provider == nil {
		return
	}
	if err := t.Provider.ForceFlush(ctx); err != nil {
		slog.Warn("Failed to flush metrics", "error", err)
	}
	if err := t.Provider.Shutdown(ctx); err != nil {
		slog.Warn("Failed to shut down meter provider", "error", err)
	}
}

// Initialize GRPC metrics exporter. https://opentelemetry.io/docs/languages/go/exporters/#otlp-metrics-over-grpc.
func (t *Telemetry) initGRPCMetrics(meterName string) {
	exporter, err := otlpmetricgrpc.New(t.ctx)
	if err != nil {
		slog.Error("Creating GRPC exporter", "error", err)
		return
	}

	t.Provider = metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(exporter)))
	otel.SetMeterProvider(t.Provider)
	t.meter = t.Provider.Meter(meterName)
}

// Initialize scrape metrics exporter. https://github.com/open-telemetry/opentelemetry-go/blob/main/example/prometheus/main.go.
func (t *Telemetry) initScrapeMetrics(meterName, port string) {
	// The exporter is both a Reader and a prometheus.Collector
	exporter, err := prometheus.New()
	if err != nil {
		slog.Error("Creating HTML scrape exporter", "error", err)
		return
	}

	t.Provider = metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(t.Provider)
	t.meter = t.Provider.Meter(meterName)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	t.server = &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go t.serveMetrics()
}

// Run metrics server for "scraper" open telemetry collector
func (t *Telemetry) serveMetrics() {
	slog.Info("Serving metrics", "addr", t.server.Addr+"/metrics")

	if err := t.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("Metrics server stopped")
			return
		}
		slog.Error("ListenAndServe exited with", "error", err)
	}
}

// Shutdown HTTP server used for "scraper" metrics collection.
func (t *Telemetry) shutdownScraperMetrics(ctx context.Context) {
	if t.server != nil {
		_ = t.server.Shutdown(ctx)
		slog.Info("Shutting down metrics server")
	}
}
