// Package metrics exposes the harvest Prometheus metrics over HTTP.
// The metrics themselves are declared with promauto in the packages that
// record them (client, pagination, ratelimit, export).
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Handler returns a mux serving /metrics from the default Prometheus
// gatherer, which promauto registers every harvest metric with, and /health.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", healthHandler)
	return mux
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// Server serves Handler on an address for the lifetime of a command run.
type Server struct {
	srv *http.Server
}

// Serve starts the metrics endpoint on addr in the background.
// An empty addr disables the endpoint and returns a nil *Server, which
// Shutdown accepts.
func Serve(addr string) *Server {
	if addr == "" {
		return nil
	}

	s := &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}}

	logger := log.With().Str("component", "metrics").Logger()
	go func() {
		logger.Info().Str("addr", addr).Msg("Serving metrics")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn().Err(err).Str("addr", addr).Msg("Metrics endpoint stopped")
		}
	}()

	return s
}

// Shutdown stops the endpoint.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - harvest_requests_total{collection, status} (Counter): listing requests by HTTP status
//   - harvest_request_duration_seconds{collection} (Histogram): listing request duration
//   - harvest_errors_total{class} (Counter): failed requests by error class
//
// Fetch Metrics (pkg/pagination):
//   - harvest_pages_fetched_total{collection} (Counter): pages requested
//   - harvest_records_total{collection} (Counter): records appended to results
//   - harvest_items_skipped_total{reason} (Counter): items that could not become records
//   - harvest_field_gaps_total{field} (Counter): required fields missing from items
//   - harvest_fetch_stops_total{reason} (Counter): fetch runs by stop reason
//
// Quota Metrics (pkg/ratelimit):
//   - harvest_ratelimit_remaining (Gauge): requests left in the current window
//   - harvest_ratelimit_used (Gauge): requests used in the current window
//   - harvest_ratelimit_low_total (Counter): responses seen with the quota nearly spent
//
// Export Metrics (pkg/export):
//   - harvest_export_records_total{sink} (Counter): records written by sink
//   - harvest_export_errors_total{sink} (Counter): failed sink writes
//
// Example Prometheus Queries:
//
//   # Partial runs
//   sum(rate(harvest_fetch_stops_total{reason="page_failed"}[1h]))
//
//   # Field completeness
//   sum by (field) (harvest_field_gaps_total) / sum(harvest_records_total)
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(harvest_request_duration_seconds_bucket[5m]))
