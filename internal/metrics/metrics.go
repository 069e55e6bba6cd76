// Package metrics exposes prometheus metrics for completion requests and
// schema reloads.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels of CompletionRequests.
const (
	OutcomeResult = "result"
	OutcomeEmpty  = "empty"
)

var (
	// CompletionRequests counts completion requests by source and outcome.
	CompletionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sqlhint_completion_requests_total",
		Help: "Completion requests by source and outcome",
	}, []string{"source", "outcome"})

	// CompletionDuration tracks completion latency.
	CompletionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sqlhint_completion_duration_seconds",
		Help:    "Completion duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14), // 10µs to ~80ms
	})

	// CompletionCandidates tracks the number of candidates returned.
	CompletionCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sqlhint_completion_candidates",
		Help:    "Candidates returned per completion",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
	})

	// SchemaReloads counts schema reloads by result.
	SchemaReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sqlhint_schema_reloads_total",
		Help: "Schema reloads by result",
	}, []string{"result"})

	// OpenDocuments is the number of documents held by the language server.
	OpenDocuments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sqlhint_open_documents",
		Help: "Documents open in the language server",
	})
)

// ObserveCompletion records one request to source that took since start and
// returned n candidates. ok is false when the source had nothing to offer.
func ObserveCompletion(source string, start time.Time, n int, ok bool) {
	outcome := OutcomeResult
	if !ok {
		outcome = OutcomeEmpty
	}
	CompletionRequests.WithLabelValues(source, outcome).Inc()
	CompletionDuration.Observe(time.Since(start).Seconds())
	if ok {
		CompletionCandidates.Observe(float64(n))
	}
}

// ObserveReload records a schema reload.
func ObserveReload(err error) {
	if err != nil {
		SchemaReloads.WithLabelValues("error").Inc()
		return
	}
	SchemaReloads.WithLabelValues("ok").Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
