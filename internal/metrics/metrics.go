// Package metrics exposes Prometheus collectors for the analysis and
// settlement flows.
package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AnalysisRuns counts completed analysis runs.
	AnalysisRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lol",
		Name:      "analysis_runs_total",
		Help:      "Number of completed analysis runs",
	})

	// BetsRecorded counts bets written to the ledger.
	BetsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lol",
		Name:      "bets_recorded_total",
		Help:      "Number of qualifying bets recorded",
	})

	// SettlementRuns counts completed settlement runs.
	SettlementRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lol",
		Name:      "settlement_runs_total",
		Help:      "Number of completed settlement runs",
	})

	// BetsSettled counts settled bets by outcome.
	BetsSettled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lol",
		Name:      "bets_settled_total",
		Help:      "Number of settled bets by outcome",
	}, []string{"status"})

	// ProviderRequests counts provider API calls by endpoint.
	ProviderRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lol",
		Name:      "provider_requests_total",
		Help:      "Number of provider API requests by endpoint",
	}, []string{"endpoint"})

	// SampleCacheHits gauges the stats cache hit ratio inputs.
	SampleCacheHits = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "lol",
		Name:      "sample_cache_lookups",
		Help:      "Sample cache lookups by result since startup",
	}, []string{"result"})
)

var registerOnce sync.Once

// Register adds all collectors to the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			AnalysisRuns,
			BetsRecorded,
			SettlementRuns,
			BetsSettled,
			ProviderRequests,
			SampleCacheHits,
		)
	})
}

// Serve starts the metrics endpoint in a background goroutine.
func Serve(port int, path string) *http.Server {
	Register()

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return srv
}
