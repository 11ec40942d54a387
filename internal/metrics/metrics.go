package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CheckoutMetrics counts finalize outcomes and their latency.
type CheckoutMetrics struct {
	Commits   *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pos",
		Subsystem: "checkout",
		Name:      "commits_total",
		Help:      "Total number of finalize attempts by outcome.",
	}, []string{"status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pos",
		Subsystem: "checkout",
		Name:      "commit_duration_ms",
		Help:      "Finalize latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"status"})

	reg.MustRegister(commits, latency)
	return &CheckoutMetrics{Commits: commits, LatencyMS: latency}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
