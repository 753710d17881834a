package core

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PromObserver exports dispatch counters and latencies on its own registry.
type PromObserver struct {
	registry *prometheus.Registry
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewPromObserver() *PromObserver {
	o := &PromObserver{
		registry: prometheus.NewRegistry(),
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "miroteka",
				Subsystem: "gateway",
				Name:      "dispatch_total",
				Help:      "Backend dispatches by variant, method and outcome.",
			},
			[]string{"variant", "method", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "miroteka",
				Subsystem: "gateway",
				Name:      "dispatch_duration_seconds",
				Help:      "Time from credential lookup to response headers.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"variant"},
		),
	}
	o.registry.MustRegister(
		o.total,
		o.duration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return o
}

func (o *PromObserver) ObserveDispatch(variant, method, outcome string, elapsed time.Duration) {
	o.total.WithLabelValues(variant, method, outcome).Inc()
	o.duration.WithLabelValues(variant).Observe(elapsed.Seconds())
}

// Handler exposes the registry for scraping.
func (o *PromObserver) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}

// Observers fans one observation out to several observers; nil entries are skipped.
type Observers []Observer

func (obs Observers) ObserveDispatch(variant, method, outcome string, elapsed time.Duration) {
	for _, o := range obs {
		if o != nil {
			o.ObserveDispatch(variant, method, outcome, elapsed)
		}
	}
}
