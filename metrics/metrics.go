package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes of a single adapter call.
const (
	OutcomeOK      = "ok"
	OutcomeEmpty   = "empty"
	OutcomeFailed  = "failed"
	OutcomeTimeout = "timeout"
)

// Recorder tracks adapter and request outcomes. A nil *Recorder records
// nothing.
type Recorder struct {
	registry    *prometheus.Registry
	predictions *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	requests    *prometheus.CounterVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "konabreed",
			Name:      "adapter_predictions_total",
			Help:      "Adapter prediction calls by outcome.",
		}, []string{"adapter", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "konabreed",
			Name:      "adapter_prediction_seconds",
			Help:      "Adapter prediction latency.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"adapter"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "konabreed",
			Name:      "aggregate_requests_total",
			Help:      "Aggregation requests by outcome.",
		}, []string{"outcome"}),
	}
	r.registry.MustRegister(r.predictions, r.latency, r.requests)
	return r
}

func (r *Recorder) ObservePrediction(adapter, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.predictions.WithLabelValues(adapter, outcome).Inc()
	r.latency.WithLabelValues(adapter).Observe(d.Seconds())
}

// ObserveRequest counts one aggregation, outcome being "ok", "empty" or
// "invalid_image".
func (r *Recorder) ObserveRequest(outcome string) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(outcome).Inc()
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }
