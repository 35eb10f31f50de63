package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks classification outcomes and per tier evaluation latency.
type Metrics struct {
	Classifications *prometheus.CounterVec
	TierDuration    *prometheus.HistogramVec
}

// New registers the metrics with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "case_classifications_total",
			Help: "Total number of case classifications by disease and result",
		}, []string{"disease", "classification"}),
		TierDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "case_classification_tier_duration_seconds",
			Help:    "Duration of evaluating one classification tier",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}, []string{"disease", "tier"}),
	}
}

// ObserveClassification counts one classification result.
func (m *Metrics) ObserveClassification(disease, classification string) {
	m.Classifications.WithLabelValues(disease, classification).Inc()
}

// ObserveTierLatency records how long one tier took to evaluate.
func (m *Metrics) ObserveTierLatency(disease, tier string, duration time.Duration) {
	m.TierDuration.WithLabelValues(disease, tier).Observe(duration.Seconds())
}
