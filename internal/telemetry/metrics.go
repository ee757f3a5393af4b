// Package telemetry exposes prometheus collectors for toggle evaluation.
// Collectors are registered on a caller-supplied registerer; serving them is
// up to the caller.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/offerhub/toggles/internal/toggle"
)

// Metrics implements toggle.Observer, toggle.BatchObserver,
// toggle.ValidationObserver and registry.SizeRecorder.
type Metrics struct {
	evaluations        *prometheus.CounterVec
	batchSize          prometheus.Histogram
	validationFailures *prometheus.CounterVec
	registryToggles    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toggle_evaluations_total",
				Help: "Total feature toggle evaluations",
			},
			[]string{"strategy", "code"},
		),
		batchSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "toggle_batch_size",
				Help:    "Number of toggles per batch evaluation",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		validationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toggle_validation_failures_total",
				Help: "Total feature toggle definitions that failed validation",
			},
			[]string{"toggle"},
		),
		registryToggles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "toggle_registry_toggles",
			Help: "Number of toggles currently held by the registry",
		}),
	}

	for _, c := range []prometheus.Collector{m.evaluations, m.batchSize, m.validationFailures, m.registryToggles} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe counts one evaluation.
func (m *Metrics) Observe(t toggle.FeatureToggle, result toggle.Evaluation) {
	m.evaluations.WithLabelValues(string(t.RolloutStrategy), string(result.Code)).Inc()
}

// ObserveBatch records the size of a batch evaluation.
func (m *Metrics) ObserveBatch(size int) {
	m.batchSize.Observe(float64(size))
}

// ObserveValidation counts invalid toggle definitions.
func (m *Metrics) ObserveValidation(t toggle.FeatureToggle, result toggle.ValidationResult) {
	if !result.IsValid {
		m.validationFailures.WithLabelValues(t.Key).Inc()
	}
}

// SetRegistrySize records the registry size.
func (m *Metrics) SetRegistrySize(n int) {
	m.registryToggles.Set(float64(n))
}
