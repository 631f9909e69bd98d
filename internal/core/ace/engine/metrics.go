package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 引擎指标
type Metrics struct {
	validations      *prometheus.CounterVec
	updates          *prometheus.CounterVec
	cacheConsumed    prometheus.Counter
	validationTiming *prometheus.HistogramVec
}

// NewMetrics 在 reg 上注册引擎指标
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ace",
			Name:      "proofs_validated_total",
			Help:      "Proof validations by validator and result reason.",
		}, []string{"validator", "result"}),
		updates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ace",
			Name:      "registry_updates_total",
			Help:      "Note registry mutations by operation and result reason.",
		}, []string{"operation", "result"}),
		cacheConsumed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ace",
			Name:      "cache_entries_consumed_total",
			Help:      "Validated-proof cache entries consumed.",
		}),
		validationTiming: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ace",
			Name:      "validation_duration_seconds",
			Help:      "Proof validation latency by validator.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"validator"}),
	}
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	return reasonOf(err)
}

func (m *Metrics) observeValidation(validator string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(validator, result(err)).Inc()
	m.validationTiming.WithLabelValues(validator).Observe(seconds)
}

func (m *Metrics) observeUpdate(op string, err error) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues(op, result(err)).Inc()
}

func (m *Metrics) consumed(n int) {
	if m == nil {
		return
	}
	m.cacheConsumed.Add(float64(n))
}
