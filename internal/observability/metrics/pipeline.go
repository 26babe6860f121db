package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

// PipelineMetrics implements ports.PipelineObserver.
type PipelineMetrics struct {
	service string

	recoveryTotal  *prometheus.CounterVec
	repairTotal    *prometheus.CounterVec
	itemsTotal     *prometheus.CounterVec
	droppedTotal   *prometheus.CounterVec
	cacheTotal     *prometheus.CounterVec
	estimatesTotal *prometheus.CounterVec
	breakerState   *prometheus.GaugeVec
}

func NewPipelineMetrics(service string, reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		service: service,
		recoveryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recovery",
			Name:      "total",
			Help:      "Model output recoveries by operation, final stage and outcome.",
		}, []string{"service", "operation", "stage", "outcome"}),
		repairTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recovery",
			Name:      "repair_calls_total",
			Help:      "Repair round trips to the model.",
		}, []string{"service", "operation"}),
		itemsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "items_total",
			Help:      "Inventory items emitted by shelf-life source.",
		}, []string{"service", "source"}),
		droppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "dropped_total",
			Help:      "Extracted candidates dropped during normalization.",
		}, []string{"service", "reason"}),
		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "estimate_cache",
			Name:      "lookups_total",
			Help:      "Estimate cache lookups by result.",
		}, []string{"service", "result"}),
		estimatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "expiry",
			Name:      "estimates_total",
			Help:      "Single-item expiry estimates by source.",
		}, []string{"service", "source"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "breaker_state",
			Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
		}, []string{"service", "operation"}),
	}
	reg.MustRegister(m.recoveryTotal, m.repairTotal, m.itemsTotal, m.droppedTotal, m.cacheTotal, m.estimatesTotal, m.breakerState)
	return m
}

func (m *PipelineMetrics) RecoveryFinished(operation, stage string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.recoveryTotal.WithLabelValues(m.service, operation, stage, outcome).Inc()
}

func (m *PipelineMetrics) RepairCalled(operation string) {
	m.repairTotal.WithLabelValues(m.service, operation).Inc()
}

func (m *PipelineMetrics) ItemsEmitted(source domain.EstimateSource, count int) {
	if count > 0 {
		m.itemsTotal.WithLabelValues(m.service, string(source)).Add(float64(count))
	}
}

func (m *PipelineMetrics) ItemsDropped(reason string, count int) {
	if count > 0 {
		m.droppedTotal.WithLabelValues(m.service, reason).Add(float64(count))
	}
}

func (m *PipelineMetrics) CacheLookup(result string) {
	m.cacheTotal.WithLabelValues(m.service, result).Inc()
}

func (m *PipelineMetrics) ExpiryEstimated(source domain.EstimateSource) {
	m.estimatesTotal.WithLabelValues(m.service, string(source)).Inc()
}

// BreakerStateChanged matches resilience.StateListener.
func (m *PipelineMetrics) BreakerStateChanged(operation string, _, to gobreaker.State) {
	m.breakerState.WithLabelValues(m.service, operation).Set(float64(to))
}
