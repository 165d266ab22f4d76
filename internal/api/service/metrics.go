package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Traffic: завершенные пайплайны по исходу (completed/failed)
	AuditsTotal *prometheus.CounterVec

	// Latency: полное время пайплайна, включая completion-вызов
	AuditDuration *prometheus.HistogramVec

	// Качество входа: сработал текстовый ремонт JSON
	RepairsTotal prometheus.Counter

	// Деградация: отчет собран целиком из дефолтов
	DegradedTotal prometheus.Counter

	// Отказы по квоте тарифа
	QuotaDeniedTotal prometheus.Counter

	// Состояние Circuit Breaker вокруг completion (0 - closed, 1 - open)
	BreakerState prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		AuditsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "brandpulse_audits_total",
			Help: "Audit pipeline invocations by outcome",
		}, []string{"outcome"}),

		AuditDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "brandpulse_audit_duration_seconds",
			Help:    "Full pipeline duration including the completion call",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
		}, []string{"outcome"}),

		RepairsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "brandpulse_completion_repairs_total",
			Help: "Completions that parsed only after textual repair",
		}),

		DegradedTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "brandpulse_degraded_reports_total",
			Help: "Reports synthesized entirely from defaults",
		}),

		QuotaDeniedTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "brandpulse_quota_denied_total",
			Help: "Audit requests rejected by the usage ledger",
		}),

		BreakerState: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "brandpulse_completion_breaker_open",
			Help: "Completion circuit breaker state (1 when open)",
		}),
	}
}
