package metrics

import "github.com/prometheus/client_golang/prometheus"

// AlertMetrics counts rows touched by alert reconciliation.
type AlertMetrics struct {
	upserted *prometheus.CounterVec
	closed   *prometheus.CounterVec
	woken    prometheus.Counter
	failures *prometheus.CounterVec
}

// NewAlertMetrics registers the reconciliation counters. A nil registerer yields a no-op recorder.
func NewAlertMetrics(reg prometheus.Registerer) *AlertMetrics {
	if reg == nil {
		return &AlertMetrics{}
	}
	m := &AlertMetrics{
		upserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "upserted_total",
			Help:      "Alerts inserted or refreshed by reconciliation.",
		}, []string{"type"}),
		closed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "closed_total",
			Help:      "Active alerts closed because their condition cleared.",
		}, []string{"type"}),
		woken: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "snoozes_expired_total",
			Help:      "Snoozed alerts returned to open after snooze_until passed.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "rule_failures_total",
			Help:      "Reconciliation rules that failed and rolled back.",
		}, []string{"type"}),
	}
	reg.MustRegister(m.upserted, m.closed, m.woken, m.failures)
	return m
}

// ObserveRule records the outcome of one rule pass.
func (m *AlertMetrics) ObserveRule(alertType string, upserted, closed int64) {
	if m == nil || m.upserted == nil {
		return
	}
	label := normalizeLabel(alertType)
	m.upserted.WithLabelValues(label).Add(float64(upserted))
	m.closed.WithLabelValues(label).Add(float64(closed))
}

// IncRuleFailure counts a failed rule pass.
func (m *AlertMetrics) IncRuleFailure(alertType string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(alertType)).Inc()
}

// AddWoken records snoozed alerts that reopened.
func (m *AlertMetrics) AddWoken(count int64) {
	if m == nil || m.woken == nil {
		return
	}
	m.woken.Add(float64(count))
}
