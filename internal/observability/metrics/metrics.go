package metrics

import "github.com/prometheus/client_golang/prometheus"

// FrontdeskMetrics exposes counters/histograms for front-desk operations.
type FrontdeskMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationLatency  *prometheus.HistogramVec
	conflictsTotal    *prometheus.CounterVec
	cascadeRemovals   prometheus.Counter
	exportedRowsTotal prometheus.Counter
}

// NewFrontdeskMetrics registers the front desk collectors on reg, or on the
// default registerer when reg is nil.
func NewFrontdeskMetrics(reg prometheus.Registerer) *FrontdeskMetrics {
	m := &FrontdeskMetrics{
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "service",
			Name:      "operations_total",
			Help:      "Total front-desk operations by outcome",
		}, []string{"operation", "outcome"}),
		operationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "frontdesk",
			Subsystem: "service",
			Name:      "operation_latency_seconds",
			Help:      "Latency of front-desk operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		conflictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "booking",
			Name:      "rejections_total",
			Help:      "Bookings and registrations rejected by a consistency rule",
		}, []string{"reason"}),
		cascadeRemovals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "records",
			Name:      "cascade_removed_appointments_total",
			Help:      "Appointments removed together with their patient",
		}),
		exportedRowsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "export",
			Name:      "rows_total",
			Help:      "Appointment rows written to CSV exports",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.operationsTotal, m.operationLatency, m.conflictsTotal, m.cascadeRemovals, m.exportedRowsTotal)
	return m
}

// ObserveOperation counts one service call and records its latency.
func (m *FrontdeskMetrics) ObserveOperation(operation, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(operation, outcome).Inc()
	m.operationLatency.WithLabelValues(operation).Observe(seconds)
}

// ObserveRejection counts a rule rejection such as "duplicate" or "slot_conflict".
func (m *FrontdeskMetrics) ObserveRejection(reason string) {
	if m == nil {
		return
	}
	m.conflictsTotal.WithLabelValues(reason).Inc()
}

// ObserveCascade counts appointments removed with their patient.
func (m *FrontdeskMetrics) ObserveCascade(removed int) {
	if m == nil || removed <= 0 {
		return
	}
	m.cascadeRemovals.Add(float64(removed))
}

// ObserveExport counts exported rows.
func (m *FrontdeskMetrics) ObserveExport(rows int) {
	if m == nil || rows <= 0 {
		return
	}
	m.exportedRowsTotal.Add(float64(rows))
}
