package metrics

import "github.com/prometheus/client_golang/prometheus"

// WorkflowMetrics counts project-start outcomes and best-effort side
// effect failures.
type WorkflowMetrics struct {
	projectsStarted     prometheus.Counter
	commissionFailures  prometheus.Counter
	notificationsSent   *prometheus.CounterVec
	notificationsFailed *prometheus.CounterVec
}

// NewWorkflowMetrics registers the workflow instruments on the default
// registerer.
func NewWorkflowMetrics() (*WorkflowMetrics, error) {
	projectsStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "renolink_projects_started_total",
		Help: "Projects transitioned to in-progress.",
	})
	commissionFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "renolink_commission_bookkeeping_failures_total",
		Help: "Best-effort commission creation failures during project start.",
	})
	notificationsSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "renolink_notifications_sent_total",
		Help: "Notification emails sent, by kind.",
	}, []string{"kind"})
	notificationsFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "renolink_notifications_failed_total",
		Help: "Notification emails that failed to send, by kind.",
	}, []string{"kind"})

	for _, collector := range []prometheus.Collector{
		projectsStarted, commissionFailures, notificationsSent, notificationsFailed,
	} {
		if err := prometheus.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return nil, err
		}
	}

	return &WorkflowMetrics{
		projectsStarted:     projectsStarted,
		commissionFailures:  commissionFailures,
		notificationsSent:   notificationsSent,
		notificationsFailed: notificationsFailed,
	}, nil
}

// RecordProjectStarted increments the started-project count.
func (m *WorkflowMetrics) RecordProjectStarted() {
	if m == nil {
		return
	}
	m.projectsStarted.Inc()
}

// RecordCommissionFailure increments the commission bookkeeping failure count.
func (m *WorkflowMetrics) RecordCommissionFailure() {
	if m == nil {
		return
	}
	m.commissionFailures.Inc()
}

// RecordNotification records a notification attempt outcome.
func (m *WorkflowMetrics) RecordNotification(kind string, sent bool) {
	if m == nil {
		return
	}
	if sent {
		m.notificationsSent.WithLabelValues(kind).Inc()
		return
	}
	m.notificationsFailed.WithLabelValues(kind).Inc()
}
