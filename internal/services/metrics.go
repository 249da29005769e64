package services

import (
	"github.com/prometheus/client_golang/prometheus"

	"alfredoptarigan/resumeai/internal/wizard"
)

const metricsNamespace = "resumeai"

// Metrics counts demo traffic.
type Metrics struct {
	SessionsCreated   prometheus.Counter
	SessionsEvicted   prometheus.Counter
	SessionsActive    prometheus.Gauge
	DocumentsAccepted *prometheus.CounterVec
	DocumentsRejected prometheus.Counter
	RunsStarted       prometheus.Counter
	RunsCompleted     prometheus.Counter
	Resets            prometheus.Counter
	StageChanges      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "demo", Name: "sessions_created_total",
			Help: "Demo sessions created.",
		}),
		SessionsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "demo", Name: "sessions_evicted_total",
			Help: "Demo sessions dropped after being idle.",
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace, Subsystem: "demo", Name: "sessions_active",
			Help: "Demo sessions currently held in memory.",
		}),
		DocumentsAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "demo", Name: "documents_accepted_total",
			Help: "Resumes accepted by the upload stage.",
		}, []string{"kind"}),
		DocumentsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "demo", Name: "documents_rejected_total",
			Help: "Uploads ignored by the file filter.",
		}),
		RunsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "demo", Name: "runs_started_total",
			Help: "Simulated processing runs started.",
		}),
		RunsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "demo", Name: "runs_completed_total",
			Help: "Simulated processing runs that reached the comparison stage.",
		}),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "demo", Name: "resets_total",
			Help: "Wizard resets.",
		}),
		StageChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "demo", Name: "stage_changes_total",
			Help: "Stage transitions by target stage.",
		}, []string{"stage"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.SessionsCreated, m.SessionsEvicted, m.SessionsActive,
			m.DocumentsAccepted, m.DocumentsRejected,
			m.RunsStarted, m.RunsCompleted, m.Resets, m.StageChanges,
		)
	}
	return m
}

// OnEvent makes Metrics a wizard observer.
func (m *Metrics) OnEvent(e wizard.Event) {
	switch e.Kind {
	case wizard.EventDocumentAccepted:
		if e.Document != nil {
			m.DocumentsAccepted.WithLabelValues(string(e.Document.Kind)).Inc()
		}
	case wizard.EventProcessingStarted:
		m.RunsStarted.Inc()
	case wizard.EventCompleted:
		m.RunsCompleted.Inc()
	case wizard.EventReset:
		m.Resets.Inc()
	case wizard.EventStageChanged:
		m.StageChanges.WithLabelValues(e.To.String()).Inc()
	}
}
