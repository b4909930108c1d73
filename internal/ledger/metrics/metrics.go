// Package metrics exposes Prometheus counters for ledger throughput.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	PromisesTracked   prometheus.Counter
	PromiseUpdates    *prometheus.CounterVec
	ProjectsRecorded  prometheus.Counter
	ProjectUpdates    *prometheus.CounterVec
	QuestionsAsked    prometheus.Counter
	QuestionsAnswered prometheus.Counter
	QuestionUpvotes   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		PromisesTracked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mandate_promises_tracked_total",
			Help: "Promises added to office holder ledgers.",
		}),
		PromiseUpdates: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mandate_promise_updates_total",
			Help: "Promise status updates by resulting status.",
		}, []string{"status"}),
		ProjectsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mandate_projects_recorded_total",
			Help: "Development projects recorded.",
		}),
		ProjectUpdates: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mandate_project_updates_total",
			Help: "Project progress reports by update type.",
		}, []string{"type"}),
		QuestionsAsked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mandate_questions_asked_total",
			Help: "Constituent questions submitted.",
		}),
		QuestionsAnswered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mandate_questions_answered_total",
			Help: "Questions answered by office holders.",
		}),
		QuestionUpvotes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mandate_question_upvotes_total",
			Help: "Upvotes cast on constituent questions.",
		}),
	}
}

func (m *Metrics) RecordPromiseTracked() {
	if m != nil {
		m.PromisesTracked.Inc()
	}
}

func (m *Metrics) RecordPromiseUpdate(status string) {
	if m != nil {
		m.PromiseUpdates.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) RecordProject() {
	if m != nil {
		m.ProjectsRecorded.Inc()
	}
}

func (m *Metrics) RecordProjectUpdate(updateType string) {
	if m != nil {
		m.ProjectUpdates.WithLabelValues(updateType).Inc()
	}
}

func (m *Metrics) RecordQuestionAsked() {
	if m != nil {
		m.QuestionsAsked.Inc()
	}
}

func (m *Metrics) RecordQuestionAnswered() {
	if m != nil {
		m.QuestionsAnswered.Inc()
	}
}

func (m *Metrics) RecordUpvote() {
	if m != nil {
		m.QuestionUpvotes.Inc()
	}
}
