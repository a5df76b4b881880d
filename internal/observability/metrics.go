package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Reasons recorded when a submitted answer is skipped.
const (
	SkipMissingQuestionID   = "missing_question_id"
	SkipQuestionNotInSurvey = "question_not_in_survey"
)

// Roles recorded when a department id in a mail alert pair has no row.
const (
	DepartmentRoleSource = "from"
	DepartmentRoleTarget = "to"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	Requests              *prometheus.CounterVec
	RequestDuration       *prometheus.HistogramVec
	Errors                *prometheus.CounterVec
	SkippedAnswers        *prometheus.CounterVec
	UnresolvedDepartments *prometheus.CounterVec
	AlertsComposed        prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "survey_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_http_errors_total",
			Help: "Errors returned to clients by error code.",
		}, []string{"route", "method", "code"}),
		SkippedAnswers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_answers_skipped_total",
			Help: "Submitted answers dropped because their question did not belong to the survey.",
		}, []string{"reason"}),
		UnresolvedDepartments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_alert_departments_unresolved_total",
			Help: "Mail alert pair ids with no matching department row.",
		}, []string{"role"}),
		AlertsComposed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "survey_alert_notifications_composed_total",
			Help: "Mail alert lines composed.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.Requests,
			m.RequestDuration,
			m.Errors,
			m.SkippedAnswers,
			m.UnresolvedDepartments,
			m.AlertsComposed,
		)
	}
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(route, method, code).Inc()
}

// RecordSkippedAnswer counts an answer dropped by the submission coordinator.
func (m *Metrics) RecordSkippedAnswer(reason string) {
	if m == nil {
		return
	}
	m.SkippedAnswers.WithLabelValues(reason).Inc()
}

// RecordUnresolvedDepartment counts a department id the resolver could not name.
func (m *Metrics) RecordUnresolvedDepartment(role string) {
	if m == nil {
		return
	}
	m.UnresolvedDepartments.WithLabelValues(role).Inc()
}

// RecordAlerts counts composed alert lines.
func (m *Metrics) RecordAlerts(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.AlertsComposed.Add(float64(n))
}
