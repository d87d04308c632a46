package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "uniportal"

// Metrics holds the collectors exported by the portal.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registrations  *prometheus.CounterVec
	compensations  *prometheus.CounterVec
	idAttempts     prometheus.Histogram
	eligibility    *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	rateLimitDrops *prometheus.CounterVec
}

// New registers the portal collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by role and the final state they reached.",
		}, []string{"role", "state"}),
		compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compensations_total",
			Help:      "Compensating undo steps by step name and result.",
		}, []string{"step", "result"}),
		idAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "student_id_attempts",
			Help:      "Candidates generated before a free student id was found.",
			Buckets:   []float64{1, 2, 3, 5, 10, 25, 50, 100},
		}),
		eligibility: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eligibility_checks_total",
			Help:      "Eligibility checks by role and outcome.",
		}, []string{"role", "eligible"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		rateLimitDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"route"}),
	}
	reg.MustRegister(m.registrations, m.compensations, m.idAttempts, m.eligibility, m.httpDuration, m.rateLimitDrops)
	return m
}

// ObserveRegistration counts a finished registration attempt
func (m *Metrics) ObserveRegistration(role, state string) {
	if m == nil || m.registrations == nil {
		return
	}
	m.registrations.WithLabelValues(normalizeLabel(role), normalizeLabel(state)).Inc()
}

// ObserveCompensation counts one undo step
func (m *Metrics) ObserveCompensation(step string, err error) {
	if m == nil || m.compensations == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.compensations.WithLabelValues(normalizeLabel(step), result).Inc()
}

// ObserveStudentIDAttempts records how many candidates the generator tried
func (m *Metrics) ObserveStudentIDAttempts(attempts int) {
	if m == nil || m.idAttempts == nil {
		return
	}
	m.idAttempts.Observe(float64(attempts))
}

// ObserveEligibility counts an eligibility decision
func (m *Metrics) ObserveEligibility(role string, eligible bool) {
	if m == nil || m.eligibility == nil {
		return
	}
	m.eligibility.WithLabelValues(normalizeLabel(role), strconv.FormatBool(eligible)).Inc()
}

// ObserveHTTP records the duration of a served request
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if m == nil || m.httpDuration == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, normalizeLabel(route), strconv.Itoa(status)).Observe(duration.Seconds())
}

// IncRateLimited counts a request rejected by the limiter
func (m *Metrics) IncRateLimited(route string) {
	if m == nil || m.rateLimitDrops == nil {
		return
	}
	m.rateLimitDrops.WithLabelValues(normalizeLabel(route)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
