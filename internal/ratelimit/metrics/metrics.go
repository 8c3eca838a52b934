package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RateLimitDecisions *prometheus.CounterVec
	RateLimitErrors    prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		RateLimitDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grantgate_ratelimit_decisions_total",
			Help: "Rate limit decisions by endpoint class and outcome",
		}, []string{"class", "outcome"}),
		RateLimitErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grantgate_ratelimit_errors_total",
			Help: "Rate limit checks that failed and let the request through",
		}),
	}
}

func (m *Metrics) ObserveDecision(class string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "allowed"
	if !allowed {
		outcome = "rejected"
	}
	m.RateLimitDecisions.WithLabelValues(class, outcome).Inc()
}

func (m *Metrics) IncrementErrors() {
	if m == nil {
		return
	}
	m.RateLimitErrors.Inc()
}
