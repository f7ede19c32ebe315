package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics - счетчики слоя сессии.
type Metrics struct {
	Renewals        prometheus.Counter
	RenewalFailures prometheus.Counter
	Replays         prometheus.Counter
	Terminations    prometheus.Counter
}

// NewMetrics - создает счетчики и регистрирует их в reg. Если reg равен nil, счетчики не регистрируются.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Renewals: factory.NewCounter(prometheus.CounterOpts{
			Name: "eguard_session_renewals_total",
			Help: "Total number of successful access token renewals",
		}),
		RenewalFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "eguard_session_renewal_failures_total",
			Help: "Total number of failed access token renewals",
		}),
		Replays: factory.NewCounter(prometheus.CounterOpts{
			Name: "eguard_session_replays_total",
			Help: "Total number of requests replayed with a renewed access token",
		}),
		Terminations: factory.NewCounter(prometheus.CounterOpts{
			Name: "eguard_session_terminations_total",
			Help: "Total number of forced session terminations",
		}),
	}
}
