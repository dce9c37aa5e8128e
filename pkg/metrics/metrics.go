package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Lifecycle and notification metrics. Kept in a standalone package so repositories,
// the lifecycle and HTTP middleware can record without importing each other.
var (
	Transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "site_coordination_transitions_total",
		Help: "Status transitions applied to registrations and bookings",
	}, []string{"entity", "status"})

	EmailsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "site_coordination_emails_total",
		Help: "Notification send attempts by type and result",
	}, []string{"type", "result"})

	Presence = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "site_coordination_presence_events_total",
		Help: "Check-in and check-out events recorded",
	}, []string{"table", "presence"})

	HTTPRequests = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "site_coordination_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Register registers the collectors on the given registry (or default if nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{Transitions, EmailsSent, Presence, HTTPRequests} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
