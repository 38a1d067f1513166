package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	redirectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlinks_redirects_total",
			Help: "Total redirect lookups by outcome",
		},
		[]string{"outcome"},
	)

	codeCollisionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlinks_code_collisions_total",
			Help: "Short code allocation attempts that hit an existing code",
		},
	)

	authFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlinks_auth_failures_total",
			Help: "Rejected authentication attempts by reason",
		},
		[]string{"reason"},
	)

	loginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlinks_logins_total",
			Help: "Successful logins by role",
		},
		[]string{"role"},
	)

	linksCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlinks_links_created_total",
			Help: "Short links created",
		},
	)

	expiredSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlinks_expired_links_swept_total",
			Help: "Expired links deleted by cleanup",
		},
	)
)

var (
	registered bool
	initOnce   sync.Once
)

// Redirect outcomes.
const (
	OutcomeHit     = "hit"
	OutcomeMiss    = "miss"
	OutcomeExpired = "expired"
)

// Init registers all collectors. Must be called once at startup; the
// Record helpers are no-ops before that so unit tests don't need a registry.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			redirectsTotal,
			codeCollisionsTotal,
			authFailuresTotal,
			loginsTotal,
			linksCreatedTotal,
			expiredSweptTotal,
		)
		registered = true
	})
}

// RecordRedirect records one redirect lookup result.
func RecordRedirect(outcome string) {
	if registered {
		redirectsTotal.WithLabelValues(outcome).Inc()
	}
}

// RecordCodeCollision records one allocator collision.
func RecordCodeCollision() {
	if registered {
		codeCollisionsTotal.Inc()
	}
}

// RecordAuthFailure records one rejected authentication attempt.
func RecordAuthFailure(reason string) {
	if registered {
		authFailuresTotal.WithLabelValues(reason).Inc()
	}
}

// RecordLogin records one successful login.
func RecordLogin(role string) {
	if registered {
		loginsTotal.WithLabelValues(role).Inc()
	}
}

// RecordLinkCreated records one created link.
func RecordLinkCreated() {
	if registered {
		linksCreatedTotal.Inc()
	}
}

// RecordExpiredSwept records expired links removed by a cleanup pass.
func RecordExpiredSwept(n int64) {
	if registered {
		expiredSweptTotal.Add(float64(n))
	}
}
