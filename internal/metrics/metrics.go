// Package metrics provides Prometheus metrics for the quiz bridge.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Quiz request outcomes.
const (
	OutcomeSent     = "sent"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

var (
	// QuizRequestsTotal counts load requests by outcome.
	QuizRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quizbridge_quiz_requests_total",
		Help: "Total number of quiz load requests, by outcome.",
	}, []string{"outcome"})

	// CacheLookupsTotal counts quiz cache lookups by result (hit/miss/error).
	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quizbridge_cache_lookups_total",
		Help: "Total number of quiz cache lookups, by result.",
	}, []string{"result"})

	// ActiveSessions tracks connected host sessions by transport.
	ActiveSessions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "quizbridge_active_sessions",
		Help: "Number of connected host sessions, by transport.",
	}, []string{"transport"})
)

// RecordQuizRequest increments the request counter for outcome.
func RecordQuizRequest(outcome string) {
	QuizRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordCacheLookup increments the cache lookup counter for result.
func RecordCacheLookup(result string) {
	CacheLookupsTotal.WithLabelValues(result).Inc()
}
