// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics registers the Prometheus instruments the server exposes
// on GET /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection reason labels for SubmissionsTotal.
const (
	OutcomeAccepted      = "accepted"
	OutcomeDuplicate     = "duplicate_submission"
	OutcomeNoPanel       = "no_matching_panel"
	OutcomeQuotaExceeded = "quota_exceeded"
	OutcomeBadAnswers    = "invalid_answers"
	OutcomeError         = "error"
)

var (
	// SubmissionsTotal counts submission attempts by outcome.
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "panelboard",
		Name:      "submissions_total",
		Help:      "Survey submission attempts by outcome.",
	}, []string{"outcome"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "panelboard",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "pattern"})
)

// RecordSubmission bumps the submission counter for one outcome.
func RecordSubmission(outcome string) {
	SubmissionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRequest records one served request.
func ObserveRequest(method, pattern string, d time.Duration) {
	httpDuration.WithLabelValues(method, pattern).Observe(d.Seconds())
}
