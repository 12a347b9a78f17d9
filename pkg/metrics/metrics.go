// Package metrics holds the prometheus collectors for the auth flows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CodesIssued counts one-time codes stored in a registry, by purpose.
	CodesIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hris_auth_codes_issued_total",
		Help: "One-time codes issued, by purpose",
	}, []string{"purpose"})

	// CodeVerifications counts code checks by purpose and outcome
	// (verified, mismatch, expired, not_found).
	CodeVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hris_auth_code_verifications_total",
		Help: "One-time code verification attempts, by purpose and result",
	}, []string{"purpose", "result"})

	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hris_auth_logins_total",
		Help: "Login steps, by result",
	}, []string{"result"})

	PasswordChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hris_auth_password_changes_total",
		Help: "Completed password writes, by flow",
	}, []string{"flow"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hris_auth_http_requests_total",
		Help: "HTTP requests, by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hris_auth_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds, by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)
