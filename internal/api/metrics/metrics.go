// Package metrics defines the custom Prometheus metrics of the identity API.
// HTTP request metrics come from echoprometheus; everything here is domain
// level and registered on the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// LogoutsTotal counts tokens revoked through logout.
var LogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of access tokens revoked by logout.",
	},
)

// ── Authorization metrics ─────────────────────────────────────────────────────

// AuthorizationDenialsTotal counts requests rejected by the policy.
// Label:
//   - route: the matched echo route path (e.g. "/users/:id")
var AuthorizationDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denials_total",
		Help:      "Total number of requests denied by the authorization policy.",
	},
	[]string{"route"},
)

// ── Assignment metrics ────────────────────────────────────────────────────────

// AssignmentsTotal counts successful grant and revoke operations.
// Labels:
//   - kind:   "role_user" or "permission_role"
//   - action: "grant" or "revoke"
var AssignmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assignments_total",
		Help:      "Total number of successful grant and revoke operations.",
	},
	[]string{"kind", "action"},
)
