// Package metrics defines and registers the custom Prometheus metrics of the
// dashboard gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry on package init via
// promauto; /metrics exposes them together with the echo request metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dashboard"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts password login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of password login attempts, by result.",
	},
	[]string{"result"},
)

// RoleSwitchesTotal counts role switch attempts.
// Label:
//   - result: "switched", "noop", "not_held", "rejected" or "error"
var RoleSwitchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_switches_total",
		Help:      "Total number of role switch attempts, by result.",
	},
	[]string{"result"},
)

// TokenRefreshTotal counts 401-triggered refresh attempts.
// Label:
//   - result: "success" or "failure"
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of access token refreshes triggered by a 401.",
	},
	[]string{"result"},
)

// GuardDecisionsTotal counts Route Guard outcomes.
// Label:
//   - state: "checking", "authenticated", "unauthenticated" or "forbidden"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by resulting state.",
	},
	[]string{"state"},
)

// ── Session events ────────────────────────────────────────────────────────────

// SessionEventsTotal counts delivered session change events.
// Label:
//   - kind: "login", "logout", "user_updated", "token_rotated", "role_switched"
var SessionEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_total",
		Help:      "Total number of session change events delivered to subscribers.",
	},
	[]string{"kind"},
)

// SessionEventsQueueDepth tracks pending events per dispatcher worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var SessionEventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_events_queue_depth",
		Help:      "Current number of session events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// SessionEventsDroppedTotal counts events discarded because a worker's
// channel was full.
var SessionEventsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_dropped_total",
		Help:      "Total number of session events dropped because the dispatcher queue was full.",
	},
	[]string{"kind"},
)

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestDuration measures calls to the PR Business REST API.
// Labels:
//   - operation: "password_login", "refresh", "switch_role", "current_user"
//   - status: HTTP status code, or "error" when no response arrived
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of requests to the backend REST API.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation", "status"},
)
