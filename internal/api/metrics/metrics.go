// Package metrics defines the custom Prometheus metrics of the marketplace
// API. Metric names, labels and help strings live here and nowhere else.
//
// All collectors are registered with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Account metrics ───────────────────────────────────────────────────────────

// AccountsRegisteredTotal counts successful registrations.
// Label:
//   - role: the role assigned at registration ("admin" or "user")
var AccountsRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_registered_total",
		Help:      "Total number of accounts registered, by assigned role.",
	},
	[]string{"role"},
)

// ── Access control metrics ────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected authentication attempts.
// Label:
//   - reason: "missing_token", "invalid_token", "expired_token", "unknown_account", "bad_password"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of failed authentication attempts, by reason.",
	},
	[]string{"reason"},
)

// AuthzDenialsTotal counts requests rejected by role or ownership checks.
// Label:
//   - action: "role", "update", "delete", ...
var AuthzDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denials_total",
		Help:      "Total number of authorization denials, by action.",
	},
	[]string{"action"},
)

// ValidationFailuresTotal counts request bodies rejected by the validator.
// Label:
//   - resource: "account" or "item"
var ValidationFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_failures_total",
		Help:      "Total number of requests rejected by input validation, by resource.",
	},
	[]string{"resource"},
)

// ── Item metrics ──────────────────────────────────────────────────────────────

// ItemsCreatedTotal counts newly listed items.
var ItemsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_created_total",
		Help:      "Total number of items created, by category.",
	},
	[]string{"category"},
)

// IdempotencyTotal counts Idempotency-Key decisions on item creation.
// Label:
//   - result: "hit" (replayed) or "miss" (new item created)
var IdempotencyTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotency_total",
		Help:      "Total number of idempotency checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsProcessedTotal counts audit events persisted by the dispatcher.
var AuditEventsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_processed_total",
		Help:      "Total number of audit events persisted, by action.",
	},
	[]string{"action"},
)

// AuditEventsFailedTotal counts audit events that were dropped or failed.
// Label:
//   - reason: "queue_full", "persist_failed"
var AuditEventsFailedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_failed_total",
		Help:      "Total number of audit events that could not be persisted.",
	},
	[]string{"reason"},
)

// AuditQueueDepth tracks pending events in each dispatcher worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditProcessingDuration measures how long one audit event takes to persist.
var AuditProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_processing_duration_seconds",
		Help:      "Duration of audit event processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"action"},
)
