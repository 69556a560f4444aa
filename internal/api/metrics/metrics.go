// Package metrics defines and registers all custom Prometheus metrics for
// the vending machine API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vending"

// ── Purchase metrics ──────────────────────────────────────────────────────────

// PurchasesTotal counts purchase commands by outcome.
// Label:
//   - result: "success" or a short failure reason (e.g. "insufficient_funds",
//     "out_of_stock", "not_found")
var PurchasesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchases_total",
		Help:      "Total number of purchase commands, by result.",
	},
	[]string{"result"},
)

// PurchaseDuration measures how long a purchase takes end-to-end.
var PurchaseDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "purchase_duration_seconds",
		Help:      "Duration of purchase command processing.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Coin metrics ──────────────────────────────────────────────────────────────

// DepositsTotal counts accepted coins by denomination.
var DepositsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deposits_total",
		Help:      "Total number of coins deposited, by denomination.",
	},
	[]string{"denomination"},
)

// ChangeCoinsTotal counts coins returned as change, by denomination.
var ChangeCoinsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "change_coins_total",
		Help:      "Total number of coins paid out as change, by denomination.",
	},
	[]string{"denomination"},
)

// ── Idempotency metrics ───────────────────────────────────────────────────────

// IdempotencyTotal counts idempotency decisions.
// Label:
//   - result: "hit" (replayed), "miss" (executed), "conflict" (duplicate in
//     flight), "invalid" (malformed key)
var IdempotencyTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotency_total",
		Help:      "Total number of idempotency-key checks, by result.",
	},
	[]string{"result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// ProductEventsTotal counts audit-trail records written, by type.
var ProductEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_events_total",
		Help:      "Total number of inventory audit records written, by event type.",
	},
	[]string{"event_type"},
)
