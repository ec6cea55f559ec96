// Package metrics defines and registers all custom Prometheus metrics for the
// clicker backend. It is the single source of truth for metric names, labels,
// and help strings. Metrics are registered with the default registry at init
// time via promauto and exposed through the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clicker"

// ── Session metrics ──────────────────────────────────────────────────────────

// SessionsCreatedTotal counts new guest accounts created via POST /user.
var SessionsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Total number of guest accounts created.",
	},
)

// SessionsResumedTotal counts successful token authentications.
var SessionsResumedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_resumed_total",
		Help:      "Total number of sessions resumed with a login token.",
	},
)

// ── Transfer metrics ─────────────────────────────────────────────────────────

// TransfersIssuedTotal counts transfer codes handed out.
var TransfersIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transfers_issued_total",
		Help:      "Total number of transfer codes issued.",
	},
)

// TransfersRedeemedTotal counts redemption attempts.
// Label:
//   - result: "ok", "invalid", "self", or "error"
var TransfersRedeemedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transfers_redeemed_total",
		Help:      "Total number of transfer redemption attempts, by result.",
	},
	[]string{"result"},
)

// ── Click metrics ────────────────────────────────────────────────────────────

// ClicksRecordedTotal sums every click accepted into a live session counter.
var ClicksRecordedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clicks_recorded_total",
		Help:      "Total number of clicks recorded across all sessions.",
	},
)

// CheckpointsTotal counts durable click checkpoints, by outcome.
// Label:
//   - result: "ok", "dropped" (queue full), or "error"
var CheckpointsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkpoints_total",
		Help:      "Total number of async click checkpoints, by result.",
	},
	[]string{"result"},
)

// CheckpointQueueDepth tracks pending checkpoints per worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var CheckpointQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "checkpoint_queue_depth",
		Help:      "Current number of checkpoints pending in each worker channel.",
	},
	[]string{"worker_id"},
)
