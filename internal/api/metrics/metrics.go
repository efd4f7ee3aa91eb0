// Package metrics defines and registers all custom Prometheus metrics for the
// collective communication core. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed on /metrics by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "collective"

// ── Chat metrics ──────────────────────────────────────────────────────────────

// ActiveSessions tracks live chat connections.
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "chat_active_sessions",
		Help:      "Number of currently connected chat sessions.",
	},
)

// ActiveRooms tracks rooms with at least one member.
var ActiveRooms = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "chat_active_rooms",
		Help:      "Number of rooms that currently have members.",
	},
)

// MessagesPersistedTotal counts chat messages durably stored.
var MessagesPersistedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_messages_persisted_total",
		Help:      "Total number of chat messages persisted.",
	},
)

// MessagePersistDuration measures message store latency.
// Label:
//   - result: "ok" or "error"
var MessagePersistDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "chat_message_persist_duration_seconds",
		Help:      "Duration of a single message append.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// FanoutDeliveriesTotal counts per-recipient deliveries.
// Label:
//   - result: "delivered", "dropped" (recipient buffer full) or "gone" (session closed)
var FanoutDeliveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_fanout_deliveries_total",
		Help:      "Total number of fan-out deliveries, labelled by result.",
	},
	[]string{"result"},
)

// FanoutQueueDepth tracks pending fan-out jobs per dispatcher worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var FanoutQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "chat_fanout_queue_depth",
		Help:      "Current number of fan-out jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ChatErrorsTotal counts protocol failures reported back to a sender.
// Label:
//   - kind: error kind (e.g. "validation_failed", "internal")
var ChatErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_errors_total",
		Help:      "Total number of chat protocol errors reported to senders.",
	},
	[]string{"kind"},
)

// ── Invite metrics ────────────────────────────────────────────────────────────

var InvitesIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invites_issued_total",
		Help:      "Total number of invite tokens issued.",
	},
)

// InviteRedemptionsTotal counts redemption attempts.
// Label:
//   - result: "ok" or the failure kind ("not_found", "expired", "already_consumed", …)
var InviteRedemptionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invite_redemptions_total",
		Help:      "Total number of invite redemption attempts, labelled by result.",
	},
	[]string{"result"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsSentTotal counts persisted notifications.
// Label:
//   - recipient: "direct", "privileged" or "broadcast"
var NotificationsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of notifications sent, by effective recipient kind.",
	},
	[]string{"recipient"},
)
