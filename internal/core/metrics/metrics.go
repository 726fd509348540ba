// Package metrics defines the bot's Prometheus metrics. They register with
// the default registry on import and are served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wabot"

// QuotesTotal counts rendered quotes.
// Label:
//   - mode: "list" (/precio, /preciog) or "raw" (/divisas)
var QuotesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_total",
		Help:      "Total number of quotes rendered with at least one product.",
	},
	[]string{"mode"},
)

// CommandsTotal counts dispatched commands by kind ("unknown" included).
var CommandsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Total number of slash commands handled, by command.",
	},
	[]string{"command"},
)

// RateRefreshTotal counts BCV refresh attempts.
// Label:
//   - result: "success" or "failure"
var RateRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_refresh_total",
		Help:      "Total number of exchange rate refresh attempts, by result.",
	},
	[]string{"result"},
)

// ApprovalsTotal counts tier workflow transitions.
// Label:
//   - action: "requested", "superseded", "approved", "rejected", "denied"
var ApprovalsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "approvals_total",
		Help:      "Total number of tier approval workflow actions.",
	},
	[]string{"action"},
)

// MessagesIgnoredTotal counts inbound messages dropped before dispatch.
// Label:
//   - reason: "status", "echo", "stale", "from_me", "group", "empty"
var MessagesIgnoredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_ignored_total",
		Help:      "Total number of inbound messages ignored, by reason.",
	},
	[]string{"reason"},
)

// MessageHandlingDuration measures one inbound message from receipt to last reply.
var MessageHandlingDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "message_handling_duration_seconds",
		Help:      "Duration of inbound message handling.",
		Buckets:   prometheus.DefBuckets,
	},
)
