// Package metrics defines and registers all custom Prometheus metrics for the
// YaMDb API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package
// init (promauto). HTTP request metrics come from the echoprometheus
// middleware and are not declared here.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "yamdb"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// SignupsTotal counts signup attempts.
// Label:
//   - result: "created", "reissued", "invalid", "conflict" or "error"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup requests, by outcome.",
	},
	[]string{"result"},
)

// TokensIssuedTotal counts access tokens minted after a successful code exchange.
var TokensIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of access tokens issued.",
	},
)

// TokenFailuresTotal counts rejected code exchanges.
// Label:
//   - reason: "invalid_username", "user_not_found", "invalid_code" or "error"
var TokenFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_failures_total",
		Help:      "Total number of rejected confirmation code exchanges.",
	},
	[]string{"reason"},
)

// PermissionDeniedTotal counts requests refused by a permission policy.
// Labels:
//   - policy: policy name (e.g. "admin_only")
//   - stage: "collection" or "object"
var PermissionDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "permission_denied_total",
		Help:      "Total number of requests refused by a permission policy.",
	},
	[]string{"policy", "stage"},
)

// ── Mail metrics ──────────────────────────────────────────────────────────────

// MailSentTotal counts delivery attempts.
// Labels:
//   - transport: "log", "smtp" or "outbox"
//   - result: "ok" or "error"
var MailSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_sent_total",
		Help:      "Total number of outbound mail delivery attempts.",
	},
	[]string{"transport", "result"},
)

// MailQueueDepth tracks the number of messages waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of messages pending in each mail dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// MailDeliveryDuration measures how long a single transport delivery takes.
var MailDeliveryDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mail_delivery_duration_seconds",
		Help:      "Duration of a single mail delivery through the transport.",
		Buckets:   prometheus.DefBuckets,
	},
)

// MailRetriesTotal counts messages handed back to the outbox.
// Label:
//   - reason: "failed" (transport error, will be retried), "shutdown"
//     (buffered when the dispatcher stopped) or "dropped" (out of attempts)
var MailRetriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_retries_total",
		Help:      "Total number of messages re-queued or abandoned by the mail dispatcher.",
	},
	[]string{"reason"},
)
