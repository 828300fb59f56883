package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Subscription metrics
	SubscriptionsCreated   prometheus.Counter
	SubscriptionsCancelled prometheus.Counter
	SubscriptionAmount     prometheus.Histogram
	WorkflowDuration       *prometheus.HistogramVec
	WorkflowErrors         *prometheus.CounterVec
	IntegrityViolations    prometheus.Counter

	// Customer metrics
	CustomersCreated   prometheus.Counter
	BalanceOperations  *prometheus.CounterVec
	ReconciliationRuns *prometheus.CounterVec

	// Notification metrics
	NotificationsEnqueued prometheus.Counter
	NotificationsSent     *prometheus.CounterVec
	NotificationsFailed   *prometheus.CounterVec
	NotificationsReleased prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBRetries *prometheus.CounterVec

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		SubscriptionsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "gofunds_subscriptions_created_total",
			Help: "Total number of fund subscriptions created",
		}),
		SubscriptionsCancelled: f.NewCounter(prometheus.CounterOpts{
			Name: "gofunds_subscriptions_cancelled_total",
			Help: "Total number of fund subscriptions cancelled",
		}),
		SubscriptionAmount: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gofunds_subscription_amount",
			Help:    "Subscription amounts",
			Buckets: []float64{50000, 75000, 100000, 250000, 500000, 1000000, 5000000, 50000000},
		}),
		WorkflowDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gofunds_workflow_duration_seconds",
				Help:    "Duration of subscription workflows",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"workflow"},
		),
		WorkflowErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofunds_workflow_errors_total",
				Help: "Total workflow rejections by kind",
			},
			[]string{"workflow", "kind"},
		),
		IntegrityViolations: f.NewCounter(prometheus.CounterOpts{
			Name: "gofunds_integrity_violations_total",
			Help: "Subscriptions referencing a missing customer or fund",
		}),

		CustomersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "gofunds_customers_created_total",
			Help: "Total number of customers created",
		}),
		BalanceOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofunds_balance_operations_total",
				Help: "Total balance movements by ledger type",
			},
			[]string{"type"},
		),
		ReconciliationRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofunds_reconciliation_runs_total",
				Help: "Reconciliation runs by outcome",
			},
			[]string{"result"},
		),

		NotificationsEnqueued: f.NewCounter(prometheus.CounterOpts{
			Name: "gofunds_notifications_enqueued_total",
			Help: "Notification jobs written to the outbox",
		}),
		NotificationsSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofunds_notifications_sent_total",
				Help: "Notifications delivered by kind",
			},
			[]string{"kind"},
		),
		NotificationsFailed: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofunds_notifications_failed_total",
				Help: "Notifications that failed delivery by kind",
			},
			[]string{"kind"},
		),
		NotificationsReleased: f.NewCounter(prometheus.CounterOpts{
			Name: "gofunds_notifications_released_total",
			Help: "Stale notification jobs returned to pending",
		}),

		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofunds_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gofunds_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBRetries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofunds_db_retries_total",
				Help: "Units of work retried after a transient database error",
			},
			[]string{"reason"},
		),

		CacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofunds_cache_lookups_total",
				Help: "Fund cache lookups by result",
			},
			[]string{"result"},
		),

		RateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofunds_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
