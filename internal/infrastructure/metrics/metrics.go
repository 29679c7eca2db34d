package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records account lifecycle metrics.
type Collector struct {
	codesIssued       *prometheus.CounterVec
	verifications     *prometheus.CounterVec
	deliveryFailures  *prometheus.CounterVec
	deletionScheduled prometheus.Counter
	deletionCancelled prometheus.Counter
	sweepAccounts     *prometheus.CounterVec
	sweepDuration     prometheus.Histogram
}

// NewCollector creates a Collector and registers it with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		codesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appstore_verification_codes_issued_total",
			Help: "Verification codes issued, by purpose.",
		}, []string{"purpose"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appstore_verification_attempts_total",
			Help: "Verification code submissions, by purpose and outcome.",
		}, []string{"purpose", "outcome"}),
		deliveryFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appstore_mail_delivery_failures_total",
			Help: "Notification emails that could not be handed to the transport, by kind.",
		}, []string{"kind"}),
		deletionScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appstore_account_deletions_scheduled_total",
			Help: "Account deletions scheduled.",
		}),
		deletionCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appstore_account_deletions_cancelled_total",
			Help: "Scheduled account deletions cancelled.",
		}),
		sweepAccounts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appstore_deletion_sweep_accounts_total",
			Help: "Accounts processed by the deletion sweep, by result.",
		}, []string{"result"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "appstore_deletion_sweep_duration_seconds",
			Help:    "Duration of deletion sweeps.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.codesIssued,
		c.verifications,
		c.deliveryFailures,
		c.deletionScheduled,
		c.deletionCancelled,
		c.sweepAccounts,
		c.sweepDuration,
	)

	return c
}

func (c *Collector) RecordCodeIssued(purpose string) {
	c.codesIssued.WithLabelValues(purpose).Inc()
}

func (c *Collector) RecordVerification(purpose, outcome string) {
	c.verifications.WithLabelValues(purpose, outcome).Inc()
}

func (c *Collector) RecordDeliveryFailure(kind string) {
	c.deliveryFailures.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordDeletionScheduled() {
	c.deletionScheduled.Inc()
}

func (c *Collector) RecordDeletionCancelled() {
	c.deletionCancelled.Inc()
}

// RecordSweep records the per-account results and duration of one sweep
func (c *Collector) RecordSweep(deleted, skipped, failed int, duration time.Duration) {
	c.sweepAccounts.WithLabelValues("deleted").Add(float64(deleted))
	c.sweepAccounts.WithLabelValues("skipped").Add(float64(skipped))
	c.sweepAccounts.WithLabelValues("failed").Add(float64(failed))
	c.sweepDuration.Observe(duration.Seconds())
}

// Handler serves the registry for Prometheus scrapes
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
