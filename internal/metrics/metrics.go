package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const JobName = "rowmailer"

var (
	RowsClaimed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emailer_rows_claimed_total",
			Help: "Total rows moved to In Progress",
		},
	)

	EmailsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total emails sent",
		},
	)

	EmailFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_failures_total",
			Help: "Total rows that failed, by pipeline stage",
		},
		[]string{"stage"},
	)

	ConfigurationsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emailer_configurations_skipped_total",
			Help: "Total configurations skipped by a setup failure",
		},
	)

	FinalizeFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emailer_status_finalize_failures_total",
			Help: "Total emails sent whose row could not be marked Sent",
		},
	)
)

func Init() {
	prometheus.MustRegister(RowsClaimed)
	prometheus.MustRegister(EmailsSent)
	prometheus.MustRegister(EmailFailures)
	prometheus.MustRegister(ConfigurationsSkipped)
	prometheus.MustRegister(FinalizeFailures)
}

// Push sends the default registry to a Pushgateway once, grouped by run.
func Push(ctx context.Context, gatewayURL, runID string) error {
	return pusher(gatewayURL, runID, prometheus.DefaultGatherer).PushContext(ctx)
}

func pusher(gatewayURL, runID string, g prometheus.Gatherer) *push.Pusher {
	return push.New(gatewayURL, JobName).
		Gatherer(g).
		Grouping("run_id", runID)
}
