// Package metrics provides Prometheus metrics for one digest run. A run is a
// short-lived batch job, so metrics live in a private registry and are pushed
// to a Pushgateway when one is configured.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "aidigest"

type Run struct {
	registry *prometheus.Registry

	// FeedsTotal counts feeds by outcome (ok, empty, fetch_error, generation_error).
	FeedsTotal *prometheus.CounterVec
	// EntriesTotal counts entries by stage (fetched, promotional, kept).
	EntriesTotal *prometheus.CounterVec
	// FetchAttempts observes how many attempts a feed fetch needed.
	FetchAttempts prometheus.Histogram
	// DeliveriesTotal counts deliveries by channel and status.
	DeliveriesTotal *prometheus.CounterVec
	// ChatMessagesTotal counts chat messages accepted by the API.
	ChatMessagesTotal prometheus.Counter
	// RunDuration is the wall time of the last run.
	RunDuration prometheus.Gauge
	// LastSuccess is the unix time of the last run that produced content.
	LastSuccess prometheus.Gauge
}

func NewRun() *Run {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Run{
		registry: reg,
		FeedsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feeds_total",
			Help:      "Feeds processed, by outcome",
		}, []string{"outcome"}),
		EntriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_total",
			Help:      "Feed entries seen, by stage",
		}, []string{"stage"}),
		FetchAttempts: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_attempts",
			Help:      "Attempts needed per feed fetch",
			Buckets:   []float64{1, 2, 3, 5},
		}),
		DeliveriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Digest deliveries, by channel and status",
		}, []string{"channel", "status"}),
		ChatMessagesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_total",
			Help:      "Chat messages accepted by the bot API",
		}),
		RunDuration: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the digest run in seconds",
		}),
		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that produced content",
		}),
	}
}

func (r *Run) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Run) RecordFeed(outcome string, attempts int) {
	r.FeedsTotal.WithLabelValues(outcome).Inc()
	if attempts > 0 {
		r.FetchAttempts.Observe(float64(attempts))
	}
}

func (r *Run) RecordEntries(fetched, promotional, kept int) {
	r.EntriesTotal.WithLabelValues("fetched").Add(float64(fetched))
	r.EntriesTotal.WithLabelValues("promotional").Add(float64(promotional))
	r.EntriesTotal.WithLabelValues("kept").Add(float64(kept))
}

func (r *Run) RecordDelivery(channel, status string, messages int) {
	r.DeliveriesTotal.WithLabelValues(channel, status).Inc()
	if channel == "chat" && messages > 0 {
		r.ChatMessagesTotal.Add(float64(messages))
	}
}

func (r *Run) Finish(started, ended time.Time, succeeded bool) {
	r.RunDuration.Set(ended.Sub(started).Seconds())
	if succeeded {
		r.LastSuccess.Set(float64(ended.Unix()))
	}
}

// Push sends the run's metrics to the Pushgateway at url under job, grouped
// by instance.
func (r *Run) Push(ctx context.Context, url, job, instance string) error {
	p := push.New(url, job).Gatherer(r.registry)
	if instance != "" {
		p = p.Grouping("instance", instance)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
