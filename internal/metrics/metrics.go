package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// Dispatch groups the collectors of the matching engine and the delivery state machine.
type Dispatch struct {
	Passes         *prometheus.CounterVec
	Assignments    prometheus.Counter
	ClaimConflicts prometheus.Counter
	PassDuration   prometheus.Histogram
	Transitions    *prometheus.CounterVec
}

// NewDispatch returns unregistered dispatch collectors.
func NewDispatch() *Dispatch {
	return &Dispatch{
		Passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_passes_total",
			Help: "Total number of matching passes by trigger and result",
		}, []string{"trigger", "result"}),
		Assignments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_assignments_total",
			Help: "Total number of deliveries assigned to drivers",
		}),
		ClaimConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_claim_conflicts_total",
			Help: "Total number of claims lost to a concurrent update",
		}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dispatch_pass_duration_seconds",
			Help:    "Duration of matching passes.",
			Buckets: prometheus.DefBuckets,
		}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_transitions_total",
			Help: "Total number of accepted delivery status transitions",
		}, []string{"to"}),
	}
}

// Collectors lists everything that must be registered.
func (d *Dispatch) Collectors() []prometheus.Collector {
	return []prometheus.Collector{d.Passes, d.Assignments, d.ClaimConflicts, d.PassDuration, d.Transitions}
}

// Live groups the collectors of the real-time fan-out.
type Live struct {
	Published    *prometheus.CounterVec
	Dropped      prometheus.Counter
	Subscribers  prometheus.Gauge
	SinkFailures prometheus.Counter
}

// NewLive returns unregistered live collectors.
func NewLive() *Live {
	return &Live{
		Published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "live_events_published_total",
			Help: "Total number of live events fanned out by type",
		}, []string{"type"}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "live_events_dropped_total",
			Help: "Total number of live events dropped for slow subscribers",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "live_subscribers",
			Help: "Number of open live subscriptions",
		}),
		SinkFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "live_sink_failures_total",
			Help: "Total number of events external sinks failed to accept",
		}),
	}
}

// Collectors lists everything that must be registered.
func (l *Live) Collectors() []prometheus.Collector {
	return []prometheus.Collector{l.Published, l.Dropped, l.Subscribers, l.SinkFailures}
}

// NewFulfillmentEventsTotal returns a counter of consumed fulfillment events by status and outcome.
func NewFulfillmentEventsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_events_total",
		Help: "Total number of consumed fulfillment events",
	}, []string{"status", "outcome"})
}
