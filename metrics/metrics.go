// Package metrics contains prometheus collectors of the relay host.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/nspcc-dev/ftrelay/notify"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ftrelay"

// Collector groups relay metrics. Nil Collector is valid and records nothing.
type Collector struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	pending  prometheus.Gauge
	events   *prometheus.CounterVec
}

// New creates collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "host",
				Name:      "remote_calls_total",
				Help:      "Remote calls performed by the relay host.",
			},
			[]string{"stage", "method", "success"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "host",
				Name:      "remote_call_duration_seconds",
				Help:      "Remote call duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage", "method"},
		),
		pending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "host",
				Name:      "pending_calls",
				Help:      "Issued remote calls waiting for execution.",
			},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "relay",
				Name:      "events_total",
				Help:      "Emitted relay events.",
			},
			[]string{"event"},
		),
	}

	for _, col := range []prometheus.Collector{c.calls, c.duration, c.pending, c.events} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return c, nil
}

// RecordCall accounts a finished remote call.
func (c *Collector) RecordCall(stage, method string, success bool, d time.Duration) {
	if c == nil {
		return
	}
	c.calls.WithLabelValues(stage, method, strconv.FormatBool(success)).Inc()
	c.duration.WithLabelValues(stage, method).Observe(d.Seconds())
}

// SetPending sets the number of queued calls.
func (c *Collector) SetPending(n int) {
	if c == nil {
		return
	}
	c.pending.Set(float64(n))
}

// Sink wraps next so that every event passing through it is counted.
func (c *Collector) Sink(next notify.Sink) notify.Sink {
	return notify.SinkFunc(func(e notify.Event) {
		if c != nil {
			c.events.WithLabelValues(e.Event).Inc()
		}
		if next != nil {
			next.Emit(e)
		}
	})
}
