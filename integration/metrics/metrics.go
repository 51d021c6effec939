package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/sessionkit/core/session"
)

// Result label values.
const (
	ResultOK          = "ok"
	ResultError       = "error"
	ResultLockTimeout = "lock_timeout"
	ResultPresent     = "present"
	ResultFresh       = "fresh"
	ResultRejected    = "rejected"
)

// Observer records session operations as Prometheus metrics:
//
//	sessionkit_operations_total{operation,strategy,result}
//	sessionkit_operation_duration_seconds{operation}
type Observer struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

var _ session.Observer = (*Observer)(nil)

// Option configures an Observer.
type Option func(*options)

type options struct {
	namespace string
	buckets   []float64
}

// WithNamespace overrides the metric namespace.
func WithNamespace(ns string) Option {
	return func(o *options) { o.namespace = ns }
}

// WithBuckets overrides the latency histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(o *options) {
		if len(buckets) > 0 {
			o.buckets = buckets
		}
	}
}

// NewObserver creates the collectors and registers them with reg.
func NewObserver(reg prometheus.Registerer, opts ...Option) (*Observer, error) {
	o := &options{
		namespace: "sessionkit",
		buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}
	for _, opt := range opts {
		opt(o)
	}

	obs := &Observer{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "operations_total",
			Help:      "Session operations by outcome",
		}, []string{"operation", "strategy", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "operation_duration_seconds",
			Help:      "Session operation latency including storage round trips",
			Buckets:   o.buckets,
		}, []string{"operation"}),
	}

	for _, c := range []prometheus.Collector{obs.operations, obs.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return obs, nil
}

// Observe implements session.Observer.
func (o *Observer) Observe(_ context.Context, ev session.Event) {
	op := string(ev.Operation)
	o.operations.WithLabelValues(op, ev.Strategy, Result(ev)).Inc()
	o.duration.WithLabelValues(op).Observe(ev.Duration.Seconds())
}

// Counter returns the operations counter for one label set.
func (o *Observer) Counter(operation, strategy, result string) prometheus.Counter {
	return o.operations.WithLabelValues(operation, strategy, result)
}

// Result maps an event to its result label.
func Result(ev session.Event) string {
	if ev.Operation == session.OpOpen {
		switch {
		case ev.Err != nil:
			return ResultRejected
		case ev.Present:
			return ResultPresent
		default:
			return ResultFresh
		}
	}
	switch {
	case ev.Err == nil:
		return ResultOK
	case errors.Is(ev.Err, session.ErrNoLock):
		return ResultLockTimeout
	default:
		return ResultError
	}
}

// Handler exposes gatherer in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
