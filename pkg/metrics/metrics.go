// Package metrics exposes the prometheus counters and histograms the
// indexing core updates while it runs. The corpus's go.mod carries
// prometheus/client_golang as a transitive dependency but no in-tree
// source exercises it directly; Recorder gives the core's own
// components (indexer, builder, pool) a concrete, idiomatic client_golang
// surface to report against.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the metrics surface every core component reports through.
// A nil *Recorder is valid and every method on it is a no-op, so callers
// that don't care about metrics can pass nil instead of a stub.
type Recorder struct {
	filesParsed       prometheus.Counter
	entitiesInterned  *prometheus.CounterVec
	capacityExceeded  prometheus.Counter
	invariantViolated prometheus.Counter
	parseDuration     prometheus.Histogram
	cancelledParses   prometheus.Counter
	poolActiveWorkers prometheus.Gauge
	poolQueueDepth    prometheus.Gauge
	poolTaskDuration  prometheus.Histogram
}

// NewRecorder creates and registers a Recorder's collectors against reg.
// Passing a fresh prometheus.NewRegistry() keeps the core's metrics
// isolated from the default global registry, which matters for callers
// embedding the core inside a larger process.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		filesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cxxindex",
			Name:      "files_parsed_total",
			Help:      "Total number of translation units parsed to completion.",
		}),
		entitiesInterned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cxxindex",
			Name:      "entities_interned_total",
			Help:      "Total number of entities interned, partitioned by kind.",
		}, []string{"kind"}),
		capacityExceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cxxindex",
			Name:      "capacity_exceeded_total",
			Help:      "Total number of parses aborted because a Location field or the file table overflowed.",
		}),
		invariantViolated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cxxindex",
			Name:      "invariant_violated_total",
			Help:      "Total number of parses aborted by an invariant violation.",
		}),
		parseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cxxindex",
			Name:      "parse_duration_seconds",
			Help:      "Wall-clock duration of a single parse() invocation.",
			Buckets:   prometheus.DefBuckets,
		}),
		cancelledParses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cxxindex",
			Name:      "cancelled_parses_total",
			Help:      "Total number of parses discarded due to cooperative cancellation.",
		}),
		poolActiveWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cxxindex",
			Name:      "pool_active_workers",
			Help:      "Number of task pool workers currently executing a task.",
		}),
		poolQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cxxindex",
			Name:      "pool_queue_depth",
			Help:      "Number of tasks submitted to the pool but not yet picked up by a worker.",
		}),
		poolTaskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cxxindex",
			Name:      "pool_task_duration_seconds",
			Help:      "Wall-clock duration of a single pool task, from dequeue to completion.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		r.filesParsed, r.entitiesInterned, r.capacityExceeded, r.invariantViolated,
		r.parseDuration, r.cancelledParses,
		r.poolActiveWorkers, r.poolQueueDepth, r.poolTaskDuration,
	)
	return r
}

// ObserveFileParsed increments the completed-parse counter.
func (r *Recorder) ObserveFileParsed() {
	if r == nil {
		return
	}
	r.filesParsed.Inc()
}

// ObserveEntityInterned increments the per-kind interning counter. kind
// should be one of "type", "func", "var".
func (r *Recorder) ObserveEntityInterned(kind string) {
	if r == nil {
		return
	}
	r.entitiesInterned.WithLabelValues(kind).Inc()
}

// ObserveCapacityExceeded increments the capacity-exceeded abort counter.
func (r *Recorder) ObserveCapacityExceeded() {
	if r == nil {
		return
	}
	r.capacityExceeded.Inc()
}

// ObserveInvariantViolated increments the invariant-violation abort counter.
func (r *Recorder) ObserveInvariantViolated() {
	if r == nil {
		return
	}
	r.invariantViolated.Inc()
}

// ObserveCancelled increments the cooperative-cancellation counter.
func (r *Recorder) ObserveCancelled() {
	if r == nil {
		return
	}
	r.cancelledParses.Inc()
}

// ObserveParseDuration records the duration, in seconds, of one parse()
// invocation.
func (r *Recorder) ObserveParseDuration(seconds float64) {
	if r == nil {
		return
	}
	r.parseDuration.Observe(seconds)
}

// SetPoolActiveWorkers reports how many task pool workers currently hold a
// task.
func (r *Recorder) SetPoolActiveWorkers(n int) {
	if r == nil {
		return
	}
	r.poolActiveWorkers.Set(float64(n))
}

// SetPoolQueueDepth reports how many tasks are queued but not yet running.
func (r *Recorder) SetPoolQueueDepth(n int) {
	if r == nil {
		return
	}
	r.poolQueueDepth.Set(float64(n))
}

// ObservePoolTaskDuration records the wall-clock duration, in seconds, of
// one pool task from dequeue to completion.
func (r *Recorder) ObservePoolTaskDuration(seconds float64) {
	if r == nil {
		return
	}
	r.poolTaskDuration.Observe(seconds)
}
