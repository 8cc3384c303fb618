package bindless

// metrics.go is a thin abstraction over Prometheus, directly descended from
// arena-cache's pkg/metrics.go: a metricsSink interface with a no-op
// implementation used by default, and a Prometheus-backed implementation
// activated by WithMetrics(reg). Metric names and the table-per-label
// layout follow the same convention the teacher used for shard-per-label.
//
// ┌───────────────────────────────────┬───────┬────────┐
// │ Metric                            │ Type  │ Labels │
// ├────────────────────────────────────┼───────┼────────┤
// │ bindless_allocations_total         │ Ctr   │ kind   │
// │ bindless_no_capacity_total         │ Ctr   │ kind   │
// │ bindless_gc_reclaimed_total        │ Ctr   │ kind   │
// │ bindless_descriptor_writes_total   │ Ctr   │ binding│
// │ bindless_descriptor_write_span     │ Hist  │ binding│
// │ bindless_submissions_total         │ Ctr   │        │
// │ bindless_frame_guards_active       │ Gge   │ epoch  │
// └───────────────────────────────────┴───────┴────────┘
//
// © 2025 arena-cache authors. MIT License.

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSink is the internal interface abstracting Prometheus vs. no-op.
// Not exported further than package bindless; callers configure it
// indirectly via WithMetrics.
type MetricsSink interface {
	incAlloc(kind Kind)
	incNoCapacity(kind Kind)
	incGCReclaimed(kind Kind, n int)
	incDescriptorWrite(binding int, span int)
	incSubmission()
	setFrameGuards(epochIdx int, n int64)
}

type noopMetrics struct{}

func (noopMetrics) incAlloc(Kind)                  {}
func (noopMetrics) incNoCapacity(Kind)             {}
func (noopMetrics) incGCReclaimed(Kind, int)       {}
func (noopMetrics) incDescriptorWrite(int, int)    {}
func (noopMetrics) incSubmission()                 {}
func (noopMetrics) setFrameGuards(int, int64)      {}

type promMetrics struct {
	allocations     *prometheus.CounterVec
	noCapacity      *prometheus.CounterVec
	gcReclaimed     *prometheus.CounterVec
	descriptorWrite *prometheus.CounterVec
	writeSpan       *prometheus.HistogramVec
	submissions     prometheus.Counter
	frameGuards     *prometheus.GaugeVec
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	kindLabel := []string{"kind"}
	pm := &promMetrics{
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bindless", Name: "allocations_total", Help: "Number of slot allocations.",
		}, kindLabel),
		noCapacity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bindless", Name: "no_capacity_total", Help: "Number of allocations rejected for lack of capacity.",
		}, kindLabel),
		gcReclaimed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bindless", Name: "gc_reclaimed_total", Help: "Number of slots reclaimed by GC passes.",
		}, kindLabel),
		descriptorWrite: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bindless", Name: "descriptor_writes_total", Help: "Number of batched descriptor-write calls issued.",
		}, []string{"binding"}),
		writeSpan: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bindless", Name: "descriptor_write_span", Help: "Descriptor count covered by each write.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"binding"}),
		submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bindless", Name: "submissions_total", Help: "Number of queue submissions issued.",
		}),
		frameGuards: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "bindless", Name: "frame_guards_active", Help: "Number of live frame guards pinning each epoch.",
		}, []string{"epoch"}),
	}
	reg.MustRegister(pm.allocations, pm.noCapacity, pm.gcReclaimed, pm.descriptorWrite, pm.writeSpan, pm.submissions, pm.frameGuards)
	return pm
}

func (m *promMetrics) incAlloc(kind Kind)      { m.allocations.WithLabelValues(kind.String()).Inc() }
func (m *promMetrics) incNoCapacity(kind Kind) { m.noCapacity.WithLabelValues(kind.String()).Inc() }
func (m *promMetrics) incGCReclaimed(kind Kind, n int) {
	m.gcReclaimed.WithLabelValues(kind.String()).Add(float64(n))
}
func (m *promMetrics) incDescriptorWrite(binding int, span int) {
	label := strconv.Itoa(binding)
	m.descriptorWrite.WithLabelValues(label).Inc()
	m.writeSpan.WithLabelValues(label).Observe(float64(span))
}
func (m *promMetrics) incSubmission() { m.submissions.Inc() }
func (m *promMetrics) setFrameGuards(epochIdx int, n int64) {
	m.frameGuards.WithLabelValues(strconv.Itoa(epochIdx)).Set(float64(n))
}

func newMetricsSink(reg *prometheus.Registry) MetricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}

// tableMetrics adapts MetricsSink's kind-aware calls for use from slotTable,
// which only knows about allocation/GC events, not descriptor writes or
// submissions.
type tableMetrics struct {
	sink MetricsSink
}

func (m tableMetrics) observeAlloc(kind Kind) {
	if m.sink != nil {
		m.sink.incAlloc(kind)
	}
}

func (m tableMetrics) observeNoCapacity(kind Kind) {
	if m.sink != nil {
		m.sink.incNoCapacity(kind)
	}
}

func (m tableMetrics) observeGC(kind Kind, n int) {
	if m.sink != nil {
		m.sink.incGCReclaimed(kind, n)
	}
}
