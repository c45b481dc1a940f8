package core

import (
	"time"

	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/schema"
)

// ring is a fixed-capacity FIFO of points. The oldest point is at start.
type ring struct {
	data  []schema.MetricPoint
	start int
	size  int
}

func (r *ring) push(p schema.MetricPoint) {
	if r.size < len(r.data) {
		r.data[(r.start+r.size)%len(r.data)] = p
		r.size++
		return
	}
	r.data[r.start] = p
	r.start = (r.start + 1) % len(r.data)
}

func (r *ring) points() []schema.MetricPoint {
	out := make([]schema.MetricPoint, r.size)
	for i := range out {
		out[i] = r.data[(r.start+i)%len(r.data)]
	}
	return out
}

// MetricBuffer keeps the most recent points of every tracked metric.
// It is not safe for concurrent use; see SyncEngine.
type MetricBuffer struct {
	capacity int
	clock    contract.Clock
	rings    map[schema.MetricName]*ring
}

// NewMetricBuffer creates a buffer holding up to capacity points per metric.
// A non-positive capacity uses contract.DefaultCapacity.
func NewMetricBuffer(capacity int, clock contract.Clock) *MetricBuffer {
	if capacity <= 0 {
		capacity = contract.DefaultCapacity
	}
	if clock == nil {
		clock = contract.SystemClock{}
	}
	return &MetricBuffer{
		capacity: capacity,
		clock:    clock,
		rings:    make(map[schema.MetricName]*ring, len(schema.AllMetricNames)),
	}
}

// Capacity returns the per-metric point limit.
func (b *MetricBuffer) Capacity() int {
	return b.capacity
}

// Append pushes a point, evicting the oldest one when the metric is full.
// Unknown metric names and non-finite values are ignored and reported as
// false. An empty timestamp is replaced with the current time.
func (b *MetricBuffer) Append(name schema.MetricName, value float64, timestamp string) bool {
	if !schema.IsValidMetric(name) || !schema.IsFiniteValue(value) {
		return false
	}
	if timestamp == "" {
		timestamp = b.clock.Now().UTC().Format(time.RFC3339)
	}
	r, ok := b.rings[name]
	if !ok {
		r = &ring{data: make([]schema.MetricPoint, b.capacity)}
		b.rings[name] = r
	}
	r.push(schema.MetricPoint{Value: value, Timestamp: timestamp})
	return true
}

// Read returns a copy of the metric's points, oldest first.
func (b *MetricBuffer) Read(name schema.MetricName) []schema.MetricPoint {
	r, ok := b.rings[name]
	if !ok {
		return []schema.MetricPoint{}
	}
	return r.points()
}

// Len returns the number of points held for a metric.
func (b *MetricBuffer) Len(name schema.MetricName) int {
	if r, ok := b.rings[name]; ok {
		return r.size
	}
	return 0
}
