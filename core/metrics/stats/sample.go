package stats

import "github.com/marabangath/tehuti/core/metrics"

// sample is one cell of a windowed stat's rotating buffer.
type sample struct {
	initial       float64
	value         float64
	eventCount    int64
	windowStartMs int64

	// hist holds per-bucket counts for histogram-backed stats, nil for
	// scalar stats. Reset zeroes it in place.
	hist []float64
}

func newSample(initial float64, nowMs int64) *sample {
	return &sample{
		initial:       initial,
		value:         initial,
		windowStartMs: nowMs,
	}
}

func newHistogramSample(buckets int, nowMs int64) *sample {
	s := newSample(0, nowMs)
	s.hist = make([]float64, buckets)
	return s
}

// reset returns the sample to the stat's identity and restarts its window.
func (s *sample) reset(nowMs int64) {
	s.value = s.initial
	s.eventCount = 0
	s.windowStartMs = nowMs
	for i := range s.hist {
		s.hist[i] = 0
	}
}

// isComplete reports whether the sample's single window has been exhausted
// by time or by event count, making it due for rotation.
func (s *sample) isComplete(nowMs int64, c *metrics.MetricConfig) bool {
	return nowMs-s.windowStartMs >= c.TimeWindowMs() || s.eventCount >= c.EventWindow()
}
