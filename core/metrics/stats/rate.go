package stats

import (
	"time"

	"github.com/marabangath/tehuti/core/metrics"
)

// Rate normalizes a windowed stat's value by the elapsed window duration.
// The denominator is the span from the oldest live sample's window start to
// now, so a rate over a partially elapsed window reflects the time actually
// observed. When every sample has been purged the rate is 0, never NaN.
type Rate struct {
	unit time.Duration
	stat WindowedStat
}

// NewRate creates a per-unit rate over a running sum of recorded values.
// A zero unit falls back to the config's rate unit at measure time.
func NewRate(unit time.Duration) *Rate {
	return NewRateOf(unit, NewSampledTotal())
}

// NewRateOf creates a per-unit rate over an arbitrary windowed stat.
func NewRateOf(unit time.Duration, stat WindowedStat) *Rate {
	return &Rate{unit: unit, stat: stat}
}

// NewOccurrenceRate creates a per-second rate of event occurrences,
// regardless of the recorded values.
func NewOccurrenceRate() *Rate {
	return NewRateOf(time.Second, NewSampledCount())
}

func (r *Rate) Record(c *metrics.MetricConfig, value float64, nowMs int64) {
	r.stat.Record(c, value, nowMs)
}

func (r *Rate) Measure(c *metrics.MetricConfig, nowMs int64) float64 {
	value := r.stat.Measure(c, nowMs) // purges before combining
	elapsedMs := nowMs - r.stat.base().oldestWindowStartMs(nowMs)
	if elapsedMs <= 0 {
		return 0
	}
	unit := r.unit
	if unit == 0 {
		unit = c.RateUnit()
	}
	return value * float64(unit.Milliseconds()) / float64(elapsedMs)
}

var _ metrics.Stat = (*Rate)(nil)
