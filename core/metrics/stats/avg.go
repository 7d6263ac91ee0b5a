package stats

import "github.com/marabangath/tehuti/core/metrics"

// Avg is a windowed arithmetic mean of recorded values.
type Avg struct {
	sampledStat
}

// NewAvg creates an Avg.
func NewAvg() *Avg {
	a := &Avg{}
	a.initial = 0
	a.update = func(s *sample, _ *metrics.MetricConfig, value float64, _ int64) {
		s.value += value
	}
	a.combine = func(samples []*sample, _ *metrics.MetricConfig, _ int64) float64 {
		var total float64
		var count int64
		for _, s := range samples {
			total += s.value
			count += s.eventCount
		}
		if count == 0 {
			return 0
		}
		return total / float64(count)
	}
	return a
}

var _ WindowedStat = (*Avg)(nil)
