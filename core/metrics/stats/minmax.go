package stats

import (
	"math"

	"github.com/marabangath/tehuti/core/metrics"
)

// Max is the windowed maximum of recorded values. With no live samples it
// measures -Inf.
type Max struct {
	sampledStat
}

// NewMax creates a Max.
func NewMax() *Max {
	m := &Max{}
	m.initial = math.Inf(-1)
	m.update = func(s *sample, _ *metrics.MetricConfig, value float64, _ int64) {
		s.value = math.Max(s.value, value)
	}
	m.combine = func(samples []*sample, _ *metrics.MetricConfig, _ int64) float64 {
		max := math.Inf(-1)
		for _, s := range samples {
			max = math.Max(max, s.value)
		}
		return max
	}
	return m
}

// Min is the windowed minimum of recorded values. With no live samples it
// measures +Inf.
type Min struct {
	sampledStat
}

// NewMin creates a Min.
func NewMin() *Min {
	m := &Min{}
	m.initial = math.Inf(1)
	m.update = func(s *sample, _ *metrics.MetricConfig, value float64, _ int64) {
		s.value = math.Min(s.value, value)
	}
	m.combine = func(samples []*sample, _ *metrics.MetricConfig, _ int64) float64 {
		min := math.Inf(1)
		for _, s := range samples {
			min = math.Min(min, s.value)
		}
		return min
	}
	return m
}

var (
	_ WindowedStat = (*Max)(nil)
	_ WindowedStat = (*Min)(nil)
)
