package stats

import "github.com/marabangath/tehuti/core/metrics"

// SampledCount counts events within the sample window, ignoring the
// recorded value.
type SampledCount struct {
	sampledStat
}

// NewSampledCount creates a SampledCount.
func NewSampledCount() *SampledCount {
	c := &SampledCount{}
	c.initial = 0
	c.update = func(s *sample, _ *metrics.MetricConfig, _ float64, _ int64) {
		s.value++
	}
	c.combine = sumSampleValues
	return c
}

// SampledTotal is a windowed running sum of recorded values. It is the
// default numerator of Rate.
type SampledTotal struct {
	sampledStat
}

// NewSampledTotal creates a SampledTotal.
func NewSampledTotal() *SampledTotal {
	t := &SampledTotal{}
	t.initial = 0
	t.update = func(s *sample, _ *metrics.MetricConfig, value float64, _ int64) {
		s.value += value
	}
	t.combine = sumSampleValues
	return t
}

func sumSampleValues(samples []*sample, _ *metrics.MetricConfig, _ int64) float64 {
	var total float64
	for _, s := range samples {
		total += s.value
	}
	return total
}

var (
	_ WindowedStat = (*SampledCount)(nil)
	_ WindowedStat = (*SampledTotal)(nil)
)
