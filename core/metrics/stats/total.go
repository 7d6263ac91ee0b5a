package stats

import "github.com/marabangath/tehuti/core/metrics"

// Total is a running sum over the sensor's whole lifetime, unaffected by
// windowing.
type Total struct {
	total float64
}

// NewTotal creates a Total.
func NewTotal() *Total {
	return &Total{}
}

func (t *Total) Record(_ *metrics.MetricConfig, value float64, _ int64) {
	t.total += value
}

func (t *Total) Measure(_ *metrics.MetricConfig, _ int64) float64 {
	return t.total
}

var _ metrics.Stat = (*Total)(nil)
