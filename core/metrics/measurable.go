package metrics

// Measurable produces a current value given a config and a monotonic
// millisecond timestamp.
type Measurable interface {
	Measure(c *MetricConfig, nowMs int64) float64
}

// MeasurableFunc adapts a plain function to the Measurable interface.
type MeasurableFunc func(c *MetricConfig, nowMs int64) float64

func (f MeasurableFunc) Measure(c *MetricConfig, nowMs int64) float64 {
	return f(c, nowMs)
}

// Stat is a measurable that consumes observations.
type Stat interface {
	Measurable

	// Record applies a single observation at the given time.
	Record(c *MetricConfig, value float64, nowMs int64)
}

// NamedMeasurable pairs a metric name with the measurable backing it.
type NamedMeasurable struct {
	Name       string
	Measurable Measurable
}

// CompoundStat is a stat that registers multiple named sub-metrics sharing
// one underlying state, e.g. a percentile set over a single histogram.
// Registration is all-or-nothing: if any sub-name collides, none are added.
type CompoundStat interface {
	Stat

	// Stats lists the named sub-metrics to register.
	Stats() []NamedMeasurable
}
