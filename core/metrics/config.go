package metrics

import (
	"fmt"
	"math"
	"time"
)

const (
	defaultSamples      = 2
	defaultTimeWindowMs = 30_000
	defaultEventWindow  = math.MaxInt64
	defaultRateUnit     = time.Second
)

// MetricConfig is an immutable bundle of windowing parameters and an optional
// quota. A config is frozen once handed to a sensor or metric; sample arrays
// already allocated by a stat are not resized by later config changes.
type MetricConfig struct {
	quota        *Quota
	samples      int
	eventWindow  int64
	timeWindowMs int64
	rateUnit     time.Duration
}

// ConfigOption configures a MetricConfig under construction.
type ConfigOption func(*MetricConfig)

// WithQuota attaches a quota bound.
func WithQuota(q Quota) ConfigOption {
	return func(c *MetricConfig) { c.quota = &q }
}

// WithSamples sets the number of rotating samples kept per windowed stat.
func WithSamples(n int) ConfigOption {
	return func(c *MetricConfig) { c.samples = n }
}

// WithEventWindow sets the maximum number of events per sample before the
// stat rotates to the next sample.
func WithEventWindow(n int64) ConfigOption {
	return func(c *MetricConfig) { c.eventWindow = n }
}

// WithTimeWindow sets the wall-clock span of a single sample.
func WithTimeWindow(d time.Duration) ConfigOption {
	return func(c *MetricConfig) { c.timeWindowMs = d.Milliseconds() }
}

// WithRateUnit sets the unit rates are normalized to (default: per second).
func WithRateUnit(d time.Duration) ConfigOption {
	return func(c *MetricConfig) { c.rateUnit = d }
}

// NewConfig builds a MetricConfig from the defaults (2 samples, 30s time
// window, unbounded event window, per-second rates, no quota) and the given
// options. Non-positive windows, samples or rate units return
// ErrInvalidConfig.
func NewConfig(opts ...ConfigOption) (*MetricConfig, error) {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(c)
	}
	if c.samples < 1 {
		return nil, fmt.Errorf("%w: samples must be >= 1, got %d", ErrInvalidConfig, c.samples)
	}
	if c.eventWindow <= 0 {
		return nil, fmt.Errorf("%w: event window must be positive, got %d", ErrInvalidConfig, c.eventWindow)
	}
	if c.timeWindowMs <= 0 {
		return nil, fmt.Errorf("%w: time window must be positive, got %dms", ErrInvalidConfig, c.timeWindowMs)
	}
	if c.rateUnit <= 0 {
		return nil, fmt.Errorf("%w: rate unit must be positive, got %s", ErrInvalidConfig, c.rateUnit)
	}
	return c, nil
}

// DefaultConfig returns a config with the library defaults and no quota.
func DefaultConfig() *MetricConfig {
	return &MetricConfig{
		samples:      defaultSamples,
		eventWindow:  defaultEventWindow,
		timeWindowMs: defaultTimeWindowMs,
		rateUnit:     defaultRateUnit,
	}
}

// Quota returns the attached quota, or nil.
func (c *MetricConfig) Quota() *Quota { return c.quota }

// Samples returns the number of rotating samples.
func (c *MetricConfig) Samples() int { return c.samples }

// EventWindow returns the per-sample event budget.
func (c *MetricConfig) EventWindow() int64 { return c.eventWindow }

// TimeWindowMs returns the per-sample wall-clock span in milliseconds.
func (c *MetricConfig) TimeWindowMs() int64 { return c.timeWindowMs }

// TimeWindow returns the per-sample wall-clock span.
func (c *MetricConfig) TimeWindow() time.Duration {
	return time.Duration(c.timeWindowMs) * time.Millisecond
}

// RateUnit returns the unit rates are normalized to.
func (c *MetricConfig) RateUnit() time.Duration { return c.rateUnit }

func (c *MetricConfig) equal(other *MetricConfig) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	if c.samples != other.samples ||
		c.eventWindow != other.eventWindow ||
		c.timeWindowMs != other.timeWindowMs ||
		c.rateUnit != other.rateUnit {
		return false
	}
	if (c.quota == nil) != (other.quota == nil) {
		return false
	}
	return c.quota == nil || *c.quota == *other.quota
}
