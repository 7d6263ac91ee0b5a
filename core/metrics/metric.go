package metrics

import (
	"sync"

	"github.com/benbjohnson/clock"
)

// Metric is a named, read-only view over a measurable with its effective
// config. Metrics are created by Sensor.Add or Metrics.AddMetric and live
// until the registry is closed.
type Metric struct {
	name       string
	measurable Measurable
	config     *MetricConfig
	clk        clock.Clock

	// lock is shared with the owning sensor so that reads never observe a
	// sample mid-rotation. Free-standing metrics get their own lock.
	lock *sync.Mutex
}

func newMetric(name string, m Measurable, config *MetricConfig, clk clock.Clock, lock *sync.Mutex) *Metric {
	if lock == nil {
		lock = &sync.Mutex{}
	}
	return &Metric{
		name:       name,
		measurable: m,
		config:     config,
		clk:        clk,
		lock:       lock,
	}
}

// Name returns the globally unique metric name.
func (m *Metric) Name() string { return m.name }

// Config returns the effective config the metric measures against.
func (m *Metric) Config() *MetricConfig { return m.config }

// Value computes the metric's current value against the registry clock.
func (m *Metric) Value() float64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.valueAt(m.clk.Now().UnixMilli())
}

// valueAt measures without taking the lock; callers must hold it.
func (m *Metric) valueAt(nowMs int64) float64 {
	return m.measurable.Measure(m.config, nowMs)
}
