package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"

	"github.com/marabangath/tehuti/core/ds"
)

// Sensor is a named recording endpoint. It owns a list of stats that all
// receive every recorded value, and may have parent sensors: recording at a
// child also records at every ancestor. Sensors are created through
// Metrics.Sensor and live as long as the registry.
type Sensor struct {
	registry *Metrics
	name     string
	parents  []*Sensor
	config   *MetricConfig
	clk      clock.Clock

	lastRecordMs atomic.Int64

	// mu guards stats, metrics and all sample state owned by them. Reads
	// through Metric.Value take the same lock, so a measurement never
	// observes a sample mid-rotation.
	mu      sync.Mutex
	stats   []Stat
	metrics []*Metric
}

// Name returns the sensor name, unique within its registry.
func (s *Sensor) Name() string { return s.name }

// Config returns the sensor's effective config.
func (s *Sensor) Config() *MetricConfig { return s.config }

// LastRecordMs returns the timestamp of the most recent record, or 0 if the
// sensor has never recorded.
func (s *Sensor) LastRecordMs() int64 { return s.lastRecordMs.Load() }

// AddOption configures metric registration.
type AddOption func(*addOptions)

type addOptions struct {
	config *MetricConfig
}

// WithMetricConfig binds the metric to the given config instead of the
// sensor's (or registry's) config.
func WithMetricConfig(c *MetricConfig) AddOption {
	return func(o *addOptions) { o.config = c }
}

// Add registers a metric named name bound to stat. The stat receives every
// value recorded at this sensor from now on. Fails with
// ErrDuplicateMetricName if the name is taken anywhere in the registry.
func (s *Sensor) Add(name string, stat Stat, opts ...AddOption) (*Metric, error) {
	metric := newMetric(name, stat, s.metricConfig(opts), s.clk, &s.mu)
	if err := s.registry.register(metric); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.stats = append(s.stats, stat)
	s.metrics = append(s.metrics, metric)
	s.mu.Unlock()

	return metric, nil
}

// AddCompound registers all named sub-metrics of a compound stat, sharing
// one underlying state. Registration is all-or-nothing: if any sub-name
// collides, no sub-metric is registered.
func (s *Sensor) AddCompound(stat CompoundStat, opts ...AddOption) ([]*Metric, error) {
	var (
		config = s.metricConfig(opts)
		named  = stat.Stats()
		ms     = make([]*Metric, 0, len(named))
	)
	for _, nm := range named {
		ms = append(ms, newMetric(nm.Name, nm.Measurable, config, s.clk, &s.mu))
	}
	if err := s.registry.registerAll(ms); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.stats = append(s.stats, stat)
	s.metrics = append(s.metrics, ms...)
	s.mu.Unlock()

	return ms, nil
}

func (s *Sensor) metricConfig(opts []AddOption) *MetricConfig {
	o := addOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.config != nil {
		return o.config
	}
	return s.config
}

// Record records a bare occurrence, equivalent to RecordValue(1.0).
func (s *Sensor) Record() error {
	return s.RecordValue(1.0)
}

// RecordValue records value at this sensor and every ancestor. Quotas are
// checked after the sensor's own stats have been updated; a
// *QuotaViolationError does not roll back the observation, and stops the
// upward propagation at the violating sensor.
func (s *Sensor) RecordValue(value float64) error {
	return s.record(value, s.clk.Now().UnixMilli(), ds.NewSet[*Sensor]())
}

func (s *Sensor) record(value float64, nowMs int64, seen *ds.Set[*Sensor]) error {
	if seen.Contains(s) {
		return nil
	}
	seen.Add(s)

	s.lastRecordMs.Store(nowMs)

	s.mu.Lock()
	for _, stat := range s.stats {
		stat.Record(s.config, value, nowMs)
	}
	err := s.checkQuotas(nowMs)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	for _, parent := range s.parents {
		if err := parent.record(value, nowMs, seen); err != nil {
			return err
		}
	}
	return nil
}

// checkQuotas evaluates every quota-bearing metric of this sensor. Callers
// must hold s.mu.
func (s *Sensor) checkQuotas(nowMs int64) error {
	for _, metric := range s.metrics {
		quota := metric.config.Quota()
		if quota == nil {
			continue
		}
		if value := metric.valueAt(nowMs); !quota.Acceptable(value) {
			return &QuotaViolationError{Metric: metric.name, Quota: *quota, Value: value}
		}
	}
	return nil
}

// ancestors returns this sensor and every transitive parent.
func (s *Sensor) ancestors() *ds.Set[*Sensor] {
	anc := ds.NewSet[*Sensor]()
	s.collectAncestors(anc)
	return anc
}

func (s *Sensor) collectAncestors(into *ds.Set[*Sensor]) {
	if into.Contains(s) {
		return
	}
	into.Add(s)
	for _, parent := range s.parents {
		parent.collectAncestors(into)
	}
}
