package metrics

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/marabangath/tehuti/core/ds"
)

// Metrics is the registry. It owns all sensors and metrics, enforces global
// metric-name uniqueness and hosts reporters. Each instance is an
// independently scoped registry sharing one clock.
type Metrics struct {
	log    *slog.Logger
	clk    clock.Clock
	config *MetricConfig

	mu        sync.Mutex
	sensors   map[string]*Sensor
	metrics   map[string]*Metric
	reporters []Reporter
	closed    bool
}

// Option configures a registry under construction.
type Option func(*Metrics)

// WithLogger sets the registry logger (default: slog.Default()).
func WithLogger(log *slog.Logger) Option {
	return func(m *Metrics) { m.log = log }
}

// WithClock sets the clock capability (default: the system clock). Tests
// inject clock.NewMock() for deterministic windowing.
func WithClock(clk clock.Clock) Option {
	return func(m *Metrics) { m.clk = clk }
}

// WithConfig sets the default config inherited by sensors and metrics that
// do not supply their own.
func WithConfig(c *MetricConfig) Option {
	return func(m *Metrics) { m.config = c }
}

// WithReporter attaches a reporter at construction time.
func WithReporter(r Reporter) Option {
	return func(m *Metrics) { m.reporters = append(m.reporters, r) }
}

// New creates a registry.
func New(opts ...Option) *Metrics {
	m := &Metrics{
		sensors: map[string]*Sensor{},
		metrics: map[string]*Metric{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	if m.clk == nil {
		m.clk = clock.New()
	}
	if m.config == nil {
		m.config = DefaultConfig()
	}

	for _, r := range m.reporters {
		m.notify(r, func(r Reporter) { r.Init(nil) })
	}

	return m
}

// SensorOption configures sensor creation.
type SensorOption func(*sensorOptions)

type sensorOptions struct {
	parents []*Sensor
	config  *MetricConfig
}

// WithParents sets the parent sensors; every value recorded at the new
// sensor is also recorded at each parent.
func WithParents(parents ...*Sensor) SensorOption {
	return func(o *sensorOptions) { o.parents = parents }
}

// WithSensorConfig sets the sensor's config instead of the registry default.
func WithSensorConfig(c *MetricConfig) SensorOption {
	return func(o *sensorOptions) { o.config = c }
}

// Sensor returns the sensor registered under name, creating it if absent.
// Re-requesting an existing sensor reuses it when the requested parents and
// config are equivalent and fails otherwise. Creation fails with
// ErrIllegalSensorHierarchy when two requested parents share a common
// ancestor: the propagation DAG must not contain diamonds, or ancestors
// would double-count.
func (m *Metrics) Sensor(name string, opts ...SensorOption) (*Sensor, error) {
	if name == "" {
		return nil, errors.New("sensor name is empty")
	}
	o := sensorOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sensors[name]; ok {
		if len(o.parents) > 0 && !ds.NewSet(existing.parents...).Eq(ds.NewSet(o.parents...)) {
			return nil, fmt.Errorf("sensor %q: %w: requested parents differ from registered parents", name, ErrIllegalSensorHierarchy)
		}
		if o.config != nil && !o.config.equal(existing.config) {
			return nil, fmt.Errorf("sensor %q: %w: requested config differs from registered config", name, ErrInvalidConfig)
		}
		return existing, nil
	}

	for _, parent := range o.parents {
		if parent == nil {
			return nil, fmt.Errorf("sensor %q: parent sensor is nil", name)
		}
		if parent.registry != m {
			return nil, fmt.Errorf("sensor %q: parent sensor %q belongs to a different registry", name, parent.name)
		}
	}
	for i := 0; i < len(o.parents); i++ {
		for j := i + 1; j < len(o.parents); j++ {
			shared := o.parents[i].ancestors().Intersect(o.parents[j].ancestors())
			if !shared.IsEmpty() {
				return nil, fmt.Errorf("sensor %q: %w: parents %q and %q share ancestor %q",
					name, ErrIllegalSensorHierarchy,
					o.parents[i].name, o.parents[j].name, shared.Values()[0].name)
			}
		}
	}

	config := o.config
	if config == nil {
		config = m.config
	}

	s := &Sensor{
		registry: m,
		name:     name,
		parents:  append([]*Sensor(nil), o.parents...),
		config:   config,
		clk:      m.clk,
	}
	m.sensors[name] = s

	m.log.Debug("sensor registered",
		slog.String("sensor", name),
		slog.Int("parents", len(o.parents)),
	)

	return s, nil
}

// AddMetric registers a free-standing measurable under name, not attached to
// any sensor. Fails with ErrDuplicateMetricName if the name is taken.
func (m *Metrics) AddMetric(name string, measurable Measurable, opts ...AddOption) (*Metric, error) {
	o := addOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	config := o.config
	if config == nil {
		config = m.config
	}

	metric := newMetric(name, measurable, config, m.clk, nil)
	if err := m.register(metric); err != nil {
		return nil, err
	}
	return metric, nil
}

// GetMetric looks up a metric by name.
func (m *Metrics) GetMetric(name string) (*Metric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	metric, ok := m.metrics[name]
	if !ok {
		return nil, fmt.Errorf("metric %q: %w", name, ErrMetricNotFound)
	}
	return metric, nil
}

// Metrics returns a point-in-time copy of all registered metrics by name.
func (m *Metrics) Metrics() map[string]*Metric {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*Metric, len(m.metrics))
	for name, metric := range m.metrics {
		out[name] = metric
	}
	return out
}

// AddReporter attaches a reporter and initializes it with the metrics
// registered so far.
func (m *Metrics) AddReporter(r Reporter) {
	m.mu.Lock()
	m.reporters = append(m.reporters, r)
	initial := make([]*Metric, 0, len(m.metrics))
	for _, metric := range m.metrics {
		initial = append(initial, metric)
	}
	m.mu.Unlock()

	m.notify(r, func(r Reporter) { r.Init(initial) })
}

// Close notifies every reporter of the removal of each registered metric and
// closes the reporters; a second call is a no-op. The registry keeps its
// sensors and metrics: GetMetric, Metrics and recording still work
// afterwards, but no reporter observes the metrics that were registered.
func (m *Metrics) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	var (
		reporters = append([]Reporter(nil), m.reporters...)
		removed   = make([]*Metric, 0, len(m.metrics))
	)
	for _, metric := range m.metrics {
		removed = append(removed, metric)
	}
	m.mu.Unlock()

	for _, metric := range removed {
		for _, r := range reporters {
			metric := metric
			m.notify(r, func(r Reporter) { r.MetricRemoval(metric) })
		}
	}
	for _, r := range reporters {
		m.notify(r, func(r Reporter) { r.Close() })
	}
}

// register registers a single metric; registerAll registers a batch
// atomically. Reporter callbacks run after the registry lock is released,
// on the mutating goroutine.
func (m *Metrics) register(metric *Metric) error {
	return m.registerAll([]*Metric{metric})
}

func (m *Metrics) registerAll(batch []*Metric) error {
	m.mu.Lock()
	names := ds.NewSet[string]()
	for _, metric := range batch {
		if _, ok := m.metrics[metric.name]; ok || names.Contains(metric.name) {
			m.mu.Unlock()
			return fmt.Errorf("metric %q: %w", metric.name, ErrDuplicateMetricName)
		}
		names.Add(metric.name)
	}
	for _, metric := range batch {
		m.metrics[metric.name] = metric
	}
	reporters := append([]Reporter(nil), m.reporters...)
	m.mu.Unlock()

	for _, metric := range batch {
		m.log.Debug("metric registered", slog.String("metric", metric.name))
		for _, r := range reporters {
			metric := metric
			m.notify(r, func(r Reporter) { r.MetricChange(metric) })
		}
	}
	return nil
}

// notify invokes a reporter callback, isolating panics so a failing reporter
// cannot stall registration or recording.
func (m *Metrics) notify(r Reporter, f func(Reporter)) {
	defer func() {
		if rec := recover(); rec != nil {
			m.log.Error("metrics reporter panicked",
				slog.String("reporter", fmt.Sprintf("%T", r)),
				slog.Any("recovered", rec),
			)
		}
	}()
	f(r)
}
