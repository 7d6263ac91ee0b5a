// Package metrics provides an in-process metrics registry: numeric
// observations are recorded against named sensors, composed through stats
// (averages, rates, percentiles, counts, totals), bounded by quotas, and
// exposed as named metrics that reporters can read.
//
// # Core Components
//
// Metrics: the registry. It owns all sensors and metrics, enforces global
// metric-name uniqueness and hosts reporters. Each registry is independently
// scoped; there is no process-global instance.
//
//	m := metrics.New()
//	defer m.Close()
//
// Sensor: a named recording endpoint. A sensor owns a list of stats and may
// have parent sensors; recording at a child also records at every ancestor.
//
//	s, _ := m.Sensor("requests")
//	s.Add("requests.avg", stats.NewAvg())
//	s.Add("requests.rate", stats.NewRate(time.Second))
//	s.RecordValue(42)
//
// Metric: a named, read-only view over a [Measurable] with its effective
// [MetricConfig]. [Metric.Value] computes the current value against the
// registry clock.
//
// Quota: an upper or lower bound checked after every record. A violating
// observation is still persisted; the record call returns a
// [*QuotaViolationError] afterwards.
//
//	cfg, _ := metrics.NewConfig(metrics.WithQuota(metrics.UpperBound(1000)))
//	s.Add("requests.total", stats.NewTotal(), metrics.WithMetricConfig(cfg))
//
// Reporter: a callback surface notified on metric addition and removal. See
// the adapters directory for Prometheus and NATS backed reporters, and
// [LogReporter] for a slog-backed one.
//
// # Time
//
// The registry owns a clock capability (github.com/benbjohnson/clock)
// passed at construction and propagated to sensors and metrics. Tests inject
// clock.NewMock() for deterministic windowing.
package metrics
