// Package prometheus bridges a metrics registry into Prometheus: every
// registered metric is exposed as a gauge whose value is computed at scrape
// time.
package prometheus

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marabangath/tehuti/core/metrics"
)

// ReporterConfig configures a Reporter.
type ReporterConfig struct {
	// Log defaults to slog.Default().
	Log *slog.Logger
	// Registerer receives the gauges, e.g. a prometheus.Registry or
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// Namespace prefixes every exposed gauge name. Optional.
	Namespace string
}

// Reporter exposes each metric as a prometheus GaugeFunc. The gauge reads
// Metric.Value on scrape, so Prometheus always sees the value at scrape
// time, windowing included.
type Reporter struct {
	log       *slog.Logger
	reg       prometheus.Registerer
	namespace string

	mu     sync.Mutex
	gauges map[string]prometheus.GaugeFunc
}

// NewReporter creates a Reporter. Attach it with metrics.WithReporter or
// Metrics.AddReporter.
func NewReporter(config ReporterConfig) *Reporter {
	if config.Log == nil {
		config.Log = slog.Default()
	}
	if config.Registerer == nil {
		config.Registerer = prometheus.DefaultRegisterer
	}
	return &Reporter{
		log:       config.Log.With(slog.String("reporter", "prometheus")),
		reg:       config.Registerer,
		namespace: config.Namespace,
		gauges:    map[string]prometheus.GaugeFunc{},
	}
}

func (r *Reporter) Init(ms []*metrics.Metric) {
	for _, m := range ms {
		r.MetricChange(m)
	}
}

func (r *Reporter) MetricChange(m *metrics.Metric) {
	gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      sanitizeName(m.Name()),
		Help:      "Current value of metric " + m.Name(),
	}, m.Value)

	if err := r.reg.Register(gauge); err != nil {
		r.log.Error("failed to register gauge",
			slog.String("metric", m.Name()),
			slog.Any("error", err),
		)
		return
	}

	r.mu.Lock()
	r.gauges[m.Name()] = gauge
	r.mu.Unlock()
}

func (r *Reporter) MetricRemoval(m *metrics.Metric) {
	r.mu.Lock()
	gauge, ok := r.gauges[m.Name()]
	delete(r.gauges, m.Name())
	r.mu.Unlock()
	if ok {
		r.reg.Unregister(gauge)
	}
}

func (r *Reporter) Close() {
	r.mu.Lock()
	gauges := r.gauges
	r.gauges = map[string]prometheus.GaugeFunc{}
	r.mu.Unlock()
	for _, gauge := range gauges {
		r.reg.Unregister(gauge)
	}
}

// sanitizeName maps a metric name like "requests.p99.9" onto the Prometheus
// name charset.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == ':':
			return r
		default:
			return '_'
		}
	}, name)
}

var _ metrics.Reporter = (*Reporter)(nil)
