package metrics

import "log/slog"

// Reporter is notified as metrics are added to and removed from a registry.
// Callbacks run on the mutating goroutine and must not block; panics are
// recovered and logged by the registry so a failing reporter cannot stall
// recording.
type Reporter interface {
	// Init is called once when the reporter is attached, with the metrics
	// registered so far.
	Init(metrics []*Metric)

	// MetricChange is called for every metric added after Init.
	MetricChange(metric *Metric)

	// MetricRemoval is called for every registered metric when the registry
	// is closed; the core reports no removal at any other time.
	MetricRemoval(metric *Metric)

	// Close releases reporter resources on registry shutdown.
	Close()
}

// LogReporter logs metric lifecycle events through slog. It is always safe
// to attach and useful as a starting point before wiring a real backend.
type LogReporter struct {
	log *slog.Logger
}

// NewLogReporter creates a LogReporter. A nil logger defaults to
// slog.Default().
func NewLogReporter(log *slog.Logger) *LogReporter {
	if log == nil {
		log = slog.Default()
	}
	return &LogReporter{log: log.With(slog.String("reporter", "log"))}
}

func (r *LogReporter) Init(metrics []*Metric) {
	r.log.Debug("reporter initialized", slog.Int("metrics", len(metrics)))
}

func (r *LogReporter) MetricChange(metric *Metric) {
	r.log.Debug("metric added", slog.String("metric", metric.Name()))
}

func (r *LogReporter) MetricRemoval(metric *Metric) {
	r.log.Debug("metric removed", slog.String("metric", metric.Name()))
}

func (r *LogReporter) Close() {}

var _ Reporter = (*LogReporter)(nil)
