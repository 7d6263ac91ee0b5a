// Package nats publishes metric lifecycle events and value snapshots to NATS
// subjects, so out-of-process consumers can follow a registry without
// scraping it.
package nats

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	natsgo "github.com/nats-io/nats.go"

	"github.com/marabangath/tehuti/core/metrics"
)

const defaultSubjectPrefix = "tehuti.metrics"

// MetricEvent is published to <prefix>.events whenever a metric is added to
// or removed from the registry.
type MetricEvent struct {
	Event  string `json:"event"` // "added" or "removed"
	Metric string `json:"metric"`
	TsMs   int64  `json:"ts_ms"`
}

// Snapshot is published to <prefix>.snapshot by Publish: a point-in-time
// reading of every tracked metric.
type Snapshot struct {
	SnapshotID string             `json:"snapshot_id"`
	TsMs       int64              `json:"ts_ms"`
	Values     map[string]float64 `json:"values"`
}

// ReporterConfig configures a Reporter.
type ReporterConfig struct {
	// Log defaults to slog.Default().
	Log *slog.Logger
	// Connect opens the NATS connection. Defaults to ConnectDefault().
	Connect Connector
	// SubjectPrefix defaults to "tehuti.metrics".
	SubjectPrefix string
}

// Reporter tracks the registry's metrics and mirrors them over NATS:
// lifecycle events as they happen, value snapshots on Publish.
type Reporter struct {
	log       *slog.Logger
	nc        *natsgo.Conn
	closeConn closeFunc
	prefix    string

	mu      sync.Mutex
	metrics map[string]*metrics.Metric
}

// NewReporter connects and creates a Reporter. Attach it with
// metrics.WithReporter or Metrics.AddReporter.
func NewReporter(config ReporterConfig) (*Reporter, error) {
	if config.Log == nil {
		config.Log = slog.Default()
	}
	if config.Connect == nil {
		config.Connect = ConnectDefault()
	}
	if config.SubjectPrefix == "" {
		config.SubjectPrefix = defaultSubjectPrefix
	}

	nc, closeConn, err := config.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	return &Reporter{
		log:       config.Log.With(slog.String("reporter", "nats")),
		nc:        nc,
		closeConn: closeConn,
		prefix:    config.SubjectPrefix,
		metrics:   map[string]*metrics.Metric{},
	}, nil
}

func (r *Reporter) Init(ms []*metrics.Metric) {
	for _, m := range ms {
		r.MetricChange(m)
	}
}

func (r *Reporter) MetricChange(m *metrics.Metric) {
	r.mu.Lock()
	r.metrics[m.Name()] = m
	r.mu.Unlock()
	r.publishEvent("added", m.Name())
}

func (r *Reporter) MetricRemoval(m *metrics.Metric) {
	r.mu.Lock()
	delete(r.metrics, m.Name())
	r.mu.Unlock()
	r.publishEvent("removed", m.Name())
}

func (r *Reporter) Close() {
	if err := r.nc.Flush(); err != nil && !errors.Is(err, natsgo.ErrConnectionClosed) {
		r.log.Error("flush on close failed", slog.Any("error", err))
	}
	r.closeConn()
}

// Publish reads every tracked metric and publishes one snapshot message.
func (r *Reporter) Publish() error {
	r.mu.Lock()
	snapshot := Snapshot{
		SnapshotID: gonanoid.Must(8),
		TsMs:       time.Now().UnixMilli(),
		Values:     make(map[string]float64, len(r.metrics)),
	}
	tracked := make([]*metrics.Metric, 0, len(r.metrics))
	for _, m := range r.metrics {
		tracked = append(tracked, m)
	}
	r.mu.Unlock()

	for _, m := range tracked {
		snapshot.Values[m.Name()] = m.Value()
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	if err := r.nc.Publish(r.prefix+".snapshot", data); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return r.nc.Flush()
}

// publishEvent is fire-and-forget: reporter callbacks cannot fail the
// registry mutation that triggered them.
func (r *Reporter) publishEvent(event, metric string) {
	data, err := json.Marshal(MetricEvent{
		Event:  event,
		Metric: metric,
		TsMs:   time.Now().UnixMilli(),
	})
	if err != nil {
		r.log.Error("marshal metric event", slog.Any("error", err))
		return
	}
	if err := r.nc.Publish(r.prefix+".events", data); err != nil {
		r.log.Error("publish metric event",
			slog.String("event", event),
			slog.String("metric", metric),
			slog.Any("error", err),
		)
	}
}

var _ metrics.Reporter = (*Reporter)(nil)
