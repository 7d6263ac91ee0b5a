package nats

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marabangath/tehuti/core/metrics"
	"github.com/marabangath/tehuti/core/metrics/stats"
)

func TestConnect(t *testing.T) {
	connect := NewTestContainer(t)
	nc, closeConn, err := connect()
	require.NoError(t, err)
	require.NotNil(t, nc)
	t.Cleanup(closeConn)
	require.True(t, nc.IsConnected())
}

func TestReporter(t *testing.T) {
	connect := ReuseConnection(NewTestContainer(t))

	// subscriber side
	nc, closeConn, err := connect()
	require.NoError(t, err)
	t.Cleanup(closeConn)
	events, err := nc.SubscribeSync("test.metrics.events")
	require.NoError(t, err)
	snapshots, err := nc.SubscribeSync("test.metrics.snapshot")
	require.NoError(t, err)

	reporter, err := NewReporter(ReporterConfig{
		Connect:       connect,
		SubjectPrefix: "test.metrics",
	})
	require.NoError(t, err)

	m := metrics.New(metrics.WithReporter(reporter))

	s, err := m.Sensor("requests")
	require.NoError(t, err)
	_, err = s.Add("requests.total", stats.NewTotal())
	require.NoError(t, err)

	t.Run("added event", func(t *testing.T) {
		msg, err := events.NextMsg(5 * time.Second)
		require.NoError(t, err)

		var evt MetricEvent
		require.NoError(t, json.Unmarshal(msg.Data, &evt))
		assert.Equal(t, "added", evt.Event)
		assert.Equal(t, "requests.total", evt.Metric)
		assert.NotZero(t, evt.TsMs)
	})

	t.Run("snapshot", func(t *testing.T) {
		require.NoError(t, s.RecordValue(5))
		require.NoError(t, reporter.Publish())

		msg, err := snapshots.NextMsg(5 * time.Second)
		require.NoError(t, err)

		var snap Snapshot
		require.NoError(t, json.Unmarshal(msg.Data, &snap))
		assert.NotEmpty(t, snap.SnapshotID)
		assert.InDelta(t, 5.0, snap.Values["requests.total"], 1e-6)
	})

	t.Run("removal on close", func(t *testing.T) {
		m.Close()

		msg, err := events.NextMsg(5 * time.Second)
		require.NoError(t, err)

		var evt MetricEvent
		require.NoError(t, json.Unmarshal(msg.Data, &evt))
		assert.Equal(t, "removed", evt.Event)
		assert.Equal(t, "requests.total", evt.Metric)
	})
}
