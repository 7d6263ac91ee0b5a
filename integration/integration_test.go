package integration

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	promadapter "github.com/marabangath/tehuti/adapters/prometheus"
	"github.com/marabangath/tehuti/core/metrics"
	"github.com/marabangath/tehuti/core/metrics/stats"
)

// TestEndToEnd drives the whole pipeline: hierarchical sensors feed windowed
// stats, a quota trips without losing data, and the Prometheus reporter
// exposes every value at scrape time.
func TestEndToEnd(t *testing.T) {
	var (
		promReg = prometheus.NewRegistry()
		mock    = clock.NewMock()
		m       = metrics.New(
			metrics.WithClock(mock),
			metrics.WithReporter(promadapter.NewReporter(promadapter.ReporterConfig{
				Registerer: promReg,
				Namespace:  "app",
			})),
		)
	)
	defer m.Close()

	all, err := m.Sensor("http")
	require.NoError(t, err)
	_, err = all.Add("http.qps", stats.NewOccurrenceRate())
	require.NoError(t, err)

	quota, err := metrics.NewConfig(metrics.WithQuota(metrics.UpperBound(100)))
	require.NoError(t, err)
	_, err = all.Add("http.total", stats.NewTotal(), metrics.WithMetricConfig(quota))
	require.NoError(t, err)

	login, err := m.Sensor("http.login", metrics.WithParents(all))
	require.NoError(t, err)
	loginCount, err := login.Add("http.login.count", stats.NewSampledCount())
	require.NoError(t, err)

	t.Run("hierarchy rolls up", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			require.NoError(t, login.Record())
		}
		mock.Add(2 * time.Second)

		require.InDelta(t, 10.0, loginCount.Value(), 1e-6)
		qps, err := m.GetMetric("http.qps")
		require.NoError(t, err)
		require.InDelta(t, 5.0, qps.Value(), 1e-6)
	})

	t.Run("prometheus scrape", func(t *testing.T) {
		mfs, err := promReg.Gather()
		require.NoError(t, err)
		values := map[string]float64{}
		for _, mf := range mfs {
			values[mf.GetName()] = mf.GetMetric()[0].GetGauge().GetValue()
		}
		assert.InDelta(t, 10.0, values["app_http_login_count"], 1e-6)
		assert.InDelta(t, 10.0, values["app_http_total"], 1e-6)
	})

	t.Run("quota trips but keeps the observation", func(t *testing.T) {
		err := login.RecordValue(91) // pushes http.total to 101
		var violation *metrics.QuotaViolationError
		require.ErrorAs(t, err, &violation)
		require.Equal(t, "http.total", violation.Metric)

		total, err := m.GetMetric("http.total")
		require.NoError(t, err)
		require.InDelta(t, 101.0, total.Value(), 1e-6)
	})

	t.Run("windows purge", func(t *testing.T) {
		mock.Add(2 * time.Duration(all.Config().TimeWindowMs()) * time.Millisecond)
		qps, err := m.GetMetric("http.qps")
		require.NoError(t, err)
		require.Zero(t, qps.Value())
	})
}

// TestConcurrentRecording exercises the locking discipline: many writers per
// sensor, hierarchical propagation and readers racing against them.
func TestConcurrentRecording(t *testing.T) {
	m := metrics.New()
	defer m.Close()

	root, err := m.Sensor("work")
	require.NoError(t, err)
	rootCount, err := root.Add("work.count", stats.NewSampledCount())
	require.NoError(t, err)
	rootTotal, err := root.Add("work.total", stats.NewTotal())
	require.NoError(t, err)

	const (
		writers = 8
		perW    = 1000
	)

	sensors := make([]*metrics.Sensor, writers)
	for w := range sensors {
		sensor, err := m.Sensor(fmt.Sprintf("work.w%d", w), metrics.WithParents(root))
		require.NoError(t, err)
		sensors[w] = sensor
	}

	var (
		readers sync.WaitGroup
		writing sync.WaitGroup
		stop    = make(chan struct{})
	)

	// readers race the writers
	for r := 0; r < 2; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
					_ = rootCount.Value()
					_ = rootTotal.Value()
				}
			}
		}()
	}

	for w := 0; w < writers; w++ {
		writing.Add(1)
		go func(sensor *metrics.Sensor) {
			defer writing.Done()
			for i := 0; i < perW; i++ {
				assert.NoError(t, sensor.RecordValue(1))
			}
		}(sensors[w])
	}

	writing.Wait()
	close(stop)
	readers.Wait()

	// writers finish well inside the default 30s window, so every event is
	// still live
	assert.InDelta(t, float64(writers*perW), rootTotal.Value(), 1e-6)
	assert.InDelta(t, float64(writers*perW), rootCount.Value(), 1e-6)
}
