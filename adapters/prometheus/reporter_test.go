package prometheus

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marabangath/tehuti/core/metrics"
	"github.com/marabangath/tehuti/core/metrics/stats"
)

func TestReporter(t *testing.T) {
	var (
		reg      = prometheus.NewRegistry()
		mock     = clock.NewMock()
		reporter = NewReporter(ReporterConfig{Registerer: reg, Namespace: "tehuti"})
		m        = metrics.New(metrics.WithClock(mock), metrics.WithReporter(reporter))
	)

	s, err := m.Sensor("requests")
	require.NoError(t, err)
	_, err = s.Add("requests.total", stats.NewTotal())
	require.NoError(t, err)
	_, err = s.Add("requests.rate", stats.NewRate(time.Second))
	require.NoError(t, err)

	require.NoError(t, s.RecordValue(2))
	require.NoError(t, s.RecordValue(4))
	mock.Add(2 * time.Second)

	gathered := func() map[string]float64 {
		mfs, err := reg.Gather()
		require.NoError(t, err)
		out := map[string]float64{}
		for _, mf := range mfs {
			for _, pm := range mf.GetMetric() {
				out[mf.GetName()] = pm.GetGauge().GetValue()
			}
		}
		return out
	}

	values := gathered()
	assert.InDelta(t, 6.0, values["tehuti_requests_total"], 1e-6)
	assert.InDelta(t, 3.0, values["tehuti_requests_rate"], 1e-6, "6 over 2s")

	t.Run("scrape follows the live value", func(t *testing.T) {
		require.NoError(t, s.RecordValue(10))
		assert.InDelta(t, 16.0, gathered()["tehuti_requests_total"], 1e-6)
	})

	t.Run("close unregisters", func(t *testing.T) {
		m.Close()
		mfs, err := reg.Gather()
		require.NoError(t, err)
		assert.Empty(t, mfs)
	})
}

func TestReporterInitWithExistingMetrics(t *testing.T) {
	var (
		reg = prometheus.NewRegistry()
		m   = metrics.New(metrics.WithClock(clock.NewMock()))
	)

	s, err := m.Sensor("jobs")
	require.NoError(t, err)
	_, err = s.Add("jobs.count", stats.NewSampledCount())
	require.NoError(t, err)

	m.AddReporter(NewReporter(ReporterConfig{Registerer: reg}))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 1)
	assert.Equal(t, "jobs_count", mfs[0].GetName())
}

func TestReporterDuplicateRegistration(t *testing.T) {
	var (
		reg      = prometheus.NewRegistry()
		reporter = NewReporter(ReporterConfig{Registerer: reg})
		m        = metrics.New(metrics.WithReporter(reporter))
	)

	// two registries can share one Prometheus registerer; a colliding gauge
	// is logged, not fatal
	other := metrics.New(metrics.WithReporter(reporter))

	s1, err := m.Sensor("a")
	require.NoError(t, err)
	_, err = s1.Add("shared.name", stats.NewTotal())
	require.NoError(t, err)

	s2, err := other.Sensor("a")
	require.NoError(t, err)
	_, err = s2.Add("shared.name", stats.NewTotal())
	require.NoError(t, err, "core registration succeeds even when the gauge collides")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 1)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "requests_p99_9", sanitizeName("requests.p99.9"))
	assert.Equal(t, "a_b_c", sanitizeName("a-b c"))
	assert.Equal(t, "already_fine_123", sanitizeName("already_fine_123"))
}
