// Loadtest hammers a metrics registry from concurrent workers and reports
// what the stats observe, both on stdout and as a Prometheus endpoint.
//
// Run with: go run ./cmd/loadtest
// Prometheus metrics available at: http://localhost:2121/metrics
package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	promadapter "github.com/marabangath/tehuti/adapters/prometheus"
	"github.com/marabangath/tehuti/core/metrics"
	"github.com/marabangath/tehuti/core/metrics/stats"
)

// === Config ===

var (
	logLevel  = slog.LevelInfo
	workers   = getEnvInt("WORKERS", runtime.NumCPU())
	duration  = getEnvInt("DURATION_S", 10)
	promPort  = getEnvInt("PROM_PORT", 2121)
	quotaQPS  = getEnvInt("QUOTA_QPS", 0)
	reportSec = getEnvInt("REPORT_S", 2)
)

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, fmt.Sprintf("%d", fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	runID := gonanoid.Must(6)
	log = log.With(slog.String("run", runID))

	promReg := prometheus.NewRegistry()
	m := metrics.New(
		metrics.WithLogger(log),
		metrics.WithReporter(promadapter.NewReporter(promadapter.ReporterConfig{
			Log:        log,
			Registerer: promReg,
			Namespace:  "tehuti_loadtest",
		})),
	)
	defer m.Close()

	// === sensors ===

	root, err := m.Sensor("requests")
	if err != nil {
		log.Error("create root sensor", slog.Any("error", err))
		os.Exit(1)
	}
	mustAdd(log, root, "requests.avg", stats.NewAvg())
	mustAdd(log, root, "requests.max", stats.NewMax())
	mustAdd(log, root, "requests.rate", stats.NewRate(time.Second))
	mustAdd(log, root, "requests.count", stats.NewSampledCount())

	var qpsOpts []metrics.AddOption
	if quotaQPS > 0 {
		cfg, err := metrics.NewConfig(metrics.WithQuota(metrics.UpperBound(float64(quotaQPS))))
		if err != nil {
			log.Error("bad quota config", slog.Any("error", err))
			os.Exit(1)
		}
		qpsOpts = append(qpsOpts, metrics.WithMetricConfig(cfg))
	}
	if _, err := root.Add("requests.qps", stats.NewOccurrenceRate(), qpsOpts...); err != nil {
		log.Error("add metric", slog.String("metric", "requests.qps"), slog.Any("error", err))
		os.Exit(1)
	}

	latencies, err := stats.NewPercentiles(1000, 0, 500, stats.BucketSizingLinear,
		stats.NewPercentile("requests.p50", 50),
		stats.NewPercentile("requests.p95", 95),
		stats.NewPercentile("requests.p99", 99),
	)
	if err != nil {
		log.Error("create percentiles", slog.Any("error", err))
		os.Exit(1)
	}
	if _, err := root.AddCompound(latencies); err != nil {
		log.Error("add percentiles", slog.Any("error", err))
		os.Exit(1)
	}

	// === prometheus endpoint ===

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	go func() {
		addr := fmt.Sprintf(":%d", promPort)
		log.Info("prometheus endpoint up", slog.String("addr", addr+"/metrics"))
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("prometheus endpoint failed", slog.Any("error", err))
		}
	}()

	// === workers ===

	var (
		wg         sync.WaitGroup
		deadline   = time.Now().Add(time.Duration(duration) * time.Second)
		violations = make([]int, workers)
	)
	for w := 0; w < workers; w++ {
		sensor, err := m.Sensor(fmt.Sprintf("requests.worker%d", w), metrics.WithParents(root))
		if err != nil {
			log.Error("create worker sensor", slog.Any("error", err))
			os.Exit(1)
		}
		mustAdd(log, sensor, fmt.Sprintf("requests.worker%d.count", w), stats.NewSampledCount())

		wg.Add(1)
		go func(w int, sensor *metrics.Sensor) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(w)))
			for time.Now().Before(deadline) {
				// synthetic latency, long tail
				latency := rng.Float64() * 50
				if rng.Intn(100) == 0 {
					latency *= 8
				}
				if err := sensor.RecordValue(latency); err != nil {
					violations[w]++
				}
			}
		}(w, sensor)
	}

	// === reporting ===

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	ticker := time.NewTicker(time.Duration(reportSec) * time.Second)
	defer ticker.Stop()
	for running := true; running; {
		select {
		case <-ticker.C:
			report(log, m)
		case <-done:
			running = false
		}
	}

	report(log, m)
	totalViolations := 0
	for _, v := range violations {
		totalViolations += v
	}
	log.Info("done",
		slog.Int("workers", workers),
		slog.Int("quota_violations", totalViolations),
	)
}

func mustAdd(log *slog.Logger, s *metrics.Sensor, name string, stat metrics.Stat) {
	if _, err := s.Add(name, stat); err != nil {
		log.Error("add metric", slog.String("metric", name), slog.Any("error", err))
		os.Exit(1)
	}
}

func report(log *slog.Logger, m *metrics.Metrics) {
	for _, name := range []string{"requests.qps", "requests.avg", "requests.p95", "requests.p99"} {
		metric, err := m.GetMetric(name)
		if err != nil {
			continue
		}
		log.Info("reading", slog.String("metric", name), slog.Float64("value", metric.Value()))
	}
}
