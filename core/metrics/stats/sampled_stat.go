package stats

import "github.com/marabangath/tehuti/core/metrics"

// sampledStat is the shared rotation engine composed into every windowed
// stat. Concrete stats plug in their identity value, a per-observation
// update and a cross-sample combine.
//
// Rotation advances on the single-sample window (time or event count);
// purging on read discards samples older than the whole window span
// (samples × time window), so a sample survives rotation until it is a full
// ring older than now.
type sampledStat struct {
	initial float64
	samples []*sample
	current int

	update  func(s *sample, c *metrics.MetricConfig, value float64, nowMs int64)
	combine func(samples []*sample, c *metrics.MetricConfig, nowMs int64) float64

	// makeSample overrides plain scalar sample allocation, e.g. to attach a
	// histogram. Optional.
	makeSample func(nowMs int64) *sample
}

// WindowedStat is implemented by every stat built on the shared sample ring.
// Rate composes over one to derive its elapsed-window denominator.
type WindowedStat interface {
	metrics.Stat

	base() *sampledStat
}

func (s *sampledStat) base() *sampledStat { return s }

// Record selects the current sample, rotating first if its window is
// complete, applies the stat-specific update and counts the event.
func (s *sampledStat) Record(c *metrics.MetricConfig, value float64, nowMs int64) {
	if len(s.samples) == 0 {
		s.allocate(c, nowMs)
	}
	sm := s.samples[s.current]
	if sm.isComplete(nowMs, c) {
		s.advance(nowMs)
		sm = s.samples[s.current]
	}
	s.update(sm, c, value, nowMs)
	sm.eventCount++
}

// Measure purges expired samples, then combines the survivors.
func (s *sampledStat) Measure(c *metrics.MetricConfig, nowMs int64) float64 {
	s.purgeObsoleteSamples(c, nowMs)
	return s.combine(s.samples, c, nowMs)
}

// allocate builds the full sample ring on first record. The ring keeps the
// size of the config it was allocated under; later config changes do not
// resize it.
func (s *sampledStat) allocate(c *metrics.MetricConfig, nowMs int64) {
	n := c.Samples()
	s.samples = make([]*sample, 0, n)
	for i := 0; i < n; i++ {
		s.samples = append(s.samples, s.newSample(nowMs))
	}
	s.current = 0
}

func (s *sampledStat) newSample(nowMs int64) *sample {
	if s.makeSample != nil {
		return s.makeSample(nowMs)
	}
	return newSample(s.initial, nowMs)
}

// advance rotates to the next sample, discarding whatever it held.
func (s *sampledStat) advance(nowMs int64) {
	s.current = (s.current + 1) % len(s.samples)
	s.samples[s.current].reset(nowMs)
}

// purgeObsoleteSamples resets every sample whose window started at least
// samples × timeWindow ago. A fully idle stat ends up with every sample at
// identity.
func (s *sampledStat) purgeObsoleteSamples(c *metrics.MetricConfig, nowMs int64) {
	expireAgeMs := int64(c.Samples()) * c.TimeWindowMs()
	for _, sm := range s.samples {
		if nowMs-sm.windowStartMs >= expireAgeMs {
			sm.reset(nowMs)
		}
	}
}

// oldestWindowStartMs returns the start of the oldest sample's window, or
// nowMs when nothing has been recorded.
func (s *sampledStat) oldestWindowStartMs(nowMs int64) int64 {
	oldest := nowMs
	for _, sm := range s.samples {
		if sm.windowStartMs < oldest {
			oldest = sm.windowStartMs
		}
	}
	return oldest
}
