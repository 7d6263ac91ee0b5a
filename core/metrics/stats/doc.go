// Package stats implements the measurable statistics recorded by sensors:
// windowed averages, extrema, counts, running sums, rates and bucketed
// percentiles.
//
// All windowed stats share one accumulator model: a fixed ring of samples
// rotated by event count or wall-clock time. The current sample absorbs
// observations until its window is complete, then rotation moves on and
// overwrites the oldest sample. On read, samples older than the whole window
// span are purged back to the stat's identity value, so stale data never
// leaks into a measurement — a stat that has seen no events for a full
// window span measures its identity (0 for counts and rates, -Inf for Max,
// +Inf for Min), never NaN.
//
// Stats are not synchronized; the owning sensor's lock covers both the write
// path and reads through the metric.
package stats
