package stats

import (
	"fmt"

	"github.com/marabangath/tehuti/core/metrics"
)

// Percentile names one target quantile of a Percentiles stat.
type Percentile struct {
	name     string
	quantile float64
}

// NewPercentile creates a percentile target. quantile is in [0, 100].
func NewPercentile(name string, quantile float64) Percentile {
	return Percentile{name: name, quantile: quantile}
}

// Name returns the metric name the percentile registers under.
func (p Percentile) Name() string { return p.name }

// Quantile returns the target quantile in [0, 100].
func (p Percentile) Quantile() float64 { return p.quantile }

// Percentiles is a compound stat estimating quantiles from a bucketed,
// sample-windowed histogram. Every sample holds its own histogram; rotation
// and purging follow the shared windowing rules, and queries combine the
// live samples' buckets before scanning for the target quantile.
type Percentiles struct {
	sampledStat

	min, max    float64
	scheme      binScheme
	percentiles []Percentile
}

// NewPercentiles creates a histogram of buckets cells over [min, max] with
// the given bucket sizing, exposing one sub-metric per target percentile.
func NewPercentiles(buckets int, min, max float64, sizing BucketSizing, percentiles ...Percentile) (*Percentiles, error) {
	if buckets <= 0 {
		return nil, fmt.Errorf("%w: bucket count must be positive, got %d", metrics.ErrInvalidConfig, buckets)
	}
	if min >= max {
		return nil, fmt.Errorf("%w: histogram range requires min < max, got [%v, %v]", metrics.ErrInvalidConfig, min, max)
	}

	var scheme binScheme
	switch sizing {
	case BucketSizingConstant:
		scheme = newConstantBinScheme(buckets, min, max)
	case BucketSizingLinear:
		scheme = newLinearBinScheme(buckets, min, max)
	default:
		return nil, fmt.Errorf("%w: unknown bucket sizing %d", metrics.ErrInvalidConfig, sizing)
	}

	for _, pct := range percentiles {
		if pct.quantile < 0 || pct.quantile > 100 {
			return nil, fmt.Errorf("%w: quantile for %q must be in [0, 100], got %v", metrics.ErrInvalidConfig, pct.name, pct.quantile)
		}
	}

	p := &Percentiles{
		min:         min,
		max:         max,
		scheme:      scheme,
		percentiles: append([]Percentile(nil), percentiles...),
	}
	p.initial = 0
	p.makeSample = func(nowMs int64) *sample {
		return newHistogramSample(buckets, nowMs)
	}
	p.update = func(s *sample, _ *metrics.MetricConfig, value float64, _ int64) {
		s.hist[scheme.toBin(value)]++
	}
	// Measuring the compound stat itself yields the median.
	p.combine = func(samples []*sample, _ *metrics.MetricConfig, _ int64) float64 {
		return p.quantileValue(samples, 0.5)
	}

	return p, nil
}

// Stats lists one named measurable per target percentile, all sharing this
// stat's histogram samples.
func (p *Percentiles) Stats() []metrics.NamedMeasurable {
	out := make([]metrics.NamedMeasurable, 0, len(p.percentiles))
	for _, pct := range p.percentiles {
		quantile := pct.quantile / 100
		out = append(out, metrics.NamedMeasurable{
			Name: pct.name,
			Measurable: metrics.MeasurableFunc(func(c *metrics.MetricConfig, nowMs int64) float64 {
				p.purgeObsoleteSamples(c, nowMs)
				return p.quantileValue(p.samples, quantile)
			}),
		})
	}
	return out
}

// quantileValue combines the samples' histograms bucket by bucket and
// returns the midpoint of the first bucket at which the cumulative count
// reaches quantile × total. An empty histogram yields min.
func (p *Percentiles) quantileValue(samples []*sample, quantile float64) float64 {
	combined := make([]float64, p.scheme.buckets())
	var total float64
	for _, s := range samples {
		for b, n := range s.hist {
			combined[b] += n
			total += n
		}
	}
	if total == 0 {
		return p.min
	}

	need := quantile * total
	var cum float64
	for b, n := range combined {
		cum += n
		if cum >= need {
			return p.scheme.fromBin(b)
		}
	}
	return p.scheme.fromBin(len(combined) - 1)
}

var _ metrics.CompoundStat = (*Percentiles)(nil)
