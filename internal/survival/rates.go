package survival

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"
)

// Interval is an observed rate k/n together with a credible interval.
type Interval struct {
	K     int
	N     int
	Rate  float64
	Lower float64
	Upper float64
}

// BetaInterval returns the `lower` and `upper` quantiles of Beta(k+1, n-k+1),
// the posterior of a binomial rate under a uniform prior.
func BetaInterval(k, n int, lower, upper float64) Interval {
	rate := math.NaN()
	if n > 0 {
		rate = float64(k) / float64(n)
	}
	posterior := distuv.Beta{
		Alpha: float64(k + 1),
		Beta:  float64(n - k + 1),
	}
	return Interval{
		K:     k,
		N:     n,
		Rate:  rate,
		Lower: posterior.Quantile(lower),
		Upper: posterior.Quantile(upper),
	}
}

// RatePoint is a point of an EmpiricalCurve.
type RatePoint struct {
	Time float64
	Interval
}

// EmpiricalCurve is the fraction of the whole cohort that had the event by
// each event time. Only events before the earliest censoring are used, past
// that point the denominator is no longer known.
func EmpiricalCurve(obs []Observation, lower, upper float64) []RatePoint {
	cutoff := math.Inf(1)
	for _, o := range obs {
		if !o.Observed && o.Duration < cutoff {
			cutoff = o.Duration
		}
	}

	var events []float64
	for _, o := range obs {
		if o.Observed && o.Duration < cutoff && !math.IsInf(o.Duration, 1) {
			events = append(events, o.Duration)
		}
	}
	slices.Sort(events)

	n := len(obs)
	out := make([]RatePoint, 0, len(events)+1)
	out = append(out, RatePoint{Time: 0, Interval: BetaInterval(0, n, lower, upper)})
	for i, t := range events {
		out = append(out, RatePoint{Time: t, Interval: BetaInterval(i+1, n, lower, upper)})
	}
	return out
}

// Quantiles computes sample quantiles by linear interpolation between the
// closest ranks (Hyndman & Fan type 7), every result is NaN for an empty sample
// and the result for a NaN probability is NaN.
func Quantiles(values []float64, ps ...float64) []float64 {
	out := make([]float64, len(ps))
	if len(values) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	last := float64(len(sorted) - 1)

	for i, p := range ps {
		if math.IsNaN(p) {
			out[i] = math.NaN()
			continue
		}
		p = math.Max(0, math.Min(1, p))
		h := p * last
		lo := math.Floor(h)
		hi := math.Ceil(h)
		out[i] = sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
	}
	return out
}
