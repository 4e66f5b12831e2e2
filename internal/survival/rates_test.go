package survival

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBetaInterval(t *testing.T) {
	testCases := []struct {
		k, n         int
		rate         float64
		lower, upper float64
	}{
		// Beta(1, 1) is uniform
		{k: 0, n: 0, rate: math.NaN(), lower: 0.05, upper: 0.95},
		// Beta(2, 1) has quantile sqrt(p)
		{k: 1, n: 1, rate: 1, lower: 0.22360679774997896, upper: 0.9746794344808963},
		// Beta(1, 3) has quantile 1 - (1-p)^(1/3)
		{k: 0, n: 2, rate: 0, lower: 0.016952427508441503, upper: 0.6315968501359612},
	}

	for _, test := range testCases {
		interval := BetaInterval(test.k, test.n, 0.05, 0.95)
		require.Equal(t, test.k, interval.K)
		require.Equal(t, test.n, interval.N)
		if math.IsNaN(test.rate) {
			require.True(t, math.IsNaN(interval.Rate))
		} else {
			require.InDelta(t, test.rate, interval.Rate, 1e-12)
		}
		require.InDelta(t, test.lower, interval.Lower, 1e-6)
		require.InDelta(t, test.upper, interval.Upper, 1e-6)
	}

	symmetric := BetaInterval(5, 10, 0.05, 0.95)
	require.InDelta(t, 1, symmetric.Lower+symmetric.Upper, 1e-6)
	require.Less(t, symmetric.Lower, symmetric.Rate)
	require.Greater(t, symmetric.Upper, symmetric.Rate)
}

func TestEmpiricalCurve(t *testing.T) {
	obs := []Observation{
		{Duration: 0.5, Observed: true},
		{Duration: 2.5, Observed: true},
		{Duration: 1.5, Observed: true},
		{Duration: 3, Observed: false},
		{Duration: 4, Observed: false},
		// past the earliest censoring, the denominator is unknown
		{Duration: 3.5, Observed: true},
	}

	points := EmpiricalCurve(obs, 0.05, 0.95)
	require.Len(t, points, 4)

	times := []float64{0, 0.5, 1.5, 2.5}
	for i, p := range points {
		require.Equal(t, times[i], p.Time)
		require.Equal(t, i, p.K)
		require.Equal(t, len(obs), p.N)
		require.InDelta(t, float64(i)/float64(len(obs)), p.Rate, 1e-12)
		require.LessOrEqual(t, p.Lower, p.Upper)
	}

	uncensored := EmpiricalCurve([]Observation{
		{Duration: 2, Observed: true},
		{Duration: 1, Observed: true},
		{Duration: math.Inf(1), Observed: true},
	}, 0.05, 0.95)
	require.Len(t, uncensored, 3)
	require.Equal(t, 1.0, uncensored[1].Time)
	require.Equal(t, 2.0, uncensored[2].Time)
}

func TestQuantiles(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3}
	q := Quantiles(values, 0, 0.05, 0.5, 0.95, 1)
	require.InDelta(t, 1, q[0], 1e-12)
	require.InDelta(t, 1.2, q[1], 1e-12)
	require.InDelta(t, 3, q[2], 1e-12)
	require.InDelta(t, 4.8, q[3], 1e-12)
	require.InDelta(t, 5, q[4], 1e-12)

	even := Quantiles([]float64{1, 2, 3, 4}, 0.5)
	require.InDelta(t, 2.5, even[0], 1e-12)

	// input is left untouched
	require.Equal(t, []float64{5, 1, 4, 2, 3}, values)

	empty := Quantiles(nil, 0.5)
	require.True(t, math.IsNaN(empty[0]))

	undefined := Quantiles(values, math.NaN(), 0.5)
	require.True(t, math.IsNaN(undefined[0]))
	require.InDelta(t, 3, undefined[1], 1e-12)
}
