package survival

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestKaplanMeier(t *testing.T) {
	obs, err := FromSlices(
		[]float64{2, 1, 5, 2, 4, 3},
		[]bool{false, true, true, true, false, true},
	)
	require.NoError(t, err)

	curve, err := KaplanMeier(obs)
	require.NoError(t, err)
	require.Equal(t, 6, curve.Total)
	require.Equal(t, DefaultAlpha, curve.Alpha)

	expected := []Point{
		{Time: 0, Survival: 1, Lower: 1, Upper: 1, AtRisk: 6},
		{Time: 1, Survival: 5.0 / 6, Lower: 0.27312284992835584, Upper: 0.9747124266908935, AtRisk: 6, Events: 1},
		{Time: 2, Survival: 4.0 / 6, Lower: 0.19461663680623478, Upper: 0.9044341643225164, AtRisk: 5, Events: 1, Censored: 1},
		{Time: 3, Survival: 4.0 / 9, Lower: 0.06618675314641241, Upper: 0.7849083671479586, AtRisk: 3, Events: 1},
		{Time: 4, Survival: 4.0 / 9, Lower: 0.06618675314641241, Upper: 0.7849083671479586, AtRisk: 2, Censored: 1},
		{Time: 5, Survival: 0, Lower: 0, Upper: 0.7849083671479586, AtRisk: 1, Events: 1},
	}
	if diff := cmp.Diff(expected, curve.Points, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("unexpected curve (-want +got):\n%s", diff)
	}
}

// productLimit is the textbook one-observation-at-a-time evaluation of the
// estimator, valid when no two observations share a duration.
func productLimit(obs []Observation) map[float64]float64 {
	sorted := append([]Observation(nil), obs...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Duration < sorted[j].Duration
	})
	out := map[float64]float64{}
	n := float64(len(sorted))
	p := 1.0
	for _, o := range sorted {
		if o.Observed {
			p *= (n - 1) / n
		}
		n--
		out[o.Duration] = p
	}
	return out
}

func TestKaplanMeierMatchesProductLimit(t *testing.T) {
	obs := []Observation{
		{Duration: 0.4, Observed: true},
		{Duration: 1.7, Observed: false},
		{Duration: 0.9, Observed: true},
		{Duration: 3.2, Observed: true},
		{Duration: 2.5, Observed: false},
		{Duration: 1.1, Observed: true},
		{Duration: 4.8, Observed: false},
		{Duration: 2.2, Observed: true},
	}

	curve, err := KaplanMeier(obs)
	require.NoError(t, err)

	expected := productLimit(obs)
	require.Len(t, curve.Points, len(obs)+1)
	for _, p := range curve.Points[1:] {
		require.InDelta(t, expected[p.Time], p.Survival, 1e-12, "time %v", p.Time)
	}
}

func TestKaplanMeierInvariants(t *testing.T) {
	var obs []Observation
	for i := 0; i < 200; i++ {
		obs = append(obs, Observation{
			Duration: float64((i*37)%23) / 4,
			Observed: i%3 != 0,
		})
	}

	curve, err := KaplanMeier(obs, WithAlpha(0.1))
	require.NoError(t, err)
	require.Equal(t, 0.1, curve.Alpha)

	for i, p := range curve.Points {
		require.GreaterOrEqual(t, p.Survival, 0.0)
		require.LessOrEqual(t, p.Survival, 1.0)
		require.LessOrEqual(t, p.Lower, p.Survival+1e-12)
		require.GreaterOrEqual(t, p.Upper, p.Survival-1e-12)
		if i == 0 {
			require.Equal(t, 0.0, p.Time)
			continue
		}
		prev := curve.Points[i-1]
		require.Greater(t, p.Time, prev.Time)
		require.LessOrEqual(t, p.Survival, prev.Survival)
		require.Equal(t, prev.AtRisk-prev.Events-prev.Censored, p.AtRisk)
	}
}

func TestKaplanMeierInfiniteDurations(t *testing.T) {
	obs := []Observation{
		{Duration: 1, Observed: true},
		{Duration: 2, Observed: true},
		{Duration: math.Inf(1), Observed: false},
		{Duration: math.Inf(1), Observed: true},
	}
	curve, err := KaplanMeier(obs)
	require.NoError(t, err)

	require.Len(t, curve.Points, 3)
	require.InDelta(t, 0.75, curve.Points[1].Survival, 1e-12)
	require.InDelta(t, 0.5, curve.Points[2].Survival, 1e-12)
	require.Equal(t, 3, curve.Points[2].AtRisk)

	onlyForever, err := KaplanMeier([]Observation{{Duration: math.Inf(1)}})
	require.NoError(t, err)
	require.Len(t, onlyForever.Points, 1)
	require.Equal(t, 1.0, onlyForever.Points[0].Survival)
}

func TestKaplanMeierEventsAtZero(t *testing.T) {
	curve, err := KaplanMeier([]Observation{
		{Duration: 0, Observed: true},
		{Duration: 1, Observed: false},
	})
	require.NoError(t, err)
	require.Len(t, curve.Points, 2)
	require.Equal(t, 0.0, curve.Points[0].Time)
	require.InDelta(t, 0.5, curve.Points[0].Survival, 1e-12)
	require.Equal(t, 1, curve.Points[0].Events)
}

func TestKaplanMeierErrors(t *testing.T) {
	_, err := KaplanMeier(nil)
	require.True(t, errors.Is(err, ErrEmpty))

	_, err = KaplanMeier([]Observation{{Duration: -1, Observed: true}})
	require.True(t, errors.Is(err, ErrNegativeDuration))

	_, err = KaplanMeier([]Observation{{Duration: math.NaN()}})
	require.True(t, errors.Is(err, ErrNegativeDuration))

	_, err = KaplanMeier([]Observation{{Duration: 1}}, WithAlpha(1))
	require.Error(t, err)

	_, err = FromSlices([]float64{1, 2}, []bool{true})
	require.True(t, errors.Is(err, ErrLengthMismatch))
}

func TestCurveHelpers(t *testing.T) {
	obs, err := FromSlices(
		[]float64{2, 1, 5, 2, 4, 3},
		[]bool{false, true, true, true, false, true},
	)
	require.NoError(t, err)
	curve, err := KaplanMeier(obs)
	require.NoError(t, err)

	require.Equal(t, 0.0, curve.At(-1).Time)
	require.Equal(t, 0.0, curve.At(0.5).Time)
	require.Equal(t, 2.0, curve.At(2).Time)
	require.Equal(t, 4.0, curve.At(4.9).Time)
	require.Equal(t, 5.0, curve.At(100).Time)

	truncated := curve.Truncate(3)
	require.Len(t, truncated.Points, 3)
	require.Equal(t, 2.0, truncated.Points[len(truncated.Points)-1].Time)
	require.Len(t, curve.Truncate(0).Points, len(curve.Points))

	median, ok := curve.Median()
	require.True(t, ok)
	require.Equal(t, 3.0, median)

	incidence := curve.Incidence()
	require.Len(t, incidence, len(curve.Points))
	for i, p := range incidence {
		require.InDelta(t, 1-curve.Points[i].Survival, p.Incidence, 1e-12)
		require.InDelta(t, 1-curve.Points[i].Upper, p.Lower, 1e-12)
		require.InDelta(t, 1-curve.Points[i].Lower, p.Upper, 1e-12)
		require.LessOrEqual(t, p.Lower, p.Incidence+1e-12)
	}

	_, ok = Curve{Points: []Point{{Survival: 1}}}.Median()
	require.False(t, ok)
}
