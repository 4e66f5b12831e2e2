package cohort

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func fixtureRecords() []Record {
	return []Record{
		{Key: "a", Start: date(2008, 3, 1), End: date(2010, 3, 1), Event: true},
		{Key: "b", Start: date(2008, 6, 1)},
		{Key: "c", Start: date(2009, 1, 1), End: date(2009, 7, 2), Event: true},
		{Key: "d", Start: date(2011, 5, 1)},
		{Key: "e", Start: date(2012, 5, 1), End: date(2016, 5, 1), Event: true},
		{Key: "f", Start: date(2015, 5, 1)},
		{Key: "old", Start: date(2004, 1, 1), End: date(2005, 1, 1), Event: true},
	}
}

var window = Window{From: 2008, To: 2015}

func TestObservations(t *testing.T) {
	now := date(2017, 1, 1)
	records := []Record{
		{Start: date(2010, 1, 1), End: date(2012, 1, 1), Event: true},
		{Start: date(2010, 1, 1), End: date(2011, 1, 1)},
		{Start: date(2010, 1, 1)},
		{Start: date(2010, 1, 1), End: date(2013, 1, 1), Forever: true},
		{Start: date(2018, 1, 1)},
	}

	obs := Observations(records, now)
	require.Len(t, obs, len(records))

	require.True(t, obs[0].Observed)
	require.InDelta(t, 2, obs[0].Duration, 0.01)

	require.False(t, obs[1].Observed)
	require.InDelta(t, 1, obs[1].Duration, 0.01)

	require.False(t, obs[2].Observed)
	require.InDelta(t, 7, obs[2].Duration, 0.01)

	require.False(t, obs[3].Observed)
	require.True(t, math.IsInf(obs[3].Duration, 1))

	// started after "now"
	require.Equal(t, 0.0, obs[4].Duration)
}

func TestYearsBetween(t *testing.T) {
	require.InDelta(t, 4, YearsBetween(date(2000, 1, 1), date(2004, 1, 1)), 1e-9)
	require.InDelta(t, -1, YearsBetween(date(2001, 1, 1), date(2000, 1, 1)), 0.01)

	// 2001 has 365 days
	require.Equal(t, 1.0, YearsIn(date(2001, 1, 1), date(2002, 1, 1), CalendarYear))
	require.Less(t, YearsBetween(date(2001, 1, 1), date(2002, 1, 1)), 1.0)
}

func TestObservationsIn(t *testing.T) {
	records := []Record{
		{Start: date(2001, 1, 1), End: date(2003, 1, 1), Event: true},
		{Start: date(2001, 1, 1)},
	}
	obs := ObservationsIn(records, date(2002, 1, 1), CalendarYear)
	require.Equal(t, 2.0, obs[0].Duration)
	require.Equal(t, 1.0, obs[1].Duration)
}

func TestByYear(t *testing.T) {
	groups := ByYear(fixtureRecords(), window)
	require.Len(t, groups, 8)
	require.Equal(t, "2008", groups[0].Label)
	require.Equal(t, "2015", groups[7].Label)
	require.Len(t, groups[0].Records, 2)
	require.Len(t, groups[1].Records, 1)
	require.Len(t, groups[2].Records, 0)
	require.Len(t, groups[7].Records, 1)

	total := 0
	for _, g := range groups {
		total += len(g.Records)
	}
	require.Equal(t, 6, total)
}

func TestSplitYears(t *testing.T) {
	groups := SplitYears(fixtureRecords(), window)
	require.Len(t, groups, 2)
	require.Equal(t, "2008-2011", groups[0].Label)
	require.Equal(t, "2012-2015", groups[1].Label)
	require.Len(t, groups[0].Records, 4)
	require.Len(t, groups[1].Records, 2)

	single := SplitYears(fixtureRecords(), Window{From: 2008, To: 2008})
	require.Len(t, single, 1)
	require.Equal(t, "2008", single[0].Label)
}

func TestExitRateByYear(t *testing.T) {
	rates := ExitRateByYear(fixtureRecords(), window, 0.05, 0.95)
	require.Len(t, rates, 8)

	require.Equal(t, 2008, rates[0].Year)
	require.Equal(t, 2, rates[0].N)
	require.Equal(t, 1, rates[0].K)
	require.InDelta(t, 0.5, rates[0].Rate, 1e-12)
	require.Less(t, rates[0].Lower, 0.5)
	require.Greater(t, rates[0].Upper, 0.5)

	require.Equal(t, 0, rates[2].N)
	require.True(t, math.IsNaN(rates[2].Rate))
}

func TestTimeToExitByYear(t *testing.T) {
	durations := TimeToExitByYear(fixtureRecords(), window)
	require.Len(t, durations, 8)

	require.Equal(t, 1, durations[0].Events)
	require.InDelta(t, 2, durations[0].Median, 0.01)
	require.Equal(t, durations[0].P5, durations[0].Median)
	require.Equal(t, durations[0].P95, durations[0].Median)

	require.Equal(t, 0, durations[3].Events)
	require.True(t, math.IsNaN(durations[3].Median))
}

func TestWindow(t *testing.T) {
	require.Equal(t, []int{2008, 2009, 2010}, Window{From: 2008, To: 2010}.Years())
	require.NoError(t, window.Valid())
	require.Error(t, Window{From: 2010, To: 2008}.Valid())
}
