// Package cohort turns dated records into survival observations and groups
// them by the year they started.
package cohort

import (
	"fmt"
	"math"
	"time"

	"github.com/erikbern/conversion/internal/survival"
)

// Year is the default unit every duration in this package is expressed in.
const Year = time.Duration(365.25 * 24 * float64(time.Hour))

// CalendarYear is a 365 day year, the unit the loan and tweet cohorts are
// measured in.
const CalendarYear = 365 * 24 * time.Hour

// YearsBetween returns b - a in years.
func YearsBetween(a, b time.Time) float64 {
	return YearsIn(a, b, Year)
}

// YearsIn returns b - a in units of year.
func YearsIn(a, b time.Time, year time.Duration) float64 {
	return float64(b.Sub(a)) / float64(year)
}

// Record is one subject of a cohort.
//
//   - Event: the event happened at End.
//   - Forever: the subject can never experience the event and stays at risk.
//   - otherwise the subject is censored at End, or at "now" if End is zero.
type Record struct {
	Key     string
	Start   time.Time
	End     time.Time
	Event   bool
	Forever bool
}

// Duration returns the observed duration of the record in years.
func (r Record) Duration(now time.Time) float64 {
	return r.DurationIn(now, Year)
}

// DurationIn returns the observed duration of the record in units of year.
func (r Record) DurationIn(now time.Time, year time.Duration) float64 {
	switch {
	case r.Event:
		return YearsIn(r.Start, r.End, year)
	case r.Forever:
		return math.Inf(1)
	case !r.End.IsZero():
		return YearsIn(r.Start, r.End, year)
	}
	return math.Max(0, YearsIn(r.Start, now, year))
}

// Observations converts records into survival observations measured in years.
func Observations(records []Record, now time.Time) []survival.Observation {
	return ObservationsIn(records, now, Year)
}

// ObservationsIn is Observations with durations measured in units of year.
func ObservationsIn(records []Record, now time.Time, year time.Duration) []survival.Observation {
	out := make([]survival.Observation, len(records))
	for i, r := range records {
		out[i] = survival.Observation{
			Duration: r.DurationIn(now, year),
			Observed: r.Event,
		}
	}
	return out
}

// Window is an inclusive range of start years.
type Window struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (w Window) Years() []int {
	var years []int
	for y := w.From; y <= w.To; y++ {
		years = append(years, y)
	}
	return years
}

func (w Window) Contains(year int) bool {
	return year >= w.From && year <= w.To
}

func (w Window) Valid() error {
	if w.From > w.To {
		return fmt.Errorf("cohort: window starts (%d) after it ends (%d)", w.From, w.To)
	}
	return nil
}

type Group struct {
	Label   string
	Records []Record
}

// ByYear yields one group per year of the window, including years without
// records. Records that started outside the window are dropped.
func ByYear(records []Record, window Window) []Group {
	years := window.Years()
	groups := make([]Group, len(years))
	for i, y := range years {
		groups[i].Label = fmt.Sprint(y)
	}
	for _, r := range records {
		year := r.Start.Year()
		if !window.Contains(year) {
			continue
		}
		idx := year - window.From
		groups[idx].Records = append(groups[idx].Records, r)
	}
	return groups
}

// SplitYears groups records into the first and second half of the window,
// the second half starts at the middle year.
func SplitYears(records []Record, window Window) []Group {
	years := window.Years()
	if len(years) < 2 {
		return ByYear(records, window)
	}
	split := years[len(years)/2]
	groups := []Group{
		{Label: fmt.Sprintf("%d-%d", window.From, split-1)},
		{Label: fmt.Sprintf("%d-%d", split, window.To)},
	}
	for _, r := range records {
		year := r.Start.Year()
		if !window.Contains(year) {
			continue
		}
		if year < split {
			groups[0].Records = append(groups[0].Records, r)
		} else {
			groups[1].Records = append(groups[1].Records, r)
		}
	}
	return groups
}

type YearRate struct {
	Year int
	survival.Interval
}

// ExitRateByYear is the fraction of records started in each year of the
// window that had their event, with a credible interval.
func ExitRateByYear(records []Record, window Window, lower, upper float64) []YearRate {
	years := window.Years()
	n := make([]int, len(years))
	k := make([]int, len(years))
	for _, r := range records {
		year := r.Start.Year()
		if !window.Contains(year) {
			continue
		}
		n[year-window.From]++
		if r.Event {
			k[year-window.From]++
		}
	}

	out := make([]YearRate, len(years))
	for i, y := range years {
		out[i] = YearRate{
			Year:     y,
			Interval: survival.BetaInterval(k[i], n[i], lower, upper),
		}
	}
	return out
}

type YearDuration struct {
	Year   int
	Events int
	P5     float64
	Median float64
	P95    float64
}

// TimeToExitByYear summarizes, per start year, how long records that had their
// event took to get there.
func TimeToExitByYear(records []Record, window Window) []YearDuration {
	years := window.Years()
	durations := make([][]float64, len(years))
	for _, r := range records {
		year := r.Start.Year()
		if !r.Event || !window.Contains(year) {
			continue
		}
		durations[year-window.From] = append(
			durations[year-window.From],
			YearsBetween(r.Start, r.End),
		)
	}

	out := make([]YearDuration, len(years))
	for i, y := range years {
		q := survival.Quantiles(durations[i], 0.05, 0.5, 0.95)
		out[i] = YearDuration{
			Year:   y,
			Events: len(durations[i]),
			P5:     q[0],
			Median: q[1],
			P95:    q[2],
		}
	}
	return out
}
