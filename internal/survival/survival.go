// Package survival implements the Kaplan-Meier product-limit estimator and the
// small set of rate statistics computed next to it.
package survival

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrEmpty            = errors.New("survival: no observations")
	ErrLengthMismatch   = errors.New("survival: durations and observed flags differ in length")
	ErrNegativeDuration = errors.New("survival: negative or NaN duration")
)

// DefaultAlpha gives 95% confidence bounds.
const DefaultAlpha = 0.05

// Observation is the time from a subject's start until its event, or until it
// was last seen if Observed is false (censored). A Duration of +Inf never
// experiences the event and stays at risk at every time.
type Observation struct {
	Duration float64
	Observed bool
}

// Point is the value of the estimate on [Time, next point's Time).
type Point struct {
	Time     float64
	Survival float64
	Lower    float64
	Upper    float64
	AtRisk   int
	Events   int
	Censored int
}

type Curve struct {
	Points []Point
	Alpha  float64
	Total  int
}

type options struct {
	alpha float64
}

type Option func(*options)

// WithAlpha sets the confidence level of the bounds to 1-alpha.
func WithAlpha(alpha float64) Option {
	return func(o *options) {
		o.alpha = alpha
	}
}

// FromSlices zips lifelines style T, E inputs into observations.
func FromSlices(durations []float64, observed []bool) ([]Observation, error) {
	if len(durations) != len(observed) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(durations), len(observed))
	}
	out := make([]Observation, len(durations))
	for i := range durations {
		out[i] = Observation{Duration: durations[i], Observed: observed[i]}
	}
	return out, nil
}

// KaplanMeier fits the product-limit estimator with exponential Greenwood
// (log(-log)) confidence bounds.
func KaplanMeier(obs []Observation, opts ...Option) (Curve, error) {
	o := options{alpha: DefaultAlpha}
	for _, opt := range opts {
		opt(&o)
	}
	if o.alpha <= 0 || o.alpha >= 1 {
		return Curve{}, fmt.Errorf("survival: alpha must be in (0, 1), got %v", o.alpha)
	}
	if len(obs) == 0 {
		return Curve{}, ErrEmpty
	}
	for _, ob := range obs {
		if math.IsNaN(ob.Duration) || ob.Duration < 0 {
			return Curve{}, fmt.Errorf("%w: %v", ErrNegativeDuration, ob.Duration)
		}
	}

	sorted := slices.Clone(obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Duration < sorted[j].Duration
	})

	z := distuv.UnitNormal.Quantile(1 - o.alpha/2)
	curve := Curve{Alpha: o.alpha, Total: len(sorted)}

	if math.IsInf(sorted[0].Duration, 1) || sorted[0].Duration > 0 {
		curve.Points = append(curve.Points, Point{
			Time:     0,
			Survival: 1,
			Lower:    1,
			Upper:    1,
			AtRisk:   len(sorted),
		})
	}

	survival := 1.0
	greenwood := 0.0
	lower, upper := 1.0, 1.0
	atRisk := len(sorted)

	for i := 0; i < len(sorted) && !math.IsInf(sorted[i].Duration, 1); {
		t := sorted[i].Duration
		events, censored := 0, 0
		for j := i; j < len(sorted) && sorted[j].Duration == t; j++ {
			if sorted[j].Observed {
				events++
			} else {
				censored++
			}
		}

		if events > 0 {
			n := float64(atRisk)
			d := float64(events)
			survival *= 1 - d/n
			if events == atRisk {
				greenwood = math.Inf(1)
			} else {
				greenwood += d / (n * (n - d))
			}
			lower, upper = expGreenwood(survival, greenwood, z, upper)
		}

		curve.Points = append(curve.Points, Point{
			Time:     t,
			Survival: survival,
			Lower:    lower,
			Upper:    upper,
			AtRisk:   atRisk,
			Events:   events,
			Censored: censored,
		})

		atRisk -= events + censored
		i += events + censored
	}

	return curve, nil
}

// expGreenwood computes the bounds on log(-log(S)), the variance of which
// follows from Greenwood's sum. Once the estimate hits zero the upper bound
// can no longer be computed and keeps its previous value.
func expGreenwood(survival, greenwood, z, prevUpper float64) (float64, float64) {
	if survival >= 1 {
		return 1, 1
	}
	if survival <= 0 || math.IsInf(greenwood, 1) {
		return 0, prevUpper
	}
	logS := math.Log(survival)
	width := z * math.Sqrt(greenwood) / -logS
	lower := math.Pow(survival, math.Exp(width))
	upper := math.Pow(survival, math.Exp(-width))
	return lower, upper
}

// At returns the step function's value at time t.
func (c Curve) At(t float64) Point {
	if len(c.Points) == 0 {
		return Point{}
	}
	idx := sort.Search(len(c.Points), func(i int) bool {
		return c.Points[i].Time > t
	})
	if idx == 0 {
		return c.Points[0]
	}
	return c.Points[idx-1]
}

// Truncate keeps the points strictly before horizon, a horizon <= 0 keeps
// everything.
func (c Curve) Truncate(horizon float64) Curve {
	if horizon <= 0 {
		return c
	}
	idx := sort.Search(len(c.Points), func(i int) bool {
		return c.Points[i].Time >= horizon
	})
	c.Points = c.Points[:idx]
	return c
}

// Median returns the first time at which the estimate drops to 0.5 or below.
func (c Curve) Median() (float64, bool) {
	for _, p := range c.Points {
		if p.Survival <= 0.5 {
			return p.Time, true
		}
	}
	return 0, false
}

// IncidencePoint is 1 - S(t), the fraction that experienced the event by Time.
type IncidencePoint struct {
	Time      float64
	Incidence float64
	Lower     float64
	Upper     float64
}

func (c Curve) Incidence() []IncidencePoint {
	out := make([]IncidencePoint, len(c.Points))
	for i, p := range c.Points {
		out[i] = IncidencePoint{
			Time:      p.Time,
			Incidence: 1 - p.Survival,
			Lower:     1 - p.Upper,
			Upper:     1 - p.Lower,
		}
	}
	return out
}
