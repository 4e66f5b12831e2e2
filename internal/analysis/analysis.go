// Package analysis runs the survival pipelines over loaded cohorts and
// collects their results into reports.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/erikbern/conversion/internal/cohort"
	"github.com/erikbern/conversion/internal/survival"
	"github.com/erikbern/conversion/internal/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("conversion.internal.analysis")
var meter = otel.Meter("conversion.internal.analysis")

var observationsLoaded, _ = meter.Int64Counter(
	"observations_loaded",
	metric.WithDescription("observations handed to the estimator"),
)

const (
	report_startups_group = "startups.group"
	report_startups_total = "startups.total"
	report_single_total   = "single.total"
)

// Credible holds the beta quantiles used for rate intervals.
type Credible struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

var DefaultCredible = Credible{Lower: 0.05, Upper: 0.95}

type Series struct {
	Label string
	Curve survival.Curve
}

type EmpiricalSeries struct {
	Label  string
	Total  int
	Points []survival.RatePoint
}

type Analyzer struct {
	tel telemetry.API
}

func NewAnalyzer(tel telemetry.API) Analyzer {
	return Analyzer{tel: telemetry.NewScopedAPI("analysis", tel)}
}

// Families selects which startup curve groupings to compute.
type Families int

const (
	FamiliesBoth Families = iota
	// FamiliesYear computes one curve per founding year.
	FamiliesYear
	// FamiliesPeriod computes one curve per half of the window.
	FamiliesPeriod
)

type StartupOptions struct {
	Families Families
	Window   cohort.Window
	Now      time.Time
	Alpha    float64
	Credible Credible
	// Horizon truncates every curve, in years. 0 keeps whole curves.
	Horizon float64
}

type StartupReport struct {
	Window  cohort.Window
	Total   int
	Horizon float64

	ExitRates  []cohort.YearRate
	TimeToExit []cohort.YearDuration

	Empirical      []EmpiricalSeries
	EmpiricalSplit []EmpiricalSeries

	KaplanMeier      []Series
	KaplanMeierSplit []Series
}

// Startups computes every startup cohort statistic: exit rates and time to
// exit per founding year, then both the naive cohort curves and the
// Kaplan-Meier curves for each year and for the two halves of the window.
// opts.Families limits the curves to one of the two groupings.
func (a Analyzer) Startups(ctx context.Context, records []cohort.Record, opts StartupOptions) (StartupReport, error) {
	ctx, span := tracer.Start(ctx, "Startups")
	defer span.End()

	if err := opts.Window.Valid(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid window")
		return StartupReport{}, err
	}
	if opts.Alpha == 0 {
		opts.Alpha = survival.DefaultAlpha
	}
	if opts.Credible == (Credible{}) {
		opts.Credible = DefaultCredible
	}

	report := StartupReport{
		Window:     opts.Window,
		Horizon:    opts.Horizon,
		ExitRates:  cohort.ExitRateByYear(records, opts.Window, opts.Credible.Lower, opts.Credible.Upper),
		TimeToExit: cohort.TimeToExitByYear(records, opts.Window),
	}
	for _, r := range report.ExitRates {
		report.Total += r.N
	}

	var err error
	if opts.Families != FamiliesPeriod {
		report.Empirical, report.KaplanMeier, err = a.groups(ctx, cohort.ByYear(records, opts.Window), opts)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "per year curves failed")
			return StartupReport{}, err
		}
	}
	if opts.Families != FamiliesYear {
		report.EmpiricalSplit, report.KaplanMeierSplit, err = a.groups(ctx, cohort.SplitYears(records, opts.Window), opts)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "split curves failed")
			return StartupReport{}, err
		}
	}

	observationsLoaded.Add(ctx, int64(report.Total), metric.WithAttributes(
		attribute.String("dataset", "startups"),
	))
	a.tel.ReportCount(report_startups_total, int64(report.Total))
	span.SetAttributes(
		attribute.Int("records", report.Total),
		attribute.Int("from", opts.Window.From),
		attribute.Int("to", opts.Window.To),
	)
	return report, nil
}

func (a Analyzer) groups(ctx context.Context, groups []cohort.Group, opts StartupOptions) ([]EmpiricalSeries, []Series, error) {
	var empirical []EmpiricalSeries
	var km []Series
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if len(g.Records) == 0 {
			a.tel.ReportWarning(report_startups_group, "empty group", g.Label)
			continue
		}

		obs := cohort.Observations(g.Records, opts.Now)
		empirical = append(empirical, EmpiricalSeries{
			Label:  g.Label,
			Total:  len(obs),
			Points: truncateRates(survival.EmpiricalCurve(obs, opts.Credible.Lower, opts.Credible.Upper), opts.Horizon),
		})

		curve, err := survival.KaplanMeier(obs, survival.WithAlpha(opts.Alpha))
		if err != nil {
			return nil, nil, fmt.Errorf("group %s: %w", g.Label, err)
		}
		km = append(km, Series{Label: g.Label, Curve: curve.Truncate(opts.Horizon)})
	}
	return empirical, km, nil
}

func truncateRates(points []survival.RatePoint, horizon float64) []survival.RatePoint {
	if horizon <= 0 {
		return points
	}
	for i, p := range points {
		if p.Time >= horizon {
			return points[:i]
		}
	}
	return points
}

type SingleOptions struct {
	Alpha   float64
	Horizon float64
}

type CurveReport struct {
	Name      string
	Curve     survival.Curve
	Median    float64
	HasMedian bool
}

// Single estimates one curve over a flat set of observations (loans, tweets,
// generic events).
func (a Analyzer) Single(ctx context.Context, name string, obs []survival.Observation, opts SingleOptions) (CurveReport, error) {
	ctx, span := tracer.Start(ctx, "Single")
	defer span.End()
	span.SetAttributes(
		attribute.String("name", name),
		attribute.Int("observations", len(obs)),
	)

	if opts.Alpha == 0 {
		opts.Alpha = survival.DefaultAlpha
	}
	curve, err := survival.KaplanMeier(obs, survival.WithAlpha(opts.Alpha))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "estimate failed")
		return CurveReport{}, fmt.Errorf("%s: %w", name, err)
	}

	report := CurveReport{Name: name, Curve: curve.Truncate(opts.Horizon)}
	report.Median, report.HasMedian = curve.Median()

	observationsLoaded.Add(ctx, int64(len(obs)), metric.WithAttributes(
		attribute.String("dataset", name),
	))
	a.tel.ReportCount(report_single_total, int64(len(obs)))
	return report, nil
}
