package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/erikbern/conversion/internal/analysis"
	"github.com/erikbern/conversion/internal/store"
	"github.com/erikbern/conversion/internal/survival"
)

// number is a float that encodes NaN and infinities as null.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

type jsonPoint struct {
	Time      number `json:"time"`
	Survival  number `json:"survival"`
	Lower     number `json:"lower"`
	Upper     number `json:"upper"`
	Incidence number `json:"incidence"`
	AtRisk    int    `json:"at_risk"`
	Events    int    `json:"events"`
	Censored  int    `json:"censored"`
}

type jsonSeries struct {
	Label  string      `json:"label"`
	Points []jsonPoint `json:"points"`
}

type jsonInterval struct {
	K     int    `json:"k"`
	N     int    `json:"n"`
	Rate  number `json:"rate"`
	Lower number `json:"lower"`
	Upper number `json:"upper"`
}

type jsonYearRate struct {
	Year int `json:"year"`
	jsonInterval
}

type jsonYearDuration struct {
	Year   int    `json:"year"`
	Events int    `json:"events"`
	P5     number `json:"p5"`
	Median number `json:"median"`
	P95    number `json:"p95"`
}

type jsonRatePoint struct {
	Time number `json:"time"`
	jsonInterval
}

type jsonEmpirical struct {
	Label  string          `json:"label"`
	Total  int             `json:"total"`
	Points []jsonRatePoint `json:"points"`
}

type jsonStartups struct {
	From             int                `json:"from"`
	To               int                `json:"to"`
	Total            int                `json:"total"`
	Horizon          number             `json:"horizon_years"`
	ExitRates        []jsonYearRate     `json:"exit_rates"`
	TimeToExit       []jsonYearDuration `json:"time_to_exit"`
	Empirical        []jsonEmpirical    `json:"empirical"`
	EmpiricalSplit   []jsonEmpirical    `json:"empirical_split"`
	KaplanMeier      []jsonSeries       `json:"kaplan_meier"`
	KaplanMeierSplit []jsonSeries       `json:"kaplan_meier_split"`
}

type jsonCurve struct {
	Name   string       `json:"name"`
	Alpha  number       `json:"alpha"`
	Total  int          `json:"total"`
	Median *number      `json:"median"`
	Series []jsonSeries `json:"series"`
}

type jsonRun struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Dataset   string    `json:"dataset"`
	CreatedAt time.Time `json:"created_at"`
	Alpha     number    `json:"alpha"`
	Total     int       `json:"total"`
}

func toJsonInterval(i survival.Interval) jsonInterval {
	return jsonInterval{K: i.K, N: i.N, Rate: number(i.Rate), Lower: number(i.Lower), Upper: number(i.Upper)}
}

func toJsonSeries(label string, points []survival.Point) jsonSeries {
	out := jsonSeries{Label: label, Points: make([]jsonPoint, len(points))}
	for i, p := range points {
		out.Points[i] = jsonPoint{
			Time:      number(p.Time),
			Survival:  number(p.Survival),
			Lower:     number(p.Lower),
			Upper:     number(p.Upper),
			Incidence: number(1 - p.Survival),
			AtRisk:    p.AtRisk,
			Events:    p.Events,
			Censored:  p.Censored,
		}
	}
	return out
}

func toJsonEmpirical(in []analysis.EmpiricalSeries) []jsonEmpirical {
	out := make([]jsonEmpirical, len(in))
	for i, s := range in {
		out[i] = jsonEmpirical{Label: s.Label, Total: s.Total, Points: make([]jsonRatePoint, len(s.Points))}
		for j, p := range s.Points {
			out[i].Points[j] = jsonRatePoint{Time: number(p.Time), jsonInterval: toJsonInterval(p.Interval)}
		}
	}
	return out
}

func toJsonKM(in []analysis.Series) []jsonSeries {
	out := make([]jsonSeries, len(in))
	for i, s := range in {
		out[i] = toJsonSeries(s.Label, s.Curve.Points)
	}
	return out
}

func toJson(v any) (any, error) {
	switch v := v.(type) {
	case analysis.StartupReport:
		out := jsonStartups{
			From:             v.Window.From,
			To:               v.Window.To,
			Total:            v.Total,
			Horizon:          number(v.Horizon),
			Empirical:        toJsonEmpirical(v.Empirical),
			EmpiricalSplit:   toJsonEmpirical(v.EmpiricalSplit),
			KaplanMeier:      toJsonKM(v.KaplanMeier),
			KaplanMeierSplit: toJsonKM(v.KaplanMeierSplit),
		}
		for _, r := range v.ExitRates {
			out.ExitRates = append(out.ExitRates, jsonYearRate{Year: r.Year, jsonInterval: toJsonInterval(r.Interval)})
		}
		for _, d := range v.TimeToExit {
			out.TimeToExit = append(out.TimeToExit, jsonYearDuration{
				Year:   d.Year,
				Events: d.Events,
				P5:     number(d.P5),
				Median: number(d.Median),
				P95:    number(d.P95),
			})
		}
		return out, nil
	case analysis.CurveReport:
		out := jsonCurve{
			Name:   v.Name,
			Alpha:  number(v.Curve.Alpha),
			Total:  v.Curve.Total,
			Series: []jsonSeries{toJsonSeries(v.Name, v.Curve.Points)},
		}
		if v.HasMedian {
			median := number(v.Median)
			out.Median = &median
		}
		return out, nil
	case store.RunCurves:
		out := jsonCurve{
			Name:  v.Run.Name,
			Alpha: number(v.Run.Alpha),
			Total: v.Run.Total,
		}
		for _, s := range v.Series {
			out.Series = append(out.Series, toJsonSeries(s.Label, s.Points))
		}
		return out, nil
	case []store.Run:
		out := make([]jsonRun, len(v))
		for i, r := range v {
			out[i] = jsonRun{
				ID:        r.ID,
				Name:      r.Name,
				Dataset:   r.Dataset,
				CreatedAt: r.CreatedAt.UTC(),
				Alpha:     number(r.Alpha),
				Total:     r.Total,
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("report: cannot render %T", v)
}

func renderJSON(w io.Writer, v any) error {
	out, err := toJson(v)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
