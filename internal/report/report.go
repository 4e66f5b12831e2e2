// Package report renders analysis results and stored runs as text tables,
// markdown, csv or json.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/erikbern/conversion/internal/analysis"
	"github.com/erikbern/conversion/internal/store"
	"github.com/erikbern/conversion/internal/survival"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

var Formats = []Format{FormatTable, FormatMarkdown, FormatCSV, FormatJSON}

func ParseFormat(value string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(value) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", value)
}

type options struct {
	maxRows int
}

type Option func(*options)

// WithMaxRows samples curves down to at most n rows, keeping the first and
// last point. n <= 0 renders every point.
func WithMaxRows(n int) Option {
	return func(o *options) {
		o.maxRows = n
	}
}

// Render writes v in the given format. v is one of analysis.StartupReport,
// analysis.CurveReport, store.RunCurves or []store.Run.
func Render(w io.Writer, format Format, v any, opts ...Option) error {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if format == FormatJSON {
		return renderJSON(w, v)
	}

	r := renderer{w: w, format: format, opts: o}
	switch v := v.(type) {
	case analysis.StartupReport:
		return r.startups(v)
	case analysis.CurveReport:
		return r.curveReport(v)
	case store.RunCurves:
		return r.runCurves(v)
	case []store.Run:
		return r.runs(v)
	}
	return fmt.Errorf("report: cannot render %T", v)
}

type renderer struct {
	w      io.Writer
	format Format
	opts   options
	count  int
}

func (r *renderer) table(title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	if r.format == FormatTable {
		t.SetTitle(title)
	}
	return t
}

func (r *renderer) flush(title string, t table.Writer) error {
	var out string
	switch r.format {
	case FormatTable:
		out = t.Render()
	case FormatMarkdown:
		out = fmt.Sprintf("### %s\n\n%s", title, t.RenderMarkdown())
	case FormatCSV:
		out = fmt.Sprintf("# %s\n%s", title, t.RenderCSV())
	default:
		return fmt.Errorf("report: unknown format %q", r.format)
	}

	if r.count > 0 {
		out = "\n" + out
	}
	r.count++
	_, err := fmt.Fprintln(r.w, out)
	return err
}

func numericColumns(from, to int) []table.ColumnConfig {
	var out []table.ColumnConfig
	for i := from; i <= to; i++ {
		out = append(out, table.ColumnConfig{Number: i, Align: text.AlignRight})
	}
	return out
}

func percent(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.1f", v*100)
}

func years(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

// sample picks at most n evenly spaced indices of a slice of length total,
// always including the first and the last.
func sample(total, n int) []int {
	if n <= 0 || total <= n {
		idx := make([]int, total)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	if n == 1 {
		return []int{total - 1}
	}
	idx := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pos := int(math.Round(float64(i) * float64(total-1) / float64(n-1)))
		if len(idx) > 0 && idx[len(idx)-1] == pos {
			continue
		}
		idx = append(idx, pos)
	}
	return idx
}

func (r *renderer) startups(v analysis.StartupReport) error {
	rates := r.table("exit rate by founding year (%)")
	rates.AppendHeader(table.Row{"Year", "Companies", "Exits", "Rate", "Lower", "Upper"})
	rates.SetColumnConfigs(numericColumns(2, 6))
	for _, row := range v.ExitRates {
		rates.AppendRow(table.Row{row.Year, row.N, row.K, percent(row.Rate), percent(row.Lower), percent(row.Upper)})
	}
	if err := r.flush("exit rate by founding year (%)", rates); err != nil {
		return err
	}

	durations := r.table("time to exit (years)")
	durations.AppendHeader(table.Row{"Year", "Exits", "P5", "Median", "P95"})
	durations.SetColumnConfigs(numericColumns(2, 5))
	for _, row := range v.TimeToExit {
		durations.AppendRow(table.Row{row.Year, row.Events, years(row.P5), years(row.Median), years(row.P95)})
	}
	if err := r.flush("time to exit (years)", durations); err != nil {
		return err
	}

	// a nil family was not computed and gets no table
	if v.Empirical != nil {
		if err := r.empirical("naive cohort exits (%)", v.Empirical); err != nil {
			return err
		}
	}
	if v.EmpiricalSplit != nil {
		if err := r.empirical("naive cohort exits by period (%)", v.EmpiricalSplit); err != nil {
			return err
		}
	}
	if v.KaplanMeier != nil {
		if err := r.series("kaplan-meier exits (%)", kmSeries(v.KaplanMeier)); err != nil {
			return err
		}
	}
	if v.KaplanMeierSplit != nil {
		return r.series("kaplan-meier exits by period (%)", kmSeries(v.KaplanMeierSplit))
	}
	return nil
}

func kmSeries(in []analysis.Series) []store.Series {
	out := make([]store.Series, len(in))
	for i, s := range in {
		out[i] = store.Series{Label: s.Label, Points: s.Curve.Points}
	}
	return out
}

func (r *renderer) empirical(title string, series []analysis.EmpiricalSeries) error {
	t := r.table(title)
	t.AppendHeader(table.Row{"Cohort", "Years", "Exits", "Companies", "Exited", "Lower", "Upper"})
	t.SetColumnConfigs(numericColumns(2, 7))
	for _, s := range series {
		for _, i := range sample(len(s.Points), r.opts.maxRows) {
			p := s.Points[i]
			t.AppendRow(table.Row{s.Label, years(p.Time), p.K, p.N, percent(p.Rate), percent(p.Lower), percent(p.Upper)})
		}
	}
	return r.flush(title, t)
}

func (r *renderer) series(title string, series []store.Series) error {
	t := r.table(title)
	t.AppendHeader(table.Row{"Series", "Years", "At risk", "Events", "Censored", "Incidence", "Lower", "Upper"})
	t.SetColumnConfigs(numericColumns(2, 8))
	for _, s := range series {
		curve := survival.Curve{Points: s.Points}
		incidence := curve.Incidence()
		for _, i := range sample(len(s.Points), r.opts.maxRows) {
			p := s.Points[i]
			inc := incidence[i]
			t.AppendRow(table.Row{
				s.Label, years(p.Time), p.AtRisk, p.Events, p.Censored,
				percent(inc.Incidence), percent(inc.Lower), percent(inc.Upper),
			})
		}
	}
	return r.flush(title, t)
}

func (r *renderer) curveReport(v analysis.CurveReport) error {
	title := fmt.Sprintf("%s: cumulative incidence (%%), %d observations", v.Name, v.Curve.Total)
	err := r.series(title, []store.Series{{Label: v.Name, Points: v.Curve.Points}})
	if err != nil {
		return err
	}

	median := "not reached"
	if v.HasMedian {
		median = years(v.Median) + " years"
	}
	_, err = fmt.Fprintf(r.w, "median time to event: %s\n", median)
	return err
}

func (r *renderer) runCurves(v store.RunCurves) error {
	title := fmt.Sprintf("%s (%s): cumulative incidence (%%), %d observations", v.Run.Name, v.Run.Dataset, v.Run.Total)
	return r.series(title, v.Series)
}

func (r *renderer) runs(v []store.Run) error {
	t := r.table("runs")
	t.AppendHeader(table.Row{"ID", "Name", "Dataset", "Created", "Alpha", "Observations"})
	for _, run := range v {
		t.AppendRow(table.Row{
			run.ID, run.Name, run.Dataset,
			run.CreatedAt.UTC().Format("2006-01-02 15:04"),
			run.Alpha, run.Total,
		})
	}
	return r.flush("runs", t)
}
