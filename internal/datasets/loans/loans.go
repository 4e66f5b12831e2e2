// Package loans reads mortgage loan histories: when each loan was originated,
// when it defaulted and when it was otherwise terminated.
package loans

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/erikbern/conversion/internal/cohort"
	"github.com/erikbern/conversion/internal/survival"
	"github.com/erikbern/conversion/lib/textutil"
)

const dateLayout = "2006-01-02"

type Loan struct {
	ID        string
	Created   time.Time
	Defaulted time.Time
	Ended     time.Time
}

func parseDate(field string) (time.Time, error) {
	if field == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, field)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// Parse reads `created\tdefaulted\tended` rows, empty fields mean the loan
// has not (yet) defaulted or ended.
func Parse(r io.Reader) ([]Loan, error) {
	var out []Loan
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := textutil.SplitFields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: expected 3 fields, got %d", lineNo, len(fields))
		}

		var dates [3]time.Time
		for i, f := range fields {
			parsed, err := parseDate(f)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			dates[i] = parsed
		}
		if dates[0].IsZero() {
			return nil, fmt.Errorf("line %d: missing origination date", lineNo)
		}

		out = append(out, Loan{
			ID:        strconv.Itoa(lineNo),
			Created:   dates[0],
			Defaulted: dates[1],
			Ended:     dates[2],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteTSV writes loans in the format read by Parse.
func WriteTSV(w io.Writer, loans []Loan) error {
	buffered := bufio.NewWriter(w)
	for _, l := range loans {
		_, err := fmt.Fprintf(
			buffered,
			"%s\t%s\t%s\n",
			formatDate(l.Created),
			formatDate(l.Defaulted),
			formatDate(l.Ended),
		)
		if err != nil {
			return err
		}
	}
	return buffered.Flush()
}

// TerminationPolicy decides what a loan that ended without defaulting means.
type TerminationPolicy int

const (
	// TerminationNeverDefaults keeps paid off loans at risk forever, a loan
	// that was paid off can never default.
	TerminationNeverDefaults TerminationPolicy = iota
	// TerminationCensor censors paid off loans when they ended.
	TerminationCensor
)

// Records turns loans into cohort records, the returned time is the latest
// origination date which stands in for "now" for loans still running.
func Records(loans []Loan, policy TerminationPolicy) ([]cohort.Record, time.Time) {
	var now time.Time
	for _, l := range loans {
		if l.Created.After(now) {
			now = l.Created
		}
	}

	out := make([]cohort.Record, len(loans))
	for i, l := range loans {
		record := cohort.Record{Key: l.ID, Start: l.Created}
		switch {
		case !l.Defaulted.IsZero():
			record.End = l.Defaulted
			record.Event = true
		case !l.Ended.IsZero() && policy == TerminationCensor:
			record.End = l.Ended
		case !l.Ended.IsZero():
			record.Forever = true
		}
		out[i] = record
	}
	return out, now
}

// Observations converts loan records into observations measured in 365 day
// years.
func Observations(records []cohort.Record, now time.Time) []survival.Observation {
	return cohort.ObservationsIn(records, now, cohort.CalendarYear)
}
