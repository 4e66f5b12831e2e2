package loans

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/erikbern/conversion/internal/assert"
	"github.com/erikbern/conversion/internal/telemetry"
)

const (
	report_reduce_row = "reduce.row"
	report_reduce     = "reduce"
)

const monthLayout = "200601"

// servicing file columns
const (
	colLoanID          = 0
	colMonth           = 1
	colZeroBalanceCode = 8
	colZeroBalanceDate = 9
)

// zero balance codes that mean the loan defaulted (third party sale,
// short sale or charge off, REO disposition)
var defaultCodes = []string{"03", "06", "09"}

// Reducer folds monthly servicing rows (pipe separated) into one Loan per
// loan id. Multiple servicing files can be fed to the same Reducer.
type Reducer struct {
	tel   telemetry.API
	loans map[string]*Loan
}

func NewReducer(tel telemetry.API) *Reducer {
	assert.NotNil(tel)
	return &Reducer{
		tel:   telemetry.NewScopedAPI("loans", tel),
		loans: map[string]*Loan{},
	}
}

func parseMonth(field string) (time.Time, error) {
	if field == "" {
		return time.Time{}, nil
	}
	return time.Parse(monthLayout, field)
}

// ReduceInto reads every row of r. Rows that cannot be parsed are reported and
// skipped, only read errors are returned.
func (r *Reducer) ReduceInto(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	skipped := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		err := r.reduceRow(strings.Split(line, "|"))
		if err != nil {
			skipped++
			r.tel.ReportWarning(report_reduce_row, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		r.tel.ReportBroken(report_reduce, err)
		return fmt.Errorf("read servicing rows: %w", err)
	}
	r.tel.ReportCount(report_reduce_row+"-skipped", int64(skipped))
	return nil
}

func (r *Reducer) reduceRow(fields []string) error {
	if len(fields) <= colZeroBalanceDate {
		return fmt.Errorf("expected at least %d fields, got %d", colZeroBalanceDate+1, len(fields))
	}
	id := fields[colLoanID]
	if id == "" {
		return fmt.Errorf("missing loan id")
	}
	if fields[colMonth] == "" {
		return fmt.Errorf("missing reporting month")
	}
	month, err := parseMonth(fields[colMonth])
	if err != nil {
		return fmt.Errorf("reporting month %q: %w", fields[colMonth], err)
	}

	loan, ok := r.loans[id]
	if !ok {
		loan = &Loan{ID: id, Created: month}
		r.loans[id] = loan
	}
	if month.Before(loan.Created) {
		loan.Created = month
	}

	code := fields[colZeroBalanceCode]
	if code == "" {
		return nil
	}
	ended, err := parseMonth(fields[colZeroBalanceDate])
	if err != nil {
		return fmt.Errorf("zero balance date %q: %w", fields[colZeroBalanceDate], err)
	}
	loan.Ended = ended
	if slices.Contains(defaultCodes, code) {
		loan.Defaulted = ended
	}
	return nil
}

// Loans returns the reduced loans sorted by id.
func (r *Reducer) Loans() []Loan {
	out := make([]Loan, 0, len(r.loans))
	for _, l := range r.loans {
		out = append(out, *l)
	}
	slices.SortFunc(out, func(a, b Loan) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out
}
