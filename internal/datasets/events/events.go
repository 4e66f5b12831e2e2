// Package events reads the simplest cohort shape: one `start\tend` row per
// subject, an empty end meaning the subject has not had its event yet.
package events

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/erikbern/conversion/internal/cohort"
	"github.com/erikbern/conversion/lib/textutil"
)

const dateLayout = "2006-01-02"

func Parse(r io.Reader) ([]cohort.Record, error) {
	var out []cohort.Record
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := textutil.SplitFields(line)
		if len(fields) < 1 || len(fields) > 2 {
			return nil, fmt.Errorf("line %d: expected 1 or 2 fields, got %d", lineNo, len(fields))
		}

		start, err := time.Parse(dateLayout, fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: start: %w", lineNo, err)
		}
		record := cohort.Record{Key: strconv.Itoa(lineNo), Start: start}

		if len(fields) == 2 && fields[1] != "" {
			end, err := time.Parse(dateLayout, fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: end: %w", lineNo, err)
			}
			if end.Before(start) {
				return nil, fmt.Errorf("line %d: ends before it starts", lineNo)
			}
			record.End = end
			record.Event = true
		}
		out = append(out, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
