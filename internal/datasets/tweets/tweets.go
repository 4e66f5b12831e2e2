// Package tweets reads tweet snapshots: when a tweet was posted, when it was
// looked at and how many retweets it had by then.
package tweets

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/erikbern/conversion/internal/cohort"
	"github.com/erikbern/conversion/internal/survival"
	"github.com/erikbern/conversion/lib/textutil"
)

type Tweet struct {
	CreatedAt  time.Time
	ObservedAt time.Time
	Retweets   int
}

func parseUnix(field string) (time.Time, error) {
	seconds, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return time.Time{}, err
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", field)
	}
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC(), nil
}

// Parse reads `created_at\tobserved_at\tretweet_count` rows, timestamps are
// unix seconds.
func Parse(r io.Reader) ([]Tweet, error) {
	var out []Tweet
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

		createdAt, err := parseUnix(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: created_at: %w", lineNo, err)
		}
		observedAt, err := parseUnix(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: observed_at: %w", lineNo, err)
		}
		count, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: retweet_count: %w", lineNo, err)
		}
		if observedAt.Before(createdAt) {
			return nil, fmt.Errorf("line %d: observed before it was posted", lineNo)
		}

		out = append(out, Tweet{
			CreatedAt:  createdAt,
			ObservedAt: observedAt,
			Retweets:   int(count),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Observations measures every tweet at its age in 365 day years when observed,
// a tweet that had been retweeted by then counts as an event.
func Observations(tweets []Tweet) []survival.Observation {
	out := make([]survival.Observation, len(tweets))
	for i, t := range tweets {
		out[i] = survival.Observation{
			Duration: cohort.YearsIn(t.CreatedAt, t.ObservedAt, cohort.CalendarYear),
			Observed: t.Retweets > 0,
		}
	}
	return out
}
