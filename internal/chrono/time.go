package chrono

import (
	"fmt"
	"time"
)

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time in UTC.
	Now() time.Time
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

// NewStandardTime is the constructor of StandardTime.
func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (s StandardTime) Now() time.Time {
	return time.Now().UTC()
}

// FixedTime always returns the same instant, it pins "now" for censoring so
// that reruns over the same data agree.
type FixedTime struct {
	t time.Time
}

func NewFixedTime(t time.Time) FixedTime {
	return FixedTime{t: t.UTC()}
}

func (f FixedTime) Now() time.Time {
	return f.t
}

// FromFlag returns the clock described by value: the system clock when it is
// empty, a fixed RFC3339 time or YYYY-MM-DD date otherwise.
func FromFlag(value string) (TimeAPI, error) {
	if value == "" {
		return NewStandardTime(), nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		t, err := time.Parse(layout, value)
		if err == nil {
			return NewFixedTime(t), nil
		}
	}
	return nil, fmt.Errorf("invalid time %q, expected RFC3339 or YYYY-MM-DD", value)
}
