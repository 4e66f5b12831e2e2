package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromFlag(t *testing.T) {
	clock, err := FromFlag("")
	require.NoError(t, err)
	require.IsType(t, StandardTime{}, clock)
	require.WithinDuration(t, time.Now(), clock.Now(), time.Minute)

	clock, err = FromFlag("2014-05-01")
	require.NoError(t, err)
	require.Equal(t, time.Date(2014, 5, 1, 0, 0, 0, 0, time.UTC), clock.Now())

	clock, err = FromFlag("2014-05-01T12:00:00+02:00")
	require.NoError(t, err)
	require.Equal(t, time.Date(2014, 5, 1, 10, 0, 0, 0, time.UTC), clock.Now())

	_, err = FromFlag("yesterday")
	require.Error(t, err)
}
