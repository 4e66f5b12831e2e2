package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "Seed", expected: "seed"},
		{input: " Series A\t", expected: "seriesa"},
		{input: "Acquired  by\nSomeone", expected: "acquiredbysomeone"},
		{input: "", expected: ""},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, NormalizeName(test.input))
	}
}

func TestSplitFields(t *testing.T) {
	require.Equal(t, []string{"2010-01-01", "", ""}, SplitFields("2010-01-01\t\t\r\n"))
	require.Equal(t, []string{"a", "b"}, SplitFields("a\tb\n"))
	require.Equal(t, []string{""}, SplitFields(""))
}
