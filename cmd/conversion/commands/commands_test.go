package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	require.NoError(t, err, "conversion %v", args)
	return out.String()
}

func TestKaplanMeierAndRuns(t *testing.T) {
	dir := t.TempDir()

	config := filepath.Join(dir, "conversion.json5")
	contents := fmt.Sprintf(`{
  // results stay in the test directory
  database: { file: %q },
}`, filepath.Join(dir, "results.db"))
	require.NoError(t, os.WriteFile(config, []byte(contents), 0600))

	data := filepath.Join(dir, "data.tsv")
	require.NoError(t, os.WriteFile(data, []byte(
		"2010-01-01\t2011-01-01\n"+
			"2010-01-01\t2012-01-01\n"+
			"2010-01-01\t\n"+
			"2010-01-01\t2013-01-01\n",
	), 0600))

	out := execute(t,
		"km", "--data", data, "--save",
		"--config", config, "--now", "2014-01-01", "--format", "csv",
	)
	require.Contains(t, out, "Series,Years,At risk,Events,Censored,Incidence,Lower,Upper")
	require.Contains(t, out, "km,0.00,4,0,0,0.0")
	require.Contains(t, out, "median time to event: 2.00 years")

	out = execute(t, "runs", "list", "--config", config, "--format", "json")
	var runs []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Total int    `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	require.Equal(t, "km", runs[0].Name)
	require.Equal(t, 4, runs[0].Total)

	out = execute(t, "runs", "show", runs[0].ID, "--config", config, "--format", "csv")
	require.Contains(t, out, "km,1.00,4,1,0,25.0")
}

func TestLoansReduce(t *testing.T) {
	dir := t.TempDir()
	servicing := filepath.Join(dir, "servicing.txt")
	require.NoError(t, os.WriteFile(servicing, []byte(
		"L1|201001||||||||\n"+
			"L1|201002||||||||\n"+
			"L1|201003|||||||03|201003\n",
	), 0600))

	out := filepath.Join(dir, "loans.tsv")
	execute(t, "loans", "reduce", "--out", out, "--config", filepath.Join(dir, "missing.json5"), servicing)

	contents, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "2010-01-01\t2010-03-01\t2010-03-01\n", string(contents))
}
