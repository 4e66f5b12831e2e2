package configutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Alpha float64 `json:"alpha"`
	Years struct {
		From int `json:"from"`
		To   int `json:"to"`
	} `json:"years"`
	Database struct {
		File string `json:"file"`
	} `json:"database"`
}

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "conversion.json5"), `{
		// the cohort window
		alpha: 0.05,
		years: { from: 2008, to: 2015 },
		database: { file: "results.db" },
	}`)
	writeFile(t, filepath.Join(dir, "conversion.local.json5"), `{ years: { to: 2012 } }`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "conversion.json5"))
	require.NoError(t, err)
	require.Equal(t, 0.05, cfg.Alpha)
	require.Equal(t, 2008, cfg.Years.From)
	require.Equal(t, 2012, cfg.Years.To)
	require.Equal(t, "results.db", cfg.Database.File)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "missing.json5"))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadConfigOr(t *testing.T) {
	var defaults testConfig
	defaults.Alpha = 0.05
	defaults.Years.From = 2008
	defaults.Years.To = 2015

	cfg, err := ReadConfigOr(filepath.Join(t.TempDir(), "missing.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, defaults, cfg)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "conversion.json5"), `{ alpha: 0.1 }`)
	cfg, err = ReadConfigOr(filepath.Join(dir, "conversion.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, 0.1, cfg.Alpha)
	require.Equal(t, 2008, cfg.Years.From)
	require.Equal(t, 2015, cfg.Years.To)
}

func TestReadConfigOrKeepsExplicitZero(t *testing.T) {
	type httpConfig struct {
		RatePerSecond float64 `json:"rate_per_second"`
		UserAgent     string  `json:"user_agent"`
	}
	type cliConfig struct {
		MaxRows  int `json:"max_rows"`
		Credible struct {
			Lower float64 `json:"lower"`
			Upper float64 `json:"upper"`
		} `json:"credible"`
		Http httpConfig `json:"http"`
	}

	var defaults cliConfig
	defaults.MaxRows = 40
	defaults.Credible.Lower = 0.05
	defaults.Credible.Upper = 0.95
	defaults.Http = httpConfig{RatePerSecond: 2, UserAgent: "conversion"}

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "conversion.json5"), `{
		max_rows: 0,
		credible: { lower: 0 },
		http: { rate_per_second: 0 },
	}`)

	cfg, err := ReadConfigOr(filepath.Join(dir, "conversion.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, 0, cfg.MaxRows)
	require.Equal(t, 0.0, cfg.Credible.Lower)
	require.Equal(t, 0.95, cfg.Credible.Upper)
	require.Equal(t, 0.0, cfg.Http.RatePerSecond)
	require.Equal(t, "conversion", cfg.Http.UserAgent)

	// the defaults passed in are not modified
	require.Equal(t, 40, defaults.MaxRows)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "conversion.json5"), `{ alpha: `)
	_, err := ReadConfig[testConfig](filepath.Join(dir, "conversion.json5"))
	require.Error(t, err)
	require.False(t, errors.Is(err, os.ErrNotExist))
}
