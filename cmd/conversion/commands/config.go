package commands

import (
	"time"

	"github.com/erikbern/conversion/internal/analysis"
	"github.com/erikbern/conversion/internal/cohort"
	"github.com/erikbern/conversion/internal/source"
	"github.com/erikbern/conversion/internal/survival"
	"github.com/erikbern/conversion/lib/configuration"
)

type HttpConfig struct {
	RatePerSecond  float64 `json:"rate_per_second"`
	TimeoutSeconds float64 `json:"timeout_seconds"`
	UserAgent      string  `json:"user_agent"`
}

func (c HttpConfig) SourceOptions() source.Options {
	return source.Options{
		RatePerSecond: c.RatePerSecond,
		Timeout:       time.Duration(c.TimeoutSeconds * float64(time.Second)),
		UserAgent:     c.UserAgent,
	}
}

type Config struct {
	Years        cohort.Window          `json:"years"`
	Alpha        float64                `json:"alpha"`
	Credible     analysis.Credible      `json:"credible"`
	HorizonYears float64                `json:"horizon_years"`
	Now          string                 `json:"now"`
	MaxRows      int                    `json:"max_rows"`
	Database     configuration.Database `json:"database"`
	Http         HttpConfig             `json:"http"`
}

func DefaultConfig() Config {
	return Config{
		Years:    cohort.Window{From: 2008, To: 2015},
		Alpha:    survival.DefaultAlpha,
		Credible: analysis.DefaultCredible,
		MaxRows:  40,
		Database: configuration.Database{
			File: "<dev_state>/conversion.db",
		},
		Http: HttpConfig{
			RatePerSecond:  2,
			TimeoutSeconds: 30,
			UserAgent:      source.DefaultUserAgent,
		},
	}
}
