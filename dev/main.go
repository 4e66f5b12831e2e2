package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	devenv "github.com/erikbern/conversion/dev/env"
	"github.com/erikbern/conversion/internal/db"
	"github.com/erikbern/conversion/lib/configuration"
)

const defaultConfig = `{
  years: { from: 2008, to: 2015 },
  alpha: 0.05,
  credible: { lower: 0.05, upper: 0.95 },
  horizon_years: 0,
  database: { file: "<dev_state>/conversion.db" },
  http: { rate_per_second: 2, timeout_seconds: 30 },
}
`

func create(recreate bool) error {
	_, err := os.Stat("go.mod")
	if os.IsNotExist(err) {
		return fmt.Errorf("the dev environment must be created in the repository root (the same directory as the 'go.mod' file)")
	}

	if recreate {
		err = os.RemoveAll("dev/.state")
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	dbpath, err := devenv.ResolvePath("<dev_state>/conversion.db")
	if err != nil {
		return err
	}
	results, err := configuration.Database{File: dbpath}.OpenDB(db.Schema)
	if err != nil {
		return err
	}
	err = results.Close()
	if err != nil {
		return err
	}
	slog.Info("results database ready", "path", dbpath)

	_, err = os.Stat("conversion.json5")
	if os.IsNotExist(err) {
		err = os.WriteFile("conversion.json5", []byte(defaultConfig), 0644)
		if err != nil {
			return err
		}
		slog.Info("wrote default config", "path", "conversion.json5")
	}
	return nil
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	flag.Parse()

	err := create(*recreate)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created sucessfully!")
}
