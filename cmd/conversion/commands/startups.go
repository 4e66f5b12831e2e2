package commands

import (
	"fmt"
	"log/slog"

	"github.com/erikbern/conversion/internal/analysis"
	"github.com/erikbern/conversion/internal/datasets/startups"
	"github.com/erikbern/conversion/internal/store"

	"github.com/spf13/cobra"
)

const (
	groupYear   = "year"
	groupPeriod = "period"
	groupBoth   = "both"
)

var (
	startupsCache   string
	startupsGroup   string
	startupsFrom    int
	startupsTo      int
	startupsHorizon float64
	startupsSave    bool
)

func init() {
	flags := startupsCmd.Flags()
	flags.StringVar(&startupsCache, "cache", "", "Directory of companies_<slug>.json funding round files.")
	flags.StringVar(&startupsGroup, "group", groupBoth, "Curves to compute: year, period or both.")
	flags.IntVar(&startupsFrom, "from", 0, "First founding year of the window (overrides the config).")
	flags.IntVar(&startupsTo, "to", 0, "Last founding year of the window (overrides the config).")
	flags.Float64Var(&startupsHorizon, "horizon", 0, "Truncate curves after this many years (overrides the config).")
	flags.BoolVar(&startupsSave, "save", false, "Save the Kaplan-Meier curves to the results database.")
	startupsCmd.MarkFlagRequired("cache")
	rootCmd.AddCommand(startupsCmd)
}

var startupsCmd = &cobra.Command{
	Use:   "startups --cache <dir>",
	Short: "Estimates how long startups take from their first round to an exit, by founding year.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		window := env.config.Years
		if cmd.Flags().Changed("from") {
			window.From = startupsFrom
		}
		if cmd.Flags().Changed("to") {
			window.To = startupsTo
		}
		horizon := env.config.HorizonYears
		if cmd.Flags().Changed("horizon") {
			horizon = startupsHorizon
		}
		var families analysis.Families
		switch startupsGroup {
		case groupYear:
			families = analysis.FamiliesYear
		case groupPeriod:
			families = analysis.FamiliesPeriod
		case groupBoth:
		default:
			return fmt.Errorf("unknown group %q, expected year, period or both", startupsGroup)
		}

		records, err := startups.NewLoader(env.tel).Load(ctx, startupsCache)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "loaded companies", "count", len(records))

		result, err := analysis.NewAnalyzer(env.tel).Startups(ctx, records, analysis.StartupOptions{
			Families: families,
			Window:   window,
			Now:      env.clock.Now(),
			Alpha:    env.config.Alpha,
			Credible: env.config.Credible,
			Horizon:  horizon,
		})
		if err != nil {
			return err
		}
		if startupsSave {
			req := store.SaveRequest{
				Name:    "startups",
				Dataset: startupsCache,
				Alpha:   env.config.Alpha,
				Total:   result.Total,
			}
			for _, s := range append(result.KaplanMeier, result.KaplanMeierSplit...) {
				req.Series = append(req.Series, store.Series{Label: s.Label, Points: s.Curve.Points})
			}
			err = save(ctx, req)
			if err != nil {
				return err
			}
		}

		return render(cmd, result)
	},
}
