package commands

import (
	"log/slog"

	"github.com/erikbern/conversion/internal/cohort"
	"github.com/erikbern/conversion/internal/datasets/events"

	"github.com/spf13/cobra"
)

var (
	kmData string
	kmSave bool
)

func init() {
	kmCmd.Flags().StringVar(&kmData, "data", "", "Path or url of a start/end TSV.")
	kmCmd.Flags().BoolVar(&kmSave, "save", false, "Save the curve to the results database.")
	kmCmd.MarkFlagRequired("data")
	rootCmd.AddCommand(kmCmd)
}

var kmCmd = &cobra.Command{
	Use:   "km --data <path|url>",
	Short: "Estimates a Kaplan-Meier curve over start/end rows, an empty end is still open.",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := readLocation(cmd.Context(), kmData, events.Parse)
		if err != nil {
			return err
		}
		now := env.clock.Now()
		slog.InfoContext(cmd.Context(), "loaded events", "count", len(records), "now", now)
		return estimate(cmd, "km", kmData, cohort.Observations(records, now), kmSave)
	},
}
