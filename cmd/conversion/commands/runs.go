package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspects curves saved with --save.",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists saved runs, newest first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		results, closeDb, err := openStore()
		if err != nil {
			return err
		}
		defer closeDb()

		runs, err := results.ListRuns(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd, runs)
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Shows the curves of a saved run.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, closeDb, err := openStore()
		if err != nil {
			return err
		}
		defer closeDb()

		curves, err := results.Curves(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(cmd, curves)
	},
}
