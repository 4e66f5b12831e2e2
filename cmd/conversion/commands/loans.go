package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/erikbern/conversion/internal/datasets/loans"

	"github.com/spf13/cobra"
)

var (
	loansData             string
	loansCensorTerminated bool
	loansSave             bool
	reduceOut             string
)

func init() {
	flags := loansCmd.Flags()
	flags.StringVar(&loansData, "data", "", "Path or url of a created/defaulted/ended loans TSV.")
	flags.BoolVar(&loansCensorTerminated, "censor-terminated", false, "Censor loans that were paid off instead of keeping them at risk forever.")
	flags.BoolVar(&loansSave, "save", false, "Save the curve to the results database.")
	loansCmd.MarkFlagRequired("data")

	reduceCmd.Flags().StringVar(&reduceOut, "out", "", "TSV file to write the reduced loans to.")
	reduceCmd.MarkFlagRequired("out")

	loansCmd.AddCommand(reduceCmd)
	rootCmd.AddCommand(loansCmd)
}

var loansCmd = &cobra.Command{
	Use:   "loans --data <path|url>",
	Short: "Estimates the time from origination to default of mortgage loans.",
	RunE: func(cmd *cobra.Command, args []string) error {
		parsed, err := readLocation(cmd.Context(), loansData, loans.Parse)
		if err != nil {
			return err
		}

		policy := loans.TerminationNeverDefaults
		if loansCensorTerminated {
			policy = loans.TerminationCensor
		}
		records, now := loans.Records(parsed, policy)
		slog.InfoContext(cmd.Context(), "loaded loans", "count", len(records), "now", now)

		return estimate(cmd, "loans", loansData, loans.Observations(records, now), loansSave)
	},
}

var reduceCmd = &cobra.Command{
	Use:   "reduce --out <tsv> <servicing files...>",
	Short: "Folds monthly servicing files into one created/defaulted/ended row per loan.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reducer := loans.NewReducer(env.tel)
		for _, path := range args {
			r, err := env.opener.Open(cmd.Context(), path)
			if err != nil {
				return err
			}
			err = reducer.ReduceInto(r)
			r.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}

		reduced := reducer.Loans()
		out, err := os.Create(reduceOut)
		if err != nil {
			return err
		}
		defer out.Close()
		err = loans.WriteTSV(out, reduced)
		if err != nil {
			return err
		}

		slog.InfoContext(cmd.Context(), "reduced loans", "count", len(reduced), "out", reduceOut)
		return out.Close()
	},
}
