package commands

import (
	"log/slog"

	"github.com/erikbern/conversion/internal/datasets/tweets"

	"github.com/spf13/cobra"
)

var (
	tweetsData string
	tweetsSave bool
)

func init() {
	tweetsCmd.Flags().StringVar(&tweetsData, "data", "", "Path or url of a created_at/observed_at/retweet_count TSV.")
	tweetsCmd.Flags().BoolVar(&tweetsSave, "save", false, "Save the curve to the results database.")
	tweetsCmd.MarkFlagRequired("data")
	rootCmd.AddCommand(tweetsCmd)
}

var tweetsCmd = &cobra.Command{
	Use:   "tweets --data <path|url>",
	Short: "Estimates how long it takes for a tweet to get its first retweet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		parsed, err := readLocation(cmd.Context(), tweetsData, tweets.Parse)
		if err != nil {
			return err
		}
		slog.InfoContext(cmd.Context(), "loaded tweets", "count", len(parsed))
		return estimate(cmd, "tweets", tweetsData, tweets.Observations(parsed), tweetsSave)
	},
}
