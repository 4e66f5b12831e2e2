package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/erikbern/conversion/internal/chrono"
	"github.com/erikbern/conversion/internal/db"
	"github.com/erikbern/conversion/internal/report"
	"github.com/erikbern/conversion/internal/source"
	"github.com/erikbern/conversion/internal/store"
	"github.com/erikbern/conversion/internal/telemetry"
	"github.com/erikbern/conversion/lib/configutil"

	"github.com/spf13/cobra"
)

type environment struct {
	config Config
	clock  chrono.TimeAPI
	tel    telemetry.API
	format report.Format
	opener source.Opener
}

var env environment

var (
	configPath string
	verbose    bool
	nowFlag    string
	alphaFlag  float64
	formatFlag string
)

var rootCmd = &cobra.Command{
	Use:          "conversion",
	Short:        "conversion estimates survival curves over cohort time-to-event data.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)

		config, err := configutil.ReadConfigOr(configPath, DefaultConfig())
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		if cmd.Flags().Changed("alpha") {
			config.Alpha = alphaFlag
		}
		if cmd.Flags().Changed("now") {
			config.Now = nowFlag
		}
		if config.Alpha <= 0 || config.Alpha >= 1 {
			return fmt.Errorf("alpha must be in (0, 1), got %v", config.Alpha)
		}

		clock, err := chrono.FromFlag(config.Now)
		if err != nil {
			return err
		}
		format, err := report.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		tel := telemetry.SlogAPI{}
		env = environment{
			config: config,
			clock:  clock,
			tel:    tel,
			format: format,
			opener: source.NewOpener(config.Http.SourceOptions(), tel),
		}
		slog.Debug("configuration loaded", "path", configPath, "alpha", config.Alpha, "now", clock.Now())
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "conversion.json5", "The configuration file to read.")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
	flags.StringVar(&nowFlag, "now", "", "Pin the current time (RFC3339 or YYYY-MM-DD) used to censor open records.")
	flags.Float64Var(&alphaFlag, "alpha", 0.05, "Confidence bounds are computed at 1-alpha.")
	flags.StringVar(&formatFlag, "format", string(report.FormatTable), "Output format: table, markdown, csv or json.")
}

func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}

func render(cmd *cobra.Command, v any) error {
	return report.Render(cmd.OutOrStdout(), env.format, v, report.WithMaxRows(env.config.MaxRows))
}

func openStore() (store.Store, func() error, error) {
	database, err := env.config.Database.OpenDB(db.Schema)
	if err != nil {
		return store.Store{}, nil, fmt.Errorf("open results database: %w", err)
	}
	return store.NewStore(database, env.tel), database.Close, nil
}

func save(ctx context.Context, req store.SaveRequest) error {
	results, closeDb, err := openStore()
	if err != nil {
		return err
	}
	defer closeDb()

	id, err := results.SaveCurves(ctx, req)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "saved run", "id", id, "name", req.Name)
	return nil
}
