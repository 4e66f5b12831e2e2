package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/erikbern/conversion/internal/analysis"
	"github.com/erikbern/conversion/internal/store"
	"github.com/erikbern/conversion/internal/survival"

	"github.com/spf13/cobra"
)

// readLocation opens a dataset location and hands it to parse.
func readLocation[T any](ctx context.Context, location string, parse func(io.Reader) (T, error)) (T, error) {
	var out T
	r, err := env.opener.Open(ctx, location)
	if err != nil {
		return out, err
	}
	defer r.Close()

	out, err = parse(r)
	if err != nil {
		return out, fmt.Errorf("%s: %w", location, err)
	}
	return out, nil
}

// estimate runs a single curve analysis, saves it when asked and renders it.
func estimate(cmd *cobra.Command, name, dataset string, obs []survival.Observation, saveRun bool) error {
	ctx := cmd.Context()

	result, err := analysis.NewAnalyzer(env.tel).Single(ctx, name, obs, analysis.SingleOptions{
		Alpha:   env.config.Alpha,
		Horizon: env.config.HorizonYears,
	})
	if err != nil {
		return err
	}

	if saveRun {
		err = save(ctx, store.SaveRequest{
			Name:    name,
			Dataset: dataset,
			Alpha:   result.Curve.Alpha,
			Total:   result.Curve.Total,
			Series: []store.Series{
				{Label: name, Points: result.Curve.Points},
			},
		})
		if err != nil {
			return err
		}
	}

	return render(cmd, result)
}
