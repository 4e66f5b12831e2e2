package main

import (
	"context"
	"os"
	"time"

	"github.com/erikbern/conversion/cmd/conversion/commands"
	"github.com/erikbern/conversion/internal/telemetry"
	"github.com/erikbern/conversion/lib/util/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "conversion")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	if tel.MeterProvider != nil {
		telemetry.InstrumentPerfStats(ctx, 30*time.Second)
	}

	err = commands.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tel.Shutdown(shutdownCtx)

	if err != nil {
		os.Exit(1)
	}
}
