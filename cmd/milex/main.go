package main

import (
	"context"
	"fmt"
	"milex-scraper/cmd/milex/commands"
	"milex-scraper/lib/telemetry"
	"milex-scraper/lib/util/serviceutil"
	"os"
)

func main() {
	ctx := serviceutil.SignalContext()

	otel, err := telemetry.SetupFromEnv(ctx, "milex")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}

	err = commands.ExecuteContext(ctx)
	shutdownErr := otel.Shutdown(context.Background())
	if shutdownErr != nil {
		fmt.Fprintln(os.Stderr, shutdownErr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
