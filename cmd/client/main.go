package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"assettrack/internal/client/cli"
	"assettrack/internal/client/config"
	"assettrack/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
