package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"concierge/internal/server"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP service",
		Long:  "Starts the request router, checkpoint sweeper, and HTTP API. Press Ctrl+C to stop.",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.close()

	go a.approvals.StartSweeper(ctx)

	metricsEndpoint := ""
	if cfg.Metrics.Enabled {
		metricsEndpoint = cfg.Metrics.Endpoint
	}
	srv := server.New(server.Config{
		Supervisor:      a.supervisor,
		Approvals:       a.approvals,
		Notifier:        a.notifier,
		Logger:          logger,
		MetricsEndpoint: metricsEndpoint,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return srv.Start(ctx, addr)
}
