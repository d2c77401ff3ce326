// Command web serves the attendance admin dashboard.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/crucial707/fpadmin/internal/apiclient"
	"github.com/crucial707/fpadmin/internal/config"
	"github.com/crucial707/fpadmin/internal/logging"
	"github.com/crucial707/fpadmin/internal/scheduler"
	"github.com/crucial707/fpadmin/internal/server"
	"github.com/crucial707/fpadmin/internal/web"
)

const sweepSpec = "@every 10m"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	api := apiclient.New(cfg.APIURL,
		apiclient.WithTimeout(cfg.HTTPTimeout),
		apiclient.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dash := web.NewServer(cfg, api, logger)
	go func() {
		err := scheduler.Run(ctx, logger,
			scheduler.Job{Name: "sweep-sessions", Spec: sweepSpec, Run: dash.SweepSessions},
			scheduler.Job{Name: "sweep-login-limiter", Spec: sweepSpec, Run: dash.SweepLoginLimiter},
		)
		if err != nil {
			logger.Error("scheduler stopped", "err", err)
		}
	}()

	logger.Info("dashboard starting", "api", cfg.APIURL, "port", cfg.WebPort)
	if err := server.Run(ctx, dash.Routes(cfg), server.Options{
		Addr:     ":" + cfg.WebPort,
		CertFile: cfg.TLSCertFile,
		KeyFile:  cfg.TLSKeyFile,
		Logger:   logger,
	}); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
