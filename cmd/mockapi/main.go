// Command mockapi serves an in-memory attendance API with demo data, for
// running the dashboard and CLI without the hosted backend.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/crucial707/fpadmin/internal/config"
	"github.com/crucial707/fpadmin/internal/logging"
	"github.com/crucial707/fpadmin/internal/mockapi"
	"github.com/crucial707/fpadmin/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	backend, err := mockapi.New(mockapi.Options{
		AdminUser:     cfg.MockAdminUser,
		AdminPassword: cfg.MockAdminPassword,
		Secret:        cfg.MockJWTSecret,
		Logs:          mockapi.DemoLogs(),
		Logger:        logger,
	})
	if err != nil {
		log.Fatalf("mockapi: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("mock attendance API", "admin_user", cfg.MockAdminUser)
	if err := server.Run(ctx, backend.Handler(), server.Options{
		Addr:   ":" + cfg.MockAPIPort,
		Logger: logger,
	}); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
