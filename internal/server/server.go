// Package server runs an HTTP handler until its context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 10 * time.Second

// Options configures Run. TLS is served when both CertFile and KeyFile are set.
type Options struct {
	Addr     string
	CertFile string
	KeyFile  string
	Logger   *slog.Logger
	// Ready, if set, receives the bound address once the listener is open.
	Ready chan<- string
}

// Run serves h on opts.Addr and shuts down gracefully when ctx is done.
func Run(ctx context.Context, h http.Handler, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", opts.Addr, err)
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		if opts.CertFile != "" && opts.KeyFile != "" {
			errc <- srv.ServeTLS(ln, opts.CertFile, opts.KeyFile)
			return
		}
		errc <- srv.Serve(ln)
	}()
	log.Info("listening", "addr", ln.Addr().String(), "tls", opts.CertFile != "")
	if opts.Ready != nil {
		opts.Ready <- ln.Addr().String()
	}

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
