package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/wplaceqr/internal/config"
	"github.com/cristianadrielbraun/wplaceqr/internal/handlers"
	"github.com/cristianadrielbraun/wplaceqr/internal/logging"
	"github.com/cristianadrielbraun/wplaceqr/internal/middleware"
	"github.com/cristianadrielbraun/wplaceqr/internal/qr"
	"github.com/cristianadrielbraun/wplaceqr/web/static"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	// The encoder is resolved once here and injected into the handlers.
	enc, err := qr.Select(cfg.QRBackend)
	if err != nil {
		log.Error("no usable QR encoding backend",
			"requested", cfg.QRBackend,
			"available", strings.Join(qr.Names(), ", "),
			"error", err)
		return fmt.Errorf("set QR_BACKEND to one of auto, %s: %w", strings.Join(qr.Names(), ", "), err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(logging.Middleware(log))
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst))

	// Static assets
	r.StaticFS("/web/static", http.FS(static.FS))

	h := handlers.New(enc, log, handlers.Limits{
		MaxBorder:     cfg.MaxBorder,
		MaxScale:      cfg.MaxScale,
		TextMaxPixels: cfg.TextMaxPixels,
	})
	h.Routes(r)

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("wplaceqr listening", "addr", cfg.Addr(), "backend", enc.Name())

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
