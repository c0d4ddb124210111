package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"datafeed/internal/config"
	"datafeed/internal/logging"
	"datafeed/internal/platform"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to config.yaml (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("load config", slog.String("err", err.Error()))
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, os.Stdout)

	ex, err := platform.NewExecutor(cfg)
	if err != nil {
		slog.Error("build providers", slog.String("err", err.Error()))
		os.Exit(1)
	}
	a := &api{ex: ex, timeout: cfg.Server.RequestTimeout}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           withRequestID(withJSONHeaders(withGzip(recoverPanic(limitBody(cfg.Server.MaxBodyBytes, a.routes()))))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server listening", slog.String("addr", srv.Addr), slog.Any("providers", ex.Registry().Names()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server", slog.String("err", err.Error()))
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", slog.String("err", err.Error()))
	}
}
