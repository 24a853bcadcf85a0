package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"flywheel/internal/greeter"
	"flywheel/internal/platform/config"
	"flywheel/internal/platform/httpserver"
	"flywheel/internal/platform/logger"
	"flywheel/internal/platform/metrics"
	httptransport "flywheel/internal/transport/http"
	"flywheel/pkg/fn"
	fnmetrics "flywheel/pkg/fn/metrics"
)

// main wires configuration, the greeter service and the HTTP router, and keeps
// the server lifecycle small. Dispatch logic lives in pkg/fn.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logger.New(slog.LevelInfo).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	serverMetrics := metrics.New(prometheus.DefaultRegisterer)
	pointOpts := []fn.Option{fn.WithShadow(cfg.Shadow)}
	if cfg.Strict {
		pointOpts = append(pointOpts, fn.WithStrictAmbiguity())
	}
	service := greeter.New(
		greeter.WithLogger(log),
		greeter.WithMetrics(serverMetrics),
		greeter.WithDispatchMetrics(fnmetrics.New(prometheus.DefaultRegisterer)),
		greeter.WithPointOptions(pointOpts...),
	)

	catalog, err := loadCatalog(cfg.Catalog)
	if err != nil {
		log.Error("failed to load catalog", "path", cfg.Catalog, "error", err)
		os.Exit(1)
	}
	if err := service.Load(catalog); err != nil {
		log.Error("failed to register catalog", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.NewHandler(service, log), serverMetrics, nil)
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("starting flywheel",
			"addr", cfg.Addr,
			"shadow", cfg.Shadow.String(),
			"strict", cfg.Strict,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func loadCatalog(path string) (*greeter.Catalog, error) {
	if path == "" {
		return greeter.DefaultCatalog()
	}
	return greeter.LoadCatalog(path)
}
