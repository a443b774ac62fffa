package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ShabiDHM/advocatus-sub001/application/ports"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/config"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/di"
	"github.com/ShabiDHM/advocatus-sub001/interfaces/http/rest"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()

	handler := rest.NewRouter(routerDependencies(container), container.Logger).Setup()

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		container.Logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("storage", cfg.StorageBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			container.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	container.Logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Server shutdown error", zap.Error(err))
	}
	container.Logger.Info("Server stopped")
}

func routerDependencies(c *di.Container) rest.Dependencies {
	deps := rest.Dependencies{
		CommandBus:  c.CommandBus,
		QueryBus:    c.QueryBus,
		Importer:    c.Importer,
		JWT:         c.JWT,
		CORSOrigins: c.Config.CORSOrigins,
		Debug:       c.Config.Environment == "development",
	}
	if hc, ok := c.Repository.(ports.HealthChecker); ok {
		deps.Health = hc
	}
	if c.Config.EnableMetrics {
		deps.Metrics = c.Metrics
	}
	return deps
}
