package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"clubledger/internal/amqp"
	"clubledger/internal/auth"
	"clubledger/internal/cli"
	"clubledger/internal/core"
	apphttp "clubledger/internal/http"
	applog "clubledger/internal/log"
	"clubledger/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := cli.LoadAndValidateConfig(logger.Logger)
	store := cli.InitStore(logger.Logger, cfg)

	// AMQP is optional: without it records are never published for backup,
	// but the API stays fully functional.
	var publisher services.SyncPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		amqpClient = client
		publisher = client
		logger.Info("AMQP sync publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided, records will not be backed up")
	}

	clock := core.DefaultWeekClock()
	engine := services.NewAggregationEngine(store.Store, clock)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Store:     store.Store,
		Recorder:  services.NewRecorder(store.Store, publisher),
		Engine:    engine,
		Assembler: services.NewReportAssembler(engine, clock),
		Auth:      auth.NewService(store.Store, cfg.JWTSecret, cfg.TokenTTL),
		Logger:    logger.WithComponent(applog.ComponentHTTP),
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", "error", err)
			}
		}
		if store.Cleanup != nil {
			if err := store.Cleanup(); err != nil {
				logger.Error("Store cleanup error", "error", err)
			}
		}
	})

	logger.Info("Starting clubledger server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
