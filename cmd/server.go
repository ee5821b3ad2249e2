package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"IotMonitor.api/internal/config"
	"IotMonitor.api/internal/controller"
	"IotMonitor.api/internal/hardware"
	"IotMonitor.api/internal/iothub"
	"IotMonitor.api/internal/logging"
	"IotMonitor.api/internal/repository"
	"IotMonitor.api/internal/routes"
	"IotMonitor.api/internal/service"
	"IotMonitor.api/internal/throttle"
)

type application struct {
	cfg     config.Config
	logger  *logging.Logger
	handler http.Handler
}

func (app *application) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              app.cfg.ServerAddress(),
		Handler:           app.handler,
		IdleTimeout:       60 * time.Second,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// direct methods may take up to the hub's response timeout
		WriteTimeout: 45 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("listening", "addr", srv.Addr, "store", app.cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		app.logger.Info("shutdown signal received, shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error("graceful shutdown failed, forcing close", logging.AttachError(err)...)
			_ = srv.Close()
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.New("error").Error("error loading configuration", logging.AttachError(err)...)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	logger.SetDefault()

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	repo, err := repository.Open(startCtx, cfg)
	cancel()
	if err != nil {
		logger.Error("error connecting to store", logging.AttachError(err, "driver", cfg.StoreDriver)...)
		os.Exit(1)
	}

	registry, err := hardware.LoadFile(cfg.HardwareFile)
	if err != nil {
		logger.Error("error loading hardware definitions", logging.AttachError(err, "file", cfg.HardwareFile)...)
		os.Exit(1)
	}

	var commandThrottle throttle.Throttle = throttle.NewMemory()
	var redisThrottle *throttle.Redis
	if cfg.RedisAddr != "" {
		redisCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisThrottle, err = throttle.NewRedis(redisCtx, cfg.RedisAddr)
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, throttling in memory", logging.AttachError(err)...)
		} else {
			commandThrottle = redisThrottle
		}
	}

	var invoker service.DeviceInvoker
	if cfg.IoTHubConnection != "" {
		conn, err := iothub.ParseConnectionString(cfg.IoTHubConnection)
		if err != nil {
			logger.Error("invalid IOTHUB_CONNECTION", logging.AttachError(err)...)
			os.Exit(1)
		}
		invoker = iothub.NewClient(conn, cfg.DeviceID)
	} else {
		logger.Warn("IOTHUB_CONNECTION not set, hardware commands will fail")
	}

	dataService := service.NewDataService(repo, logger)
	commandService := service.NewCommandService(registry, invoker, commandThrottle, cfg.CommandMinPause, logger)
	router := routes.NewRouter(
		controller.NewDataController(dataService, logger),
		controller.NewHardwareController(commandService),
		logger,
	)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	app := &application{cfg: cfg, logger: logger, handler: c.Handler(router)}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := app.serve(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.Close(closeCtx); err != nil {
		logger.Error("store close error", logging.AttachError(err)...)
	}
	if redisThrottle != nil {
		if err := redisThrottle.Close(); err != nil {
			logger.Error("redis close error", logging.AttachError(err)...)
		}
	}

	if serveErr != nil {
		logger.Error("server error", logging.AttachError(serveErr)...)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
