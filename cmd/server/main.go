package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eskil/fileforge/internal/api"
	"github.com/eskil/fileforge/internal/api/middleware"
	"github.com/eskil/fileforge/internal/config"
	"github.com/eskil/fileforge/internal/convert"
	"github.com/eskil/fileforge/internal/convert/converters"
	"github.com/eskil/fileforge/internal/logger"
	"github.com/eskil/fileforge/internal/repository"
	"github.com/eskil/fileforge/internal/service"
	"github.com/eskil/fileforge/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "fileforge",
		Environment: cfg.Log.Environment,
		LogFile:     cfg.Log.File,
		LogFileOnly: cfg.Log.FileOnly,
		MaxSize:     100,
		MaxBackups:  7,
		MaxAge:      30,
		Compress:    true,
	})
	logger.SetDefault(appLogger)
	defer logger.Sync()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	jobRepo := repository.NewJobRepository(db)
	taskRepo := repository.NewFileTaskRepository(db)
	userRepo := repository.NewUserRepository(db)

	ws := storage.NewWorkspace(cfg.Storage.DataDir)

	var mirror storage.ObjectStorage
	if cfg.Storage.Mirror.Enabled {
		s3Storage, err := storage.NewS3Storage(&storage.S3Config{
			Endpoint:  cfg.Storage.Mirror.Endpoint,
			AccessKey: cfg.Storage.Mirror.AccessKey,
			SecretKey: cfg.Storage.Mirror.SecretKey,
			UseSSL:    cfg.Storage.Mirror.UseSSL,
			Bucket:    cfg.Storage.Mirror.Bucket,
			Region:    cfg.Storage.Mirror.Region,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize storage mirror")
		}
		if err := s3Storage.EnsureBucket(context.Background()); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure mirror bucket")
		}
		mirror = s3Storage
		appLogger.WithField("bucket", cfg.Storage.Mirror.Bucket).Info("Output mirror enabled")
	}

	registry := buildRegistry(&cfg.Convert)
	for name, targets := range registry.ListTargets() {
		appLogger.WithFields(logger.Fields{
			logger.FieldConverter: name,
			logger.FieldCount:     len(targets),
		}).Info("Converter registered")
	}

	dispatcher := convert.NewDispatcher(registry, cfg.Convert.TaskTimeout)
	jobService := service.NewJobService(jobRepo, taskRepo, dispatcher, ws, mirror, appLogger)
	sweeper := service.NewRetentionSweeper(
		jobRepo, taskRepo, ws, mirror, appLogger,
		cfg.Retention.Horizon, cfg.Retention.Interval, cfg.Retention.SweepUnfinished,
	)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go sweeper.Run(sweepCtx)

	router := api.SetupRouter(jobService, sweeper, registry, userRepo, cfg.Server.Mode, middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutdown signal received")

	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server shutdown failed")
	}

	// Drain in-flight conversion batches with a bounded wait.
	done := make(chan struct{})
	go func() {
		jobService.Wait()
		close(done)
	}()
	select {
	case <-done:
		appLogger.Info("All conversion batches drained")
	case <-time.After(30 * time.Second):
		appLogger.Warn("Shutdown timeout, conversions still in flight")
	}
}

// buildRegistry assembles the converter catalog in its fixed registration
// order. The order is part of the service's observable behavior: the first
// converter supporting a pair serves it when no explicit name is given.
func buildRegistry(cfg *config.ConvertConfig) *convert.Registry {
	var list []convert.Converter

	if cfg.Resvg.Enabled {
		list = append(list, converters.NewResvg(cfg.Resvg.Binary))
	}
	list = append(list, converters.NewImage())
	if cfg.FFmpeg.Enabled {
		list = append(list, converters.NewFFmpeg(cfg.FFmpeg.Binary))
	}
	if cfg.Gotenberg.Enabled {
		list = append(list, converters.NewGotenberg(cfg.Gotenberg.URL))
	}

	return convert.NewRegistry(list...)
}
