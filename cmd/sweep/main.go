// Command sweep runs a single retention pass and exits. Useful from cron
// or for operational cleanup outside the server's own timer.
package main

import (
	"context"
	"log"
	"os"

	"github.com/eskil/fileforge/internal/config"
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
		ServiceName: "fileforge-sweep",
	})
	logger.SetDefault(appLogger)
	defer logger.Sync()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	jobRepo := repository.NewJobRepository(db)
	taskRepo := repository.NewFileTaskRepository(db)
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
		mirror = s3Storage
	}

	sweeper := service.NewRetentionSweeper(
		jobRepo, taskRepo, ws, mirror, appLogger,
		cfg.Retention.Horizon, cfg.Retention.Interval, cfg.Retention.SweepUnfinished,
	)

	deleted := sweeper.SweepOnce(context.Background())
	appLogger.WithField("deleted", deleted).Info("Retention pass finished")
}
