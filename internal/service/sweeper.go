package service

import (
	"context"
	"path"
	"time"

	"github.com/eskil/fileforge/internal/logger"
	"github.com/eskil/fileforge/internal/repository"
	"github.com/eskil/fileforge/internal/storage"
)

// RetentionSweeper periodically deletes jobs past the retention horizon
// along with their task records, file trees and mirrored objects. It never
// raises to its caller: a failing job is logged and skipped so one bad job
// cannot halt the sweep.
type RetentionSweeper struct {
	jobs   *repository.JobRepository
	tasks  *repository.FileTaskRepository
	ws     *storage.Workspace
	mirror storage.ObjectStorage // optional, nil disables mirror cleanup
	log    *logger.Logger

	horizon  time.Duration
	interval time.Duration
	// sweepUnfinished keeps the original age-only behavior: jobs still
	// pending past the horizon lose their storage too. Disable to exempt
	// in-flight jobs from the race.
	sweepUnfinished bool
}

// NewRetentionSweeper creates a sweeper.
func NewRetentionSweeper(
	jobs *repository.JobRepository,
	tasks *repository.FileTaskRepository,
	ws *storage.Workspace,
	mirror storage.ObjectStorage,
	log *logger.Logger,
	horizon, interval time.Duration,
	sweepUnfinished bool,
) *RetentionSweeper {
	return &RetentionSweeper{
		jobs:            jobs,
		tasks:           tasks,
		ws:              ws,
		mirror:          mirror,
		log:             log,
		horizon:         horizon,
		interval:        interval,
		sweepUnfinished: sweepUnfinished,
	}
}

// Run sweeps once immediately, then on every interval tick until the
// context is cancelled.
func (s *RetentionSweeper) Run(ctx context.Context) {
	s.log.WithField("interval", s.interval.String()).
		Info("retention sweeper started")

	s.SweepOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("retention sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single retention pass and returns how many jobs were
// deleted.
func (s *RetentionSweeper) SweepOnce(ctx context.Context) int {
	cutoff := time.Now().UTC().Add(-s.horizon)

	expired, err := s.jobs.FindExpired(ctx, cutoff, !s.sweepUnfinished)
	if err != nil {
		s.log.WithError(err).Error("retention sweep: failed to list expired jobs")
		return 0
	}

	deleted := 0
	for _, job := range expired {
		log := s.log.WithFields(logger.Fields{
			logger.FieldJobID:  job.ID,
			logger.FieldUserID: job.UserID,
		})

		if err := s.ws.RemoveJobTrees(job.UserID, job.ID); err != nil {
			log.WithError(err).Error("retention sweep: failed to remove job trees")
			continue
		}

		if s.mirror != nil {
			prefix := path.Join("output", job.UserID, job.ID) + "/"
			if err := s.mirror.DeletePrefix(ctx, prefix); err != nil {
				log.WithError(err).Error("retention sweep: failed to delete mirrored outputs")
				continue
			}
		}

		if err := s.tasks.DeleteByJob(ctx, job.ID); err != nil {
			log.WithError(err).Error("retention sweep: failed to delete task records")
			continue
		}

		if err := s.jobs.Delete(ctx, job.ID); err != nil {
			log.WithError(err).Error("retention sweep: failed to delete job")
			continue
		}

		deleted++
	}

	if len(expired) > 0 {
		s.log.WithFields(logger.Fields{
			"expired": len(expired),
			"deleted": deleted,
		}).Info("retention sweep finished")
	}
	return deleted
}
