package service

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eskil/fileforge/internal/convert"
	"github.com/eskil/fileforge/internal/domain"
	"github.com/eskil/fileforge/internal/logger"
	"github.com/eskil/fileforge/internal/repository"
	"github.com/eskil/fileforge/internal/storage"
)

// JobService owns the job and per-file task lifecycle. StartConversion
// fans one goroutine out per file and returns immediately; progress is
// observed by polling. The service keeps a join point over every task it
// has scheduled so shutdown can drain in-flight work.
type JobService struct {
	jobs       *repository.JobRepository
	tasks      *repository.FileTaskRepository
	dispatcher *convert.Dispatcher
	ws         *storage.Workspace
	mirror     storage.ObjectStorage // optional, nil disables mirroring
	log        *logger.Logger

	running sync.WaitGroup
}

// NewJobService creates a job service.
// Parameters:
//   - jobs, tasks: durable store repositories.
//   - dispatcher: converter dispatcher.
//   - ws: on-disk job file trees.
//   - mirror: optional object storage for converted outputs; may be nil.
//   - log: base logger.
// Returns:
//   - *JobService: initialized service.
func NewJobService(
	jobs *repository.JobRepository,
	tasks *repository.FileTaskRepository,
	dispatcher *convert.Dispatcher,
	ws *storage.Workspace,
	mirror storage.ObjectStorage,
	log *logger.Logger,
) *JobService {
	return &JobService{
		jobs:       jobs,
		tasks:      tasks,
		dispatcher: dispatcher,
		ws:         ws,
		mirror:     mirror,
		log:        log,
	}
}

// CreateJob pre-creates a not-started job for the user's visit. Jobs that
// never receive files stay not-started and are filtered out of history by
// their zero file count.
func (s *JobService) CreateJob(ctx context.Context, userID string) (*domain.Job, error) {
	job, err := s.jobs.Create(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if err := s.ws.EnsureUploadDir(userID, job.ID); err != nil {
		logger.CtxError(ctx, "failed to create upload dir for job %s: %v", job.ID, err)
	}
	return job, nil
}

// ListJobs returns the user's conversion history, newest first.
func (s *JobService) ListJobs(ctx context.Context, userID string) ([]domain.Job, error) {
	return s.jobs.ListByUser(ctx, userID)
}

// StartConversion validates the request, persists the file count and
// pending status synchronously, then schedules one concurrent task per
// file and returns. Tasks run with no ordering guarantee and no cap; a
// slow conversion never blocks a fast one. The returned job reflects the
// pending state.
func (s *JobService) StartConversion(
	ctx context.Context,
	jobID, userID string,
	target string,
	converterName string,
	fileNames []string,
) (*domain.Job, error) {
	job, err := s.jobs.GetOwned(ctx, jobID, userID)
	if err != nil {
		return nil, err
	}

	if len(fileNames) == 0 {
		return nil, domain.ErrNoFiles
	}

	targetFormat := convert.NormalizeInputFormat(target)

	// Best-effort: a missing output dir surfaces as per-file failures
	// rather than a rejected request.
	if err := s.ws.EnsureOutputDir(userID, jobID); err != nil {
		logger.CtxError(ctx, "failed to create output dir for job %s: %v", jobID, err)
	}

	if err := s.jobs.MarkPending(ctx, jobID, len(fileNames)); err != nil {
		return nil, fmt.Errorf("mark job pending: %w", err)
	}
	job.Status = domain.JobStatusPending
	job.NumFiles = len(fileNames)

	// The batch must outlive the request.
	bg := logger.WithFields(context.WithoutCancel(ctx), logger.Fields{
		logger.FieldJobID:  jobID,
		logger.FieldUserID: userID,
	})

	s.running.Add(1)
	go s.runJob(bg, job, targetFormat, converterName, fileNames)

	logger.With(logger.Fields{logger.FieldCount: len(fileNames)}).
		Info(bg, "conversion started: target=%s", targetFormat)

	return job, nil
}

// runJob executes every task of one job and marks the job completed once
// all outcomes are on record.
func (s *JobService) runJob(
	ctx context.Context,
	job *domain.Job,
	target convert.Format,
	converterName string,
	fileNames []string,
) {
	defer s.running.Done()

	start := time.Now()

	var wg sync.WaitGroup
	var recorded atomic.Int64

	for _, fileName := range fileNames {
		wg.Add(1)
		go func(fileName string) {
			defer wg.Done()
			if s.runTask(ctx, job, target, converterName, fileName) {
				recorded.Add(1)
			}
		}(fileName)
	}

	wg.Wait()

	// Completion requires every task to have a terminal record. A persist
	// failure leaves the job pending; it shows as stuck in progress and is
	// not auto-recovered.
	if int(recorded.Load()) != len(fileNames) {
		logger.CtxWarn(ctx, "job left pending: %d of %d task outcomes recorded",
			recorded.Load(), len(fileNames))
		return
	}

	if err := s.jobs.MarkCompleted(ctx, job.ID); err != nil {
		logger.CtxError(ctx, "failed to mark job completed: %v", err)
		return
	}

	logger.With(logger.Fields{
		logger.FieldCount:      len(fileNames),
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Info(ctx, "job completed")
}

// runTask converts one file and records its terminal outcome. Returns
// whether the outcome made it into the store.
func (s *JobService) runTask(
	ctx context.Context,
	job *domain.Job,
	target convert.Format,
	converterName string,
	fileName string,
) bool {
	ctx = logger.WithField(ctx, logger.FieldFile, fileName)

	outputName := convert.OutputFileName(fileName, target)
	req := convert.Request{
		SourcePath:   s.ws.UploadPath(job.UserID, job.ID, fileName),
		SourceFormat: convert.SourceFormat(fileName),
		TargetFormat: target,
		TargetPath:   s.ws.OutputPath(job.UserID, job.ID, outputName),
	}

	status := domain.TaskStatusSuccess
	if err := s.dispatcher.Convert(ctx, req, converterName); err != nil {
		status = err.Error()
	} else if s.mirror != nil {
		if err := s.mirrorOutput(ctx, job, outputName, req.TargetPath); err != nil {
			logger.CtxError(ctx, "failed to mirror output: %v", err)
		}
	}

	task := &domain.FileTask{
		JobID:          job.ID,
		FileName:       fileName,
		OutputFileName: outputName,
		Status:         status,
	}
	if err := s.tasks.Record(ctx, task); err != nil {
		logger.CtxError(ctx, "failed to record task outcome: %v", err)
		return false
	}
	return true
}

// mirrorOutput copies one converted file to the object storage mirror
// under output/<user>/<job>/<file>.
func (s *JobService) mirrorOutput(ctx context.Context, job *domain.Job, outputName, outputPath string) error {
	f, err := os.Open(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	contentType := mime.TypeByExtension(filepath.Ext(outputName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := path.Join("output", job.UserID, job.ID, outputName)
	return s.mirror.Upload(ctx, key, f, info.Size(), contentType)
}

// Progress reports a job's aggregate and per-file status. Safe to poll:
// finished only grows until it reaches the total, and recorded outcomes
// never regress.
func (s *JobService) Progress(ctx context.Context, jobID, userID string) (*Progress, error) {
	job, err := s.jobs.GetOwned(ctx, jobID, userID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	p := &Progress{
		JobID:         job.ID,
		JobStatus:     job.Status,
		TotalFiles:    job.NumFiles,
		FinishedFiles: len(tasks),
		Files:         make([]FileProgress, 0, len(tasks)),
	}
	for _, t := range tasks {
		p.Files = append(p.Files, FileProgress{
			FileName:       t.FileName,
			OutputFileName: t.OutputFileName,
			Status:         t.Status,
		})
	}
	return p, nil
}

// Wait blocks until every scheduled conversion batch has finished. Used at
// shutdown and by tests; the public contract stays fire-and-forget.
func (s *JobService) Wait() {
	s.running.Wait()
}

// Progress is the poll response for one job.
type Progress struct {
	JobID         string           `json:"job_id"`
	JobStatus     domain.JobStatus `json:"job_status"`
	TotalFiles    int              `json:"total_files"`
	FinishedFiles int              `json:"finished_files"`
	Files         []FileProgress   `json:"files"`
}

// FileProgress is one finished file's outcome.
type FileProgress struct {
	FileName       string `json:"file_name"`
	OutputFileName string `json:"output_file_name"`
	Status         string `json:"status"`
}
