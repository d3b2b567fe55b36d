package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/eskil/fileforge/internal/convert"
	"github.com/eskil/fileforge/internal/domain"
	"github.com/eskil/fileforge/internal/logger"
	"github.com/eskil/fileforge/internal/repository"
	"github.com/eskil/fileforge/internal/storage"
)

var testDBSeq atomic.Int64

// newTestDB opens a fresh in-memory SQLite database with the schema
// migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared&_busy_timeout=5000", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// stubConverter converts svg to png without touching the filesystem,
// optionally failing for selected file paths.
type stubConverter struct {
	failOn string
	calls  atomic.Int64
}

func (s *stubConverter) Name() string { return "stub" }

func (s *stubConverter) Capabilities() convert.Capabilities {
	return convert.Capabilities{
		Inputs: []convert.Format{"svg"},
		Outputs: map[convert.Format][]convert.Format{
			"svg": {"png"},
		},
	}
}

func (s *stubConverter) Convert(ctx context.Context, req convert.Request) error {
	s.calls.Add(1)
	if s.failOn != "" && strings.HasSuffix(req.SourcePath, s.failOn) {
		return errors.New("synthetic converter failure")
	}
	return nil
}

type testEnv struct {
	svc   *JobService
	jobs  *repository.JobRepository
	tasks *repository.FileTaskRepository
	ws    *storage.Workspace
	stub  *stubConverter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	jobs := repository.NewJobRepository(db)
	tasks := repository.NewFileTaskRepository(db)
	ws := storage.NewWorkspace(t.TempDir())
	stub := &stubConverter{}
	dispatcher := convert.NewDispatcher(convert.NewRegistry(stub), time.Minute)
	svc := NewJobService(jobs, tasks, dispatcher, ws, nil, logger.Default())
	return &testEnv{svc: svc, jobs: jobs, tasks: tasks, ws: ws, stub: stub}
}

func TestStartConversionTwoFiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	job, err := env.svc.CreateJob(ctx, "user-1")
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	if job.Status != domain.JobStatusNotStarted {
		t.Fatalf("new job status = %q, want not-started", job.Status)
	}

	ack, err := env.svc.StartConversion(ctx, job.ID, "user-1", "png", "", []string{"a.svg", "b.svg"})
	if err != nil {
		t.Fatalf("StartConversion failed: %v", err)
	}
	if ack.Status != domain.JobStatusPending {
		t.Errorf("ack status = %q, want pending", ack.Status)
	}
	if ack.NumFiles != 2 {
		t.Errorf("ack num_files = %d, want 2", ack.NumFiles)
	}

	env.svc.Wait()

	progress, err := env.svc.Progress(ctx, job.ID, "user-1")
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	if progress.JobStatus != domain.JobStatusCompleted {
		t.Errorf("job status = %q, want completed", progress.JobStatus)
	}
	if progress.TotalFiles != 2 || progress.FinishedFiles != 2 {
		t.Errorf("progress = %d/%d, want 2/2", progress.FinishedFiles, progress.TotalFiles)
	}

	outputs := make(map[string]string)
	for _, f := range progress.Files {
		outputs[f.FileName] = f.OutputFileName
		if f.Status != domain.TaskStatusSuccess {
			t.Errorf("file %s status = %q, want success", f.FileName, f.Status)
		}
	}
	if outputs["a.svg"] != "a.png" || outputs["b.svg"] != "b.png" {
		t.Errorf("output names = %v, want a.png and b.png", outputs)
	}
}

func TestStartConversionEmptyFileList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	job, err := env.svc.CreateJob(ctx, "user-1")
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	_, err = env.svc.StartConversion(ctx, job.ID, "user-1", "png", "", nil)
	if !errors.Is(err, domain.ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}

	// The job must be left untouched: no status change, no task records.
	got, err := env.jobs.GetOwned(ctx, job.ID, "user-1")
	if err != nil {
		t.Fatalf("GetOwned failed: %v", err)
	}
	if got.Status != domain.JobStatusNotStarted || got.NumFiles != 0 {
		t.Errorf("job changed: status=%q num_files=%d", got.Status, got.NumFiles)
	}
	count, err := env.tasks.CountByJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("CountByJob failed: %v", err)
	}
	if count != 0 {
		t.Errorf("task records created: %d, want 0", count)
	}
}

func TestStartConversionPartialFailure(t *testing.T) {
	env := newTestEnv(t)
	env.stub.failOn = "bad.svg"
	ctx := context.Background()

	job, err := env.svc.CreateJob(ctx, "user-1")
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	_, err = env.svc.StartConversion(ctx, job.ID, "user-1", "png", "", []string{"one.svg", "bad.svg", "two.svg"})
	if err != nil {
		t.Fatalf("StartConversion failed: %v", err)
	}
	env.svc.Wait()

	progress, err := env.svc.Progress(ctx, job.ID, "user-1")
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}

	// One failure does not prevent siblings from finishing and the job
	// still completes with all three files accounted for.
	if progress.JobStatus != domain.JobStatusCompleted {
		t.Errorf("job status = %q, want completed", progress.JobStatus)
	}
	if progress.FinishedFiles != 3 {
		t.Errorf("finished = %d, want 3", progress.FinishedFiles)
	}

	failures := 0
	for _, f := range progress.Files {
		if f.Status == domain.TaskStatusSuccess {
			continue
		}
		failures++
		if f.FileName != "bad.svg" {
			t.Errorf("unexpected failure for %s: %s", f.FileName, f.Status)
		}
		if !strings.Contains(f.Status, "synthetic converter failure") {
			t.Errorf("failure status should carry the converter error, got %q", f.Status)
		}
	}
	if failures != 1 {
		t.Errorf("failures = %d, want 1", failures)
	}
}

func TestStartConversionUnsupportedTarget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	job, err := env.svc.CreateJob(ctx, "user-1")
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	_, err = env.svc.StartConversion(ctx, job.ID, "user-1", "exe", "", []string{"a.svg"})
	if err != nil {
		t.Fatalf("StartConversion failed: %v", err)
	}
	env.svc.Wait()

	progress, err := env.svc.Progress(ctx, job.ID, "user-1")
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}

	// Unsupported pairs are terminal per-file failures, not batch errors.
	if progress.JobStatus != domain.JobStatusCompleted {
		t.Errorf("job status = %q, want completed", progress.JobStatus)
	}
	if len(progress.Files) != 1 {
		t.Fatalf("files = %d, want 1", len(progress.Files))
	}
	if !strings.Contains(progress.Files[0].Status, "no converter available") {
		t.Errorf("status should explain the missing converter, got %q", progress.Files[0].Status)
	}
}

func TestStartConversionUnknownJob(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.StartConversion(context.Background(), "nope", "user-1", "png", "", []string{"a.svg"})
	if !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestProgressScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	job, err := env.svc.CreateJob(ctx, "user-1")
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	if _, err := env.svc.Progress(ctx, job.ID, "user-2"); !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("cross-user progress should be ErrJobNotFound, got %v", err)
	}
}

func TestProgressMonotonic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	job, err := env.svc.CreateJob(ctx, "user-1")
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	files := []string{"a.svg", "b.svg", "c.svg", "d.svg", "e.svg"}
	if _, err := env.svc.StartConversion(ctx, job.ID, "user-1", "png", "", files); err != nil {
		t.Fatalf("StartConversion failed: %v", err)
	}

	// finished never exceeds total and never decreases while polling.
	last := 0
	for i := 0; i < 50; i++ {
		progress, err := env.svc.Progress(ctx, job.ID, "user-1")
		if err != nil {
			t.Fatalf("Progress failed: %v", err)
		}
		if progress.FinishedFiles > progress.TotalFiles {
			t.Fatalf("finished %d exceeds total %d", progress.FinishedFiles, progress.TotalFiles)
		}
		if progress.FinishedFiles < last {
			t.Fatalf("finished regressed from %d to %d", last, progress.FinishedFiles)
		}
		if progress.JobStatus == domain.JobStatusCompleted && progress.FinishedFiles != progress.TotalFiles {
			t.Fatalf("completed with %d/%d files", progress.FinishedFiles, progress.TotalFiles)
		}
		last = progress.FinishedFiles
		time.Sleep(time.Millisecond)
	}

	env.svc.Wait()

	progress, err := env.svc.Progress(ctx, job.ID, "user-1")
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	if progress.JobStatus != domain.JobStatusCompleted || progress.FinishedFiles != len(files) {
		t.Errorf("final progress %d/%d status=%q", progress.FinishedFiles, progress.TotalFiles, progress.JobStatus)
	}
}

func TestListJobsFiltersEmptyJobs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// A landing visit that never submits files.
	if _, err := env.svc.CreateJob(ctx, "user-1"); err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	job, err := env.svc.CreateJob(ctx, "user-1")
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	if _, err := env.svc.StartConversion(ctx, job.ID, "user-1", "png", "", []string{"a.svg"}); err != nil {
		t.Fatalf("StartConversion failed: %v", err)
	}
	env.svc.Wait()

	jobs, err := env.svc.ListJobs(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("history lists %d jobs, want 1 (zero-file jobs filtered)", len(jobs))
	}
	if jobs[0].ID != job.ID {
		t.Errorf("history lists job %s, want %s", jobs[0].ID, job.ID)
	}
}
