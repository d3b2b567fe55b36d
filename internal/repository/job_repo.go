package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eskil/fileforge/internal/domain"
)

// JobRepository handles job data operations.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *JobRepository: repository instance bound to db.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a fresh not-started job for the user.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: owning user.
// Returns:
//   - *domain.Job: created job record.
//   - error: non-nil if the insert fails.
func (r *JobRepository) Create(ctx context.Context, userID string) (*domain.Job, error) {
	job := &domain.Job{
		ID:          uuid.New().String(),
		UserID:      userID,
		Status:      domain.JobStatusNotStarted,
		DateCreated: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

// GetOwned retrieves a job by ID, scoped to its owning user. Jobs are never
// visible across users.
func (r *JobRepository) GetOwned(ctx context.Context, jobID, userID string) (*domain.Job, error) {
	var job domain.Job
	err := r.db.WithContext(ctx).
		First(&job, "id = ? AND user_id = ?", jobID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkPending records the dispatched file count and moves the job to
// pending. The count is immutable from this point on.
func (r *JobRepository) MarkPending(ctx context.Context, jobID string, numFiles int) error {
	return r.db.WithContext(ctx).Model(&domain.Job{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"num_files": numFiles,
			"status":    domain.JobStatusPending,
		}).Error
}

// MarkCompleted moves a pending job to completed. The status guard makes
// the transition idempotent under concurrent completion.
func (r *JobRepository) MarkCompleted(ctx context.Context, jobID string) error {
	return r.db.WithContext(ctx).Model(&domain.Job{}).
		Where("id = ? AND status = ?", jobID, domain.JobStatusPending).
		Update("status", domain.JobStatusCompleted).Error
}

// ListByUser returns the user's jobs that received files, newest first.
// Landing-page pre-created jobs with num_files = 0 are filtered out here.
func (r *JobRepository) ListByUser(ctx context.Context, userID string) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND num_files > 0", userID).
		Order("date_created DESC").
		Find(&jobs).Error
	return jobs, err
}

// FindExpired returns jobs created before the cutoff. When finishedOnly is
// set, jobs still pending are exempt.
func (r *JobRepository) FindExpired(ctx context.Context, cutoff time.Time, finishedOnly bool) ([]domain.Job, error) {
	q := r.db.WithContext(ctx).Where("date_created < ?", cutoff)
	if finishedOnly {
		q = q.Where("status IN ?", []domain.JobStatus{
			domain.JobStatusNotStarted,
			domain.JobStatusCompleted,
		})
	}
	var jobs []domain.Job
	err := q.Find(&jobs).Error
	return jobs, err
}

// Delete removes a job row.
func (r *JobRepository) Delete(ctx context.Context, jobID string) error {
	return r.db.WithContext(ctx).Delete(&domain.Job{}, "id = ?", jobID).Error
}
