package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eskil/fileforge/internal/domain"
)

// FileTaskRepository handles per-file task records. Each record is written
// exactly once, when the file's conversion resolves.
type FileTaskRepository struct {
	db *gorm.DB
}

// NewFileTaskRepository creates a new FileTaskRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *FileTaskRepository: repository instance bound to db.
func NewFileTaskRepository(db *gorm.DB) *FileTaskRepository {
	return &FileTaskRepository{db: db}
}

// Record persists one task's terminal outcome.
func (r *FileTaskRepository) Record(ctx context.Context, task *domain.FileTask) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(task).Error
}

// ListByJob returns a job's finished tasks in insertion order.
func (r *FileTaskRepository) ListByJob(ctx context.Context, jobID string) ([]domain.FileTask, error) {
	var tasks []domain.FileTask
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

// CountByJob returns how many tasks of a job have resolved.
func (r *FileTaskRepository) CountByJob(ctx context.Context, jobID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FileTask{}).
		Where("job_id = ?", jobID).
		Count(&count).Error
	return count, err
}

// DeleteByJob removes every task record of a job.
func (r *FileTaskRepository) DeleteByJob(ctx context.Context, jobID string) error {
	return r.db.WithContext(ctx).Delete(&domain.FileTask{}, "job_id = ?", jobID).Error
}
