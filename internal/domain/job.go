package domain

import "time"

// JobStatus represents the lifecycle state of a conversion job.
// A job moves not-started -> pending -> completed and never backwards.
type JobStatus string

const (
	JobStatusNotStarted JobStatus = "not-started"
	JobStatusPending    JobStatus = "pending"
	JobStatusCompleted  JobStatus = "completed"
)

// Job represents one user-initiated batch conversion request. A row is
// pre-created when the user lands, before any files exist; rows with
// NumFiles == 0 are filtered out of history listings.
type Job struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	UserID      string    `gorm:"type:text;not null;index" json:"user_id"`
	Status      JobStatus `gorm:"type:text;default:'not-started'" json:"status"`
	NumFiles    int       `gorm:"default:0" json:"num_files"`
	DateCreated time.Time `gorm:"index" json:"date_created"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Job.
func (Job) TableName() string {
	return "jobs"
}
