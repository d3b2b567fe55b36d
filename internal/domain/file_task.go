package domain

import "time"

// TaskStatusSuccess is the terminal status recorded for a successful
// conversion. Any other status value is the failure description for that
// file. Task rows are written exactly once, at conversion completion.
const TaskStatusSuccess = "success"

// FileTask represents one file's conversion within a job. The row is
// created when the task resolves, so the number of rows for a job is the
// number of finished files.
type FileTask struct {
	ID             string    `gorm:"type:text;primaryKey" json:"id"`
	JobID          string    `gorm:"type:text;not null;index" json:"job_id"`
	FileName       string    `gorm:"type:text;not null" json:"file_name"`
	OutputFileName string    `gorm:"type:text;not null" json:"output_file_name"`
	Status         string    `gorm:"type:text" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName returns the database table name for FileTask.
func (FileTask) TableName() string {
	return "file_names"
}

// Succeeded reports whether the task finished without error.
func (t *FileTask) Succeeded() bool {
	return t.Status == TaskStatusSuccess
}
