package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace lays out the on-disk file trees for jobs. Paths are a
// deterministic function of (user id, job id, file name), so two jobs never
// share storage:
//
//	<data>/uploads/<user>/<job>/<file>
//	<data>/output/<user>/<job>/<file>
type Workspace struct {
	dataDir string
}

// NewWorkspace creates a workspace rooted at dataDir.
func NewWorkspace(dataDir string) *Workspace {
	return &Workspace{dataDir: dataDir}
}

// UploadDir returns the upload tree for one job.
func (w *Workspace) UploadDir(userID, jobID string) string {
	return filepath.Join(w.dataDir, "uploads", userID, jobID)
}

// OutputDir returns the output tree for one job.
func (w *Workspace) OutputDir(userID, jobID string) string {
	return filepath.Join(w.dataDir, "output", userID, jobID)
}

// UploadPath returns the path of one uploaded file.
func (w *Workspace) UploadPath(userID, jobID, fileName string) string {
	return filepath.Join(w.UploadDir(userID, jobID), fileName)
}

// OutputPath returns the path of one converted file.
func (w *Workspace) OutputPath(userID, jobID, fileName string) string {
	return filepath.Join(w.OutputDir(userID, jobID), fileName)
}

// EnsureOutputDir creates the output tree for a job.
func (w *Workspace) EnsureOutputDir(userID, jobID string) error {
	if err := os.MkdirAll(w.OutputDir(userID, jobID), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

// EnsureUploadDir creates the upload tree for a job.
func (w *Workspace) EnsureUploadDir(userID, jobID string) error {
	if err := os.MkdirAll(w.UploadDir(userID, jobID), 0755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	return nil
}

// RemoveJobTrees deletes both trees of a job. Missing directories are not
// an error.
func (w *Workspace) RemoveJobTrees(userID, jobID string) error {
	var firstErr error
	for _, dir := range []string{w.OutputDir(userID, jobID), w.UploadDir(userID, jobID)} {
		if err := os.RemoveAll(dir); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
