package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWorkspacePathsDeterministic(t *testing.T) {
	ws := NewWorkspace("/data")

	if got := ws.UploadPath("u1", "j1", "a.svg"); got != filepath.Join("/data", "uploads", "u1", "j1", "a.svg") {
		t.Errorf("UploadPath = %q", got)
	}
	if got := ws.OutputPath("u1", "j1", "a.png"); got != filepath.Join("/data", "output", "u1", "j1", "a.png") {
		t.Errorf("OutputPath = %q", got)
	}

	// Distinct (user, job) pairs never share a path.
	paths := map[string]bool{
		ws.UploadPath("u1", "j1", "a.svg"): true,
		ws.UploadPath("u1", "j2", "a.svg"): true,
		ws.UploadPath("u2", "j1", "a.svg"): true,
	}
	if len(paths) != 3 {
		t.Errorf("path collisions across jobs/users: %v", paths)
	}
}

func TestWorkspaceRemoveJobTrees(t *testing.T) {
	ws := NewWorkspace(t.TempDir())

	if err := ws.EnsureUploadDir("u1", "j1"); err != nil {
		t.Fatalf("EnsureUploadDir failed: %v", err)
	}
	if err := ws.EnsureOutputDir("u1", "j1"); err != nil {
		t.Fatalf("EnsureOutputDir failed: %v", err)
	}
	if err := os.WriteFile(ws.UploadPath("u1", "j1", "a.svg"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := ws.RemoveJobTrees("u1", "j1"); err != nil {
		t.Fatalf("RemoveJobTrees failed: %v", err)
	}
	if _, err := os.Stat(ws.UploadDir("u1", "j1")); !os.IsNotExist(err) {
		t.Error("upload tree still present")
	}
	if _, err := os.Stat(ws.OutputDir("u1", "j1")); !os.IsNotExist(err) {
		t.Error("output tree still present")
	}

	// Removing an absent job is not an error.
	if err := ws.RemoveJobTrees("u1", "missing"); err != nil {
		t.Errorf("RemoveJobTrees on missing job: %v", err)
	}
}
