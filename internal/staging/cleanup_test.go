package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewRunDirCreatesDirectory(t *testing.T) {
	root := t.TempDir()
	run, err := NewRunDir(root, "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(run.Path)
	if err != nil || !info.IsDir() {
		t.Fatalf("staging dir not created: %v", err)
	}
	if filepath.Base(run.Path) != "run-abc123" {
		t.Fatalf("unexpected dir name %s", run.Path)
	}
}

func TestNewRunDirRejectsEmptyRoot(t *testing.T) {
	if _, err := NewRunDir("  ", "abc"); err == nil {
		t.Fatal("expected error for empty staging root")
	}
}

func TestRemoveWithRetryRemoves(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "run-x")
	if err := os.MkdirAll(filepath.Join(dir, "frames"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "frames", "f.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	err := RemoveWithRetry(context.Background(), dir, RetryPolicy{Attempts: 3, Backoff: time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("directory still present: %v", err)
	}
}

func TestRemoveWithRetryMissingPathSucceeds(t *testing.T) {
	err := RemoveWithRetry(context.Background(), filepath.Join(t.TempDir(), "never-existed"), RetryPolicy{Attempts: 2, Backoff: time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCleanStaleRemovesOldRunDirs(t *testing.T) {
	root := t.TempDir()
	stale := filepath.Join(root, "run-old")
	fresh := filepath.Join(root, "run-new")
	unrelated := filepath.Join(root, "keepme")
	for _, dir := range []string{stale, fresh, unrelated} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := os.Chtimes(unrelated, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	result := CleanStale(context.Background(), root, 24*time.Hour, nil)
	if len(result.Removed) != 1 || result.Removed[0] != stale {
		t.Fatalf("unexpected removals %v", result.Removed)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh run dir removed: %v", err)
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Fatalf("non-run directory removed: %v", err)
	}
}

func TestCleanStaleMissingRoot(t *testing.T) {
	result := CleanStale(context.Background(), filepath.Join(t.TempDir(), "absent"), time.Hour, nil)
	if len(result.Removed) != 0 || len(result.Errors) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestListDirectories(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "run-1")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "frame.jpg"), []byte("abcd"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Mkdir(filepath.Join(root, "other"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	dirs, err := ListDirectories(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dirs) != 1 || dirs[0].Name != "run-1" || dirs[0].Size != 4 {
		t.Fatalf("unexpected listing %+v", dirs)
	}
}

func TestAcquireLockConflict(t *testing.T) {
	root := t.TempDir()
	lock, err := AcquireLock(root)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	defer lock.Unlock()

	if _, err := AcquireLock(root); err == nil {
		t.Fatal("expected second lock to fail")
	}
}
