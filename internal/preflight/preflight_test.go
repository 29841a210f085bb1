package preflight

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(path string) error {
	return os.WriteFile(path, []byte("x"), 0o644)
}

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("Staging", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got %+v", result)
	}

	result = CheckDirectoryAccess("Staging", filepath.Join(dir, "missing"))
	if result.Passed {
		t.Fatalf("expected failure for missing dir, got %+v", result)
	}
}

func TestCheckDirectoryAccessFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := writeFile(file); err != nil {
		t.Fatalf("write: %v", err)
	}
	result := CheckDirectoryAccess("Staging", file)
	if result.Passed {
		t.Fatalf("expected failure for regular file, got %+v", result)
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	result := CheckFreeSpace("Space", dir, 1)
	if !result.Passed {
		t.Fatalf("expected pass for 1 byte minimum, got %+v", result)
	}

	result = CheckFreeSpace("Space", dir, ^uint64(0))
	if result.Passed {
		t.Fatalf("expected failure for absurd minimum, got %+v", result)
	}
}

func TestAllPassed(t *testing.T) {
	if !AllPassed([]Result{{Passed: true}, {Passed: true}}) {
		t.Fatal("expected all passed")
	}
	if AllPassed([]Result{{Passed: true}, {Passed: false}}) {
		t.Fatal("expected failure to propagate")
	}
	if !AllPassed(nil) {
		t.Fatal("expected empty results to pass")
	}
}
