// Package testsupport holds helpers shared by package tests: temp-dir
// seeded configs and synthetic frame images.
package testsupport

import (
	"path/filepath"
	"testing"

	"sharpframes/internal/config"
)

// NewConfig produces a config seeded with unique temp directories per test
// and worker/retry settings sized for fast test runs.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.HistoryDB = filepath.Join(base, "history.db")
	cfg.Scoring.MaxWorkers = 2
	cfg.Cleanup.RemoveRetries = 2
	cfg.Cleanup.RemoveBackoffMS = 1
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}
