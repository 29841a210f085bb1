package staging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sharpframes/internal/logging"
	"sharpframes/internal/services"
)

// RetryPolicy bounds the cleanup retry loop. Extraction subprocesses can
// hold frame file handles briefly after exiting, so a single RemoveAll
// attempt is not enough.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// RemoveWithRetry deletes path, retrying with linear backoff on transient
// failure. A missing path counts as success. The returned error wraps
// ErrResource only after every attempt failed.
func RemoveWithRetry(ctx context.Context, path string, policy RetryPolicy, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	attempts := max(policy.Attempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := os.RemoveAll(path)
		if err == nil || os.IsNotExist(err) {
			return nil
		}
		lastErr = err
		logger.Warn("staging cleanup attempt failed",
			logging.String("path", path),
			logging.Int("attempt", attempt),
			logging.Error(err))
		if attempt == attempts {
			break
		}
		select {
		case <-time.After(policy.Backoff * time.Duration(attempt)):
		case <-ctx.Done():
			return services.Wrap(services.ErrCancelled, "staging", "cleanup", "cleanup cancelled", ctx.Err())
		}
	}
	return services.Wrap(services.ErrResource, "staging", "cleanup",
		fmt.Sprintf("remove staging directory %s after %d attempts", path, attempts), lastErr)
}

// CleanStaleResult contains the outcome of a stale directory sweep.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes run directories older than maxAge, catching leftovers
// from runs that died before their own cleanup could finish.
func CleanStale(ctx context.Context, stagingRoot string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}
	if logger == nil {
		logger = logging.NewNop()
	}

	stagingRoot = strings.TrimSpace(stagingRoot)
	if stagingRoot == "" {
		return result
	}

	entries, err := os.ReadDir(stagingRoot)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: stagingRoot, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			return result
		}
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "run-") {
			continue
		}

		dirPath := filepath.Join(stagingRoot, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			logger.Warn("failed to remove stale staging directory",
				logging.String("path", dirPath),
				logging.Error(err))
		} else {
			result.Removed = append(result.Removed, dirPath)
			logger.Info("removed stale staging directory",
				logging.String("path", dirPath),
				logging.Duration("age", time.Since(info.ModTime())))
		}
	}
	return result
}

// DirInfo contains metadata about a staging run directory.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// ListDirectories returns all run directories in the staging root with
// their metadata.
func ListDirectories(stagingRoot string) ([]DirInfo, error) {
	stagingRoot = strings.TrimSpace(stagingRoot)
	if stagingRoot == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(stagingRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "run-") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirPath := filepath.Join(stagingRoot, entry.Name())
		size, _ := dirSize(dirPath)
		dirs = append(dirs, DirInfo{
			Name:    entry.Name(),
			Path:    dirPath,
			ModTime: info.ModTime(),
			Size:    size,
		})
	}
	return dirs, nil
}

func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // best effort
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
