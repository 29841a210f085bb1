package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"sharpframes/internal/services"
)

// RunDir is the on-disk staging area for one extraction run. It is created
// under the configured staging root and removed when the run terminates, on
// every exit path.
type RunDir struct {
	Path  string
	RunID string
}

// NewRunDir creates the staging directory for runID. Creation failure is a
// terminal resource error: without staging there is nowhere to extract.
func NewRunDir(stagingRoot, runID string) (*RunDir, error) {
	stagingRoot = strings.TrimSpace(stagingRoot)
	if stagingRoot == "" {
		return nil, services.Wrap(services.ErrValidation, "staging", "create", "staging root is not configured", nil)
	}
	path := filepath.Join(stagingRoot, "run-"+runID)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, services.Wrap(services.ErrResource, "staging", "create",
			fmt.Sprintf("create staging directory %s", path), err)
	}
	return &RunDir{Path: path, RunID: runID}, nil
}

// AcquireLock takes the per-staging-root lock that keeps concurrent runs
// from sweeping each other's directories. The caller must Unlock it.
func AcquireLock(stagingRoot string) (*flock.Flock, error) {
	if err := os.MkdirAll(stagingRoot, 0o755); err != nil {
		return nil, services.Wrap(services.ErrResource, "staging", "lock",
			fmt.Sprintf("create staging root %s", stagingRoot), err)
	}
	lock := flock.New(filepath.Join(stagingRoot, ".sharpframes.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrResource, "staging", "lock", "acquire staging lock", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrResource, "staging", "lock",
			"staging directory is locked by another sharpframes process", nil)
	}
	return lock, nil
}
