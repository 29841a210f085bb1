package preflight

import (
	"context"

	"sharpframes/internal/config"
	"sharpframes/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the environment checks a run depends on: staging and
// output directory access, free disk space for extraction, and the
// external binaries.
func RunAll(ctx context.Context, cfg *config.Config, outputDir string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckFreeSpace("Staging free space", cfg.Paths.StagingDir, minStagingBytes),
	}
	if outputDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", outputDir))
	}

	for _, status := range deps.CheckBinaries(deps.Default(cfg.FFmpegBinary(), cfg.FFprobeBinary())) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Command}
		if !status.Available {
			result.Detail = status.Detail
		}
		results = append(results, result)
	}
	return results
}

// AllPassed reports whether every check succeeded.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
