package scoring

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"

	_ "image/jpeg"
	_ "image/png"

	"sharpframes/internal/frames"
	"sharpframes/internal/logging"
	"sharpframes/internal/services"
)

// ScoreFunc maps a decoded frame to a sharpness score. Implementations must
// be pure: no side effects, same image always yields the same score.
type ScoreFunc func(img image.Image) float64

// Options bound the scoring run. MaxWorkers is an explicit cap: the pool
// never sizes itself from the host core count.
type Options struct {
	// MaxWorkers is the number of concurrent scoring workers, at least 1.
	MaxWorkers int
	// FailureThreshold is the fraction of frames (0..1) allowed to fail
	// before the whole run is considered broken input.
	FailureThreshold float64
	Logger           *slog.Logger
}

func (o Options) validate() error {
	if o.MaxWorkers < 1 {
		return services.Wrap(services.ErrValidation, "scoring", "options",
			fmt.Sprintf("maxWorkers must be at least 1, got %d", o.MaxWorkers), nil)
	}
	if o.FailureThreshold < 0 || o.FailureThreshold > 1 {
		return services.Wrap(services.ErrValidation, "scoring", "options",
			fmt.Sprintf("failureThreshold must be between 0 and 1, got %g", o.FailureThreshold), nil)
	}
	return nil
}

// Failure records one frame that could not be scored.
type Failure struct {
	GlobalIndex int
	SourcePath  string
	Err         error
}

// Report summarizes a scoring run, including per-frame failures that did
// not abort it.
type Report struct {
	Total    int
	Scored   int
	Failures []Failure
}

// ScoreFrames scores every frame in records using fn, fanning the work out
// over a bounded pool. The returned sequence is ordered by GlobalIndex with
// failed frames removed. It fails outright when the failure fraction
// exceeds Options.FailureThreshold, when every frame fails, or when ctx is
// cancelled between frames.
func ScoreFrames(ctx context.Context, records []frames.FrameRecord, fn ScoreFunc, opts Options) ([]frames.FrameRecord, Report, error) {
	if err := opts.validate(); err != nil {
		return nil, Report{}, err
	}
	if fn == nil {
		return nil, Report{}, services.Wrap(services.ErrValidation, "scoring", "options", "score function is required", nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	report := Report{Total: len(records)}
	if len(records) == 0 {
		return nil, report, nil
	}

	scores := make([]float64, len(records))
	failures := make([]error, len(records))

	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := min(opts.MaxWorkers, len(records))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				scores[i], failures[i] = scoreOne(records[i].SourcePath, fn)
			}
		}()
	}

feed:
	for i := range records {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, report, services.Wrap(services.ErrCancelled, "scoring", "score", "scoring cancelled", err)
	}

	out := make([]frames.FrameRecord, 0, len(records))
	for i, rec := range records {
		if failures[i] != nil {
			report.Failures = append(report.Failures, Failure{
				GlobalIndex: rec.GlobalIndex,
				SourcePath:  rec.SourcePath,
				Err:         failures[i],
			})
			logger.Warn("frame scoring failed",
				logging.Int("global_index", rec.GlobalIndex),
				logging.String("source_path", rec.SourcePath),
				logging.Error(failures[i]))
			continue
		}
		rec.SharpnessScore = scores[i]
		rec.Scored = true
		out = append(out, rec)
	}
	report.Scored = len(out)

	failed := len(report.Failures)
	if failed == len(records) {
		return nil, report, services.Wrap(services.ErrScoring, "scoring", "score",
			fmt.Sprintf("all %d frames failed to score", failed), nil)
	}
	if float64(failed)/float64(len(records)) > opts.FailureThreshold {
		return nil, report, services.Wrap(services.ErrScoring, "scoring", "score",
			fmt.Sprintf("%d of %d frames failed to score, above the %.0f%% failure threshold",
				failed, len(records), opts.FailureThreshold*100), nil)
	}
	return out, report, nil
}

func scoreOne(path string, fn ScoreFunc) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("decode frame: %w", err)
	}
	return fn(img), nil
}
