package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"sharpframes/internal/config"
	"sharpframes/internal/extraction"
	"sharpframes/internal/fileutil"
	"sharpframes/internal/frames"
	"sharpframes/internal/history"
	"sharpframes/internal/logging"
	"sharpframes/internal/scoring"
	"sharpframes/internal/selection"
	"sharpframes/internal/services"
	"sharpframes/internal/staging"
)

// Orchestrator drives one run through its lifecycle: extract and analyze
// once, then answer any number of previews before a single select-and-save.
// It owns the staging directory end to end and releases it on every exit
// path.
type Orchestrator struct {
	cfg       *config.Config
	logger    *slog.Logger
	extractor *extraction.Extractor
	scoreFn   scoring.ScoreFunc
	hist      *history.Store

	runID     string
	startedAt time.Time

	mu             sync.Mutex
	state          State
	result         *frames.ExtractionResult
	previewer      *selection.Previewer
	sourceFailures []extraction.SourceFailure
	scoringReport  scoring.Report
	inputPath      string
	inputType      extraction.InputType

	lock        *flock.Flock
	stagingPath string
	cleanupOnce sync.Once
	cleanupErr  error
	recorded    bool
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger for the run.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithHistory attaches a run history store. Nil disables recording.
func WithHistory(store *history.Store) Option {
	return func(o *Orchestrator) { o.hist = store }
}

// WithScoreFunc overrides the sharpness measure. The default is
// scoring.LaplacianVariance.
func WithScoreFunc(fn scoring.ScoreFunc) Option {
	return func(o *Orchestrator) { o.scoreFn = fn }
}

// New builds an orchestrator in the Idle state for one run.
func New(cfg *config.Config, opts ...Option) (*Orchestrator, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "new", "configuration is required", nil)
	}
	o := &Orchestrator{
		cfg:       cfg,
		runID:     uuid.NewString(),
		startedAt: time.Now(),
		state:     StateIdle,
		scoreFn:   scoring.LaplacianVariance,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	o.logger = o.logger.With(logging.String(logging.FieldRunID, o.runID))
	o.extractor = &extraction.Extractor{
		FFmpegBinary:  cfg.FFmpegBinary(),
		FFprobeBinary: cfg.FFprobeBinary(),
		FPS:           cfg.Extraction.FPS,
		OutputFormat:  cfg.Extraction.OutputFormat,
		Width:         cfg.Extraction.Width,
		JPEGQuality:   cfg.Extraction.JPEGQuality,
		Logger:        o.logger,
	}
	return o, nil
}

// RunID returns the unique identifier of this run.
func (o *Orchestrator) RunID() string { return o.runID }

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SourceFailures returns the per-source failures of a grouped extraction.
func (o *Orchestrator) SourceFailures() []extraction.SourceFailure {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sourceFailures
}

// ScoringReport returns the analysis phase summary.
func (o *Orchestrator) ScoringReport() scoring.Report {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.scoringReport
}

// FrameCount returns the number of scored candidate frames.
func (o *Orchestrator) FrameCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.result == nil {
		return 0
	}
	return len(o.result.Frames)
}

func (o *Orchestrator) transition(next State) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transitionLocked(next)
}

func (o *Orchestrator) transitionLocked(next State) error {
	if !o.state.canMoveTo(next) {
		return services.Wrap(services.ErrValidation, "pipeline", "transition",
			fmt.Sprintf("cannot move from %s to %s", o.state, next), nil)
	}
	o.logger.Debug("state transition",
		logging.String(logging.FieldPhase, string(next)),
		logging.String("from", string(o.state)))
	o.state = next
	return nil
}

// ExtractAndAnalyze runs the first phase: classify the input, extract its
// frames into staging, and score them. On success the orchestrator waits
// in AwaitingSelection with the scored sequence cached.
func (o *Orchestrator) ExtractAndAnalyze(ctx context.Context, inputPath string) error {
	if err := o.transition(StateExtracting); err != nil {
		return err
	}

	inputType, err := extraction.DetectInputType(inputPath)
	if err != nil {
		return o.fail(ctx, err)
	}
	o.mu.Lock()
	o.inputPath = inputPath
	o.inputType = inputType
	o.mu.Unlock()

	result, err := o.extract(ctx, inputPath, inputType)
	if err != nil {
		return o.fail(ctx, err)
	}

	frames.SortByIndex(result.Frames)
	if err := frames.ValidateSequence(result.Frames); err != nil {
		return o.fail(ctx, err)
	}

	if err := o.transition(StateAnalyzing); err != nil {
		return o.fail(ctx, err)
	}
	o.logger.Info("analyzing frames",
		logging.String(logging.FieldPhase, string(StateAnalyzing)),
		logging.Int("frames", len(result.Frames)),
		logging.Int("workers", o.cfg.Scoring.MaxWorkers))

	scored, report, err := scoring.ScoreFrames(ctx, result.Frames, o.scoreFn, scoring.Options{
		MaxWorkers:       o.cfg.Scoring.MaxWorkers,
		FailureThreshold: o.cfg.Scoring.FailureThreshold,
		Logger:           o.logger,
	})
	if err != nil {
		return o.fail(ctx, err)
	}
	result.Frames = scored

	o.mu.Lock()
	o.result = result
	o.previewer = selection.NewPreviewer(result.Frames)
	o.scoringReport = report
	o.mu.Unlock()

	if err := o.transition(StateAwaitingSelection); err != nil {
		return o.fail(ctx, err)
	}
	o.logger.Info("analysis complete",
		logging.Int("scored", report.Scored),
		logging.Int("failed", len(report.Failures)))
	return nil
}

func (o *Orchestrator) extract(ctx context.Context, inputPath string, inputType extraction.InputType) (*frames.ExtractionResult, error) {
	if inputType == extraction.InputImageDirectory {
		// Durable input, nothing to stage or lock.
		return o.extractor.LoadImageDirectory(inputPath)
	}

	lock, err := staging.AcquireLock(o.cfg.Paths.StagingDir)
	if err != nil {
		return nil, err
	}
	o.lock = lock

	runDir, err := staging.NewRunDir(o.cfg.Paths.StagingDir, o.runID)
	if err != nil {
		return nil, err
	}
	o.stagingPath = runDir.Path

	switch inputType {
	case extraction.InputVideoFile:
		return o.extractor.ExtractVideo(ctx, inputPath, runDir.Path)
	case extraction.InputVideoDirectory:
		videos, err := extraction.ListVideos(inputPath)
		if err != nil {
			return nil, err
		}
		result, failures, err := o.extractor.ExtractVideoGroup(ctx, videos, runDir.Path)
		if err != nil {
			return nil, err
		}
		o.mu.Lock()
		o.sourceFailures = failures
		o.mu.Unlock()
		if len(result.Frames) == 0 {
			return nil, services.Wrap(services.ErrPartialFailure, "pipeline", "extract",
				fmt.Sprintf("all %d sources failed to extract", len(failures)), nil)
		}
		return result, nil
	default:
		return nil, services.Wrap(services.ErrValidation, "pipeline", "extract",
			fmt.Sprintf("unsupported input type %q", inputType), nil)
	}
}

// Preview reports the exact selection count a strategy would produce
// against the cached scored sequence. Valid only in AwaitingSelection, any
// number of times.
func (o *Orchestrator) Preview(strategy selection.Strategy) (selection.Preview, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateAwaitingSelection {
		return selection.Preview{}, services.Wrap(services.ErrValidation, "pipeline", "preview",
			fmt.Sprintf("preview requires awaiting-selection state, currently %s", o.state), nil)
	}
	return o.previewer.Preview(strategy)
}

// Stats summarizes the cached score distribution.
func (o *Orchestrator) Stats() (selection.Stats, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateAwaitingSelection {
		return selection.Stats{}, services.Wrap(services.ErrValidation, "pipeline", "stats",
			fmt.Sprintf("stats require awaiting-selection state, currently %s", o.state), nil)
	}
	return o.previewer.Stats(), nil
}

// SelectAndSave applies the strategy to the cached sequence, copies the
// selected frames to outputDir, writes the run manifest, and terminates
// the run. When grouped extraction lost sources, the result is returned
// together with an aggregate partial-failure error.
func (o *Orchestrator) SelectAndSave(ctx context.Context, strategy selection.Strategy, outputDir string) (*RunResult, error) {
	o.mu.Lock()
	if o.state != StateAwaitingSelection {
		state := o.state
		o.mu.Unlock()
		return nil, services.Wrap(services.ErrValidation, "pipeline", "select",
			fmt.Sprintf("select requires awaiting-selection state, currently %s", state), nil)
	}
	if err := strategy.Validate(); err != nil {
		o.mu.Unlock()
		return nil, err
	}
	if err := o.transitionLocked(StateSelecting); err != nil {
		o.mu.Unlock()
		return nil, err
	}
	records := o.result.Frames
	o.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, o.fail(ctx, services.Wrap(services.ErrCancelled, "pipeline", "select", "run cancelled", err))
	}
	selected := strategy.Select(records)
	o.logger.Info("selection complete",
		logging.String("method", string(strategy.Method())),
		logging.Int("selected", len(selected)),
		logging.Int("candidates", len(records)))

	if err := o.transition(StateSaving); err != nil {
		return nil, o.fail(ctx, err)
	}
	saved, err := o.saveFrames(ctx, selected, outputDir)
	if err != nil {
		return nil, o.fail(ctx, err)
	}

	result := &RunResult{
		RunID:           o.runID,
		OutputDir:       outputDir,
		Saved:           saved,
		TotalCandidates: len(records),
		Outcome:         OutcomeCompleted,
		SourceFailures:  o.SourceFailures(),
	}
	if len(result.SourceFailures) > 0 {
		result.Outcome = OutcomePartial
	}

	manifestPath, err := o.writeManifest(result, strategy)
	if err != nil {
		return nil, o.fail(ctx, err)
	}
	result.ManifestPath = manifestPath

	if err := o.transition(StateCompleted); err != nil {
		return nil, o.fail(ctx, err)
	}
	o.cleanup(ctx)
	result.CleanupErr = o.cleanupErr
	o.record(ctx, string(strategy.Method()), len(saved), string(result.Outcome), outputDir)

	if result.Outcome == OutcomePartial {
		return result, o.partialFailureError(result.SourceFailures)
	}
	return result, nil
}

func (o *Orchestrator) saveFrames(ctx context.Context, selected []frames.FrameRecord, outputDir string) ([]SavedFrame, error) {
	if strings.TrimSpace(outputDir) == "" {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "save", "output directory is required", nil)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrResource, "pipeline", "save",
			fmt.Sprintf("create output directory %s", outputDir), err)
	}

	saved := make([]SavedFrame, 0, len(selected))
	for _, rec := range selected {
		if err := ctx.Err(); err != nil {
			return nil, services.Wrap(services.ErrCancelled, "pipeline", "save", "run cancelled", err)
		}
		name := rec.OutputName
		if name == "" {
			name = fmt.Sprintf("frame_%05d%s", rec.GlobalIndex, filepath.Ext(rec.SourcePath))
		}
		if err := fileutil.CopyFileVerified(rec.SourcePath, filepath.Join(outputDir, name)); err != nil {
			return nil, services.Wrap(services.ErrResource, "pipeline", "save",
				fmt.Sprintf("copy frame %d to %s", rec.GlobalIndex, name), err)
		}
		saved = append(saved, SavedFrame{
			GlobalIndex:    rec.GlobalIndex,
			SharpnessScore: rec.SharpnessScore,
			OutputName:     name,
			SourceGroup:    rec.SourceGroup,
		})
	}
	return saved, nil
}

func (o *Orchestrator) partialFailureError(failures []extraction.SourceFailure) error {
	sources := make([]string, len(failures))
	for i, f := range failures {
		sources[i] = filepath.Base(f.Source)
	}
	return services.Wrap(services.ErrPartialFailure, "pipeline", "run",
		fmt.Sprintf("%d of the input sources failed: %s", len(failures), strings.Join(sources, ", ")), nil)
}

// fail moves the run to its terminal failure state, cleans up, and hands
// the original error back. Cancellation lands in Cancelled, not Failed.
func (o *Orchestrator) fail(ctx context.Context, err error) error {
	next := StateFailed
	status := "failed"
	if errors.Is(err, services.ErrCancelled) || errors.Is(ctx.Err(), context.Canceled) {
		next = StateCancelled
		status = "cancelled"
	}
	if terr := o.transition(next); terr == nil {
		o.logger.Warn("run terminated",
			logging.String(logging.FieldPhase, string(next)),
			logging.Error(err))
	}
	o.cleanup(ctx)
	o.record(ctx, "", 0, status, "")
	return err
}

// Close terminates the run if it is still live, releasing staging and the
// lock. Closing an already-terminal orchestrator only releases what is
// left and is safe to defer unconditionally.
func (o *Orchestrator) Close(ctx context.Context) error {
	o.mu.Lock()
	terminal := o.state.Terminal()
	idle := o.state == StateIdle
	o.mu.Unlock()

	if !terminal && !idle {
		_ = o.transition(StateCancelled)
		o.record(ctx, "", 0, "cancelled", "")
	}
	o.cleanup(ctx)
	return o.cleanupErr
}

// cleanup releases the staging directory and lock exactly once. Failures
// are retried with backoff and, when still unresolved, kept for reporting
// without failing an otherwise successful run.
func (o *Orchestrator) cleanup(ctx context.Context) {
	o.cleanupOnce.Do(func() {
		if tempDir := o.stagingPath; tempDir != "" {
			policy := staging.RetryPolicy{
				Attempts: o.cfg.Cleanup.RemoveRetries,
				Backoff:  time.Duration(o.cfg.Cleanup.RemoveBackoffMS) * time.Millisecond,
			}
			// Cleanup must run even when ctx is already cancelled.
			if err := staging.RemoveWithRetry(context.WithoutCancel(ctx), tempDir, policy, o.logger); err != nil {
				o.cleanupErr = err
				o.logger.Warn("staging cleanup unresolved", logging.Error(err))
			}
		}
		if o.lock != nil {
			if err := o.lock.Unlock(); err != nil && o.cleanupErr == nil {
				o.cleanupErr = err
			}
		}
	})
}

func (o *Orchestrator) record(ctx context.Context, method string, selected int, status, outputDir string) {
	if o.hist == nil || o.recorded {
		return
	}
	o.recorded = true

	o.mu.Lock()
	rec := history.Record{
		RunID:       o.runID,
		InputPath:   o.inputPath,
		InputKind:   string(o.inputType),
		Method:      method,
		TotalFrames: o.scoringReport.Total,
		Selected:    selected,
		FailedSrcs:  len(o.sourceFailures),
		Status:      status,
		OutputDir:   outputDir,
		StartedAt:   o.startedAt,
		FinishedAt:  time.Now(),
	}
	o.mu.Unlock()

	if err := o.hist.RecordRun(context.WithoutCancel(ctx), rec); err != nil {
		o.logger.Warn("history record failed", logging.Error(err))
	}
}
