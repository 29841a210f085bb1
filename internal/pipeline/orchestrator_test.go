package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"sharpframes/internal/config"
	"sharpframes/internal/history"
	"sharpframes/internal/scoring"
	"sharpframes/internal/selection"
	"sharpframes/internal/services"
	"sharpframes/internal/testsupport"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return testsupport.NewConfig(t)
}

// writeImageDir creates count PNG images whose widths increase with their
// name order, so a width-based score function ranks them deterministically.
func writeImageDir(t *testing.T, count int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < count; i++ {
		img := image.NewGray(image.Rect(0, 0, 10+i, 8))
		f, err := os.Create(filepath.Join(dir, fmt.Sprintf("img_%02d.png", i)))
		if err != nil {
			t.Fatalf("create image: %v", err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatalf("encode image: %v", err)
		}
		_ = f.Close()
	}
	return dir
}

func widthScore(img image.Image) float64 {
	return float64(img.Bounds().Dx())
}

func TestImageDirectoryLifecycle(t *testing.T) {
	cfg := testConfig(t)
	inputDir := writeImageDir(t, 6)
	outputDir := filepath.Join(t.TempDir(), "out")
	ctx := context.Background()

	orch, err := New(cfg, WithScoreFunc(widthScore))
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	defer orch.Close(ctx)

	if orch.State() != StateIdle {
		t.Fatalf("expected idle, got %s", orch.State())
	}
	if err := orch.ExtractAndAnalyze(ctx, inputDir); err != nil {
		t.Fatalf("extract and analyze: %v", err)
	}
	if orch.State() != StateAwaitingSelection {
		t.Fatalf("expected awaiting-selection, got %s", orch.State())
	}
	if orch.FrameCount() != 6 {
		t.Fatalf("expected 6 frames, got %d", orch.FrameCount())
	}

	// AwaitingSelection is re-enterable for previews.
	for _, n := range []int{1, 3, 10} {
		preview, err := orch.Preview(selection.BestN{NumFrames: n})
		if err != nil {
			t.Fatalf("preview n=%d: %v", n, err)
		}
		if want := min(n, 6); preview.Count != want {
			t.Fatalf("preview n=%d count %d, want %d", n, preview.Count, want)
		}
	}
	stats, err := orch.Stats()
	if err != nil || stats.Total != 6 {
		t.Fatalf("unexpected stats %+v err=%v", stats, err)
	}

	result, err := orch.SelectAndSave(ctx, selection.BestN{NumFrames: 2}, outputDir)
	if err != nil {
		t.Fatalf("select and save: %v", err)
	}
	if orch.State() != StateCompleted {
		t.Fatalf("expected completed, got %s", orch.State())
	}
	if result.Outcome != OutcomeCompleted || len(result.Saved) != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	// Width scoring makes the last two images the sharpest.
	if result.Saved[0].GlobalIndex != 4 || result.Saved[1].GlobalIndex != 5 {
		t.Fatalf("unexpected selection %+v", result.Saved)
	}
	for _, frame := range result.Saved {
		if _, err := os.Stat(filepath.Join(outputDir, frame.OutputName)); err != nil {
			t.Fatalf("saved frame missing: %v", err)
		}
	}

	data, err := os.ReadFile(result.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if manifest.Method != "best-n" || manifest.TotalCandidates != 6 || manifest.SelectedCount != 2 {
		t.Fatalf("unexpected manifest %+v", manifest)
	}
	if manifest.Params["numFrames"] != 2 {
		t.Fatalf("manifest params lost: %+v", manifest.Params)
	}
}

func TestPreviewRequiresAwaitingSelection(t *testing.T) {
	orch, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	defer orch.Close(context.Background())

	if _, err := orch.Preview(selection.BestN{NumFrames: 3}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSelectAndSaveOnlyOnce(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	orch, err := New(cfg, WithScoreFunc(widthScore))
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	defer orch.Close(ctx)

	if err := orch.ExtractAndAnalyze(ctx, writeImageDir(t, 4)); err != nil {
		t.Fatalf("extract and analyze: %v", err)
	}
	if _, err := orch.SelectAndSave(ctx, selection.Batched{BatchSize: 2}, filepath.Join(t.TempDir(), "out")); err != nil {
		t.Fatalf("first select: %v", err)
	}
	if _, err := orch.SelectAndSave(ctx, selection.Batched{BatchSize: 2}, filepath.Join(t.TempDir(), "out2")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error on second select, got %v", err)
	}
}

func TestCancelledAnalysisEndsCancelled(t *testing.T) {
	cfg := testConfig(t)
	orch, err := New(cfg, WithScoreFunc(widthScore))
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = orch.ExtractAndAnalyze(ctx, writeImageDir(t, 3))
	if !errors.Is(err, services.ErrCancelled) {
		t.Fatalf("expected cancelled error, got %v", err)
	}
	if orch.State() != StateCancelled {
		t.Fatalf("expected cancelled state, got %s", orch.State())
	}
}

func TestCloseCancelsLiveRun(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	orch, err := New(cfg, WithScoreFunc(widthScore))
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	if err := orch.ExtractAndAnalyze(ctx, writeImageDir(t, 3)); err != nil {
		t.Fatalf("extract and analyze: %v", err)
	}
	if err := orch.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if orch.State() != StateCancelled {
		t.Fatalf("expected cancelled after close, got %s", orch.State())
	}
}

func TestInvalidStrategyRejectedBeforeWork(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	orch, err := New(cfg, WithScoreFunc(widthScore))
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	defer orch.Close(ctx)

	if err := orch.ExtractAndAnalyze(ctx, writeImageDir(t, 3)); err != nil {
		t.Fatalf("extract and analyze: %v", err)
	}
	_, err = orch.SelectAndSave(ctx, selection.OutlierRemoval{WindowSize: 4, Sensitivity: 50}, t.TempDir())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	// Rejection happens before any transition; the run is still usable.
	if orch.State() != StateAwaitingSelection {
		t.Fatalf("expected awaiting-selection, got %s", orch.State())
	}
}

func TestHistoryRecordsCompletedRun(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()

	orch, err := New(cfg, WithScoreFunc(widthScore), WithHistory(store))
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	defer orch.Close(ctx)

	if err := orch.ExtractAndAnalyze(ctx, writeImageDir(t, 4)); err != nil {
		t.Fatalf("extract and analyze: %v", err)
	}
	if _, err := orch.SelectAndSave(ctx, selection.BestN{NumFrames: 2}, filepath.Join(t.TempDir(), "out")); err != nil {
		t.Fatalf("select and save: %v", err)
	}

	records, err := store.ListRecent(ctx, 5)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Status != "completed" || records[0].Selected != 2 || records[0].Method != "best-n" {
		t.Fatalf("unexpected record %+v", records[0])
	}
}

func TestStateTransitions(t *testing.T) {
	if !StateIdle.canMoveTo(StateExtracting) {
		t.Fatal("idle must allow extracting")
	}
	if StateIdle.canMoveTo(StateSaving) {
		t.Fatal("idle must not jump to saving")
	}
	if !StateAnalyzing.canMoveTo(StateCancelled) {
		t.Fatal("any live state must allow cancellation")
	}
	if StateCompleted.canMoveTo(StateFailed) {
		t.Fatal("terminal states must not move")
	}
	if !StateCompleted.Terminal() || StateSelecting.Terminal() {
		t.Fatal("terminal classification wrong")
	}
}

var _ scoring.ScoreFunc = widthScore
