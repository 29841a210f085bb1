package selection

import (
	"reflect"
	"testing"

	"sharpframes/internal/frames"
)

func scoredFrames(scores ...float64) []frames.FrameRecord {
	recs := make([]frames.FrameRecord, len(scores))
	for i, s := range scores {
		recs[i] = frames.FrameRecord{GlobalIndex: i, SharpnessScore: s, Scored: true}
	}
	return recs
}

func selectedIndexes(recs []frames.FrameRecord) []int {
	idx := make([]int, len(recs))
	for i, rec := range recs {
		idx[i] = rec.GlobalIndex
	}
	return idx
}

func TestBestNZeroBufferPicksTopScores(t *testing.T) {
	recs := scoredFrames(5, 9, 3, 8, 1, 7, 2, 6, 4, 0)
	got := BestN{NumFrames: 4}.Select(recs)
	want := []int{1, 3, 5, 7}
	if !reflect.DeepEqual(selectedIndexes(got), want) {
		t.Fatalf("expected indexes %v, got %v", want, selectedIndexes(got))
	}
}

func TestBestNZeroBufferTieBreaksLowIndex(t *testing.T) {
	recs := scoredFrames(4, 4, 4, 4)
	got := BestN{NumFrames: 2}.Select(recs)
	want := []int{0, 1}
	if !reflect.DeepEqual(selectedIndexes(got), want) {
		t.Fatalf("expected indexes %v, got %v", want, selectedIndexes(got))
	}
}

func TestBestNBufferKeepsGap(t *testing.T) {
	recs := scoredFrames(5, 9, 3, 8, 1, 7, 2, 6, 4, 0)
	got := BestN{NumFrames: 3, MinBuffer: 2}.Select(recs)
	want := []int{1, 3, 5}
	if !reflect.DeepEqual(selectedIndexes(got), want) {
		t.Fatalf("expected indexes %v, got %v", want, selectedIndexes(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].GlobalIndex-got[i-1].GlobalIndex < 2 {
			t.Fatalf("buffer violated between %d and %d", got[i-1].GlobalIndex, got[i].GlobalIndex)
		}
	}
}

func TestBestNFillPassReachesTarget(t *testing.T) {
	// Buffer 10 admits only one frame in pass 1; the fill pass must still
	// deliver three.
	recs := scoredFrames(5, 9, 3, 8, 1)
	got := BestN{NumFrames: 3, MinBuffer: 10}.Select(recs)
	if len(got) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(got))
	}
	if !reflect.DeepEqual(selectedIndexes(got), []int{0, 1, 3}) {
		t.Fatalf("unexpected indexes %v", selectedIndexes(got))
	}
}

func TestBestNRequestExceedsInput(t *testing.T) {
	recs := scoredFrames(2, 1)
	got := BestN{NumFrames: 5, MinBuffer: 1}.Select(recs)
	if len(got) != 2 {
		t.Fatalf("expected all 2 frames, got %d", len(got))
	}
}

func TestBestNZeroFramesAndEmptyInput(t *testing.T) {
	if got := (BestN{NumFrames: 0}).Select(scoredFrames(1, 2, 3)); got != nil {
		t.Fatalf("expected nil for numFrames 0, got %v", got)
	}
	if got := (BestN{NumFrames: 3}).Select(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestBestNDeterministic(t *testing.T) {
	recs := scoredFrames(5, 9, 3, 8, 1, 7, 2, 6, 4, 0)
	first := BestN{NumFrames: 4, MinBuffer: 2}.Select(recs)
	second := BestN{NumFrames: 4, MinBuffer: 2}.Select(recs)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("selection not deterministic: %v vs %v", selectedIndexes(first), selectedIndexes(second))
	}
}

func TestBestNValidate(t *testing.T) {
	if err := (BestN{NumFrames: -1}).Validate(); err == nil {
		t.Fatal("expected error for negative numFrames")
	}
	if err := (BestN{MinBuffer: -1}).Validate(); err == nil {
		t.Fatal("expected error for negative minBuffer")
	}
	if err := (BestN{NumFrames: 10, MinBuffer: 3}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
