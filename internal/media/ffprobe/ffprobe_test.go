package ffprobe

import "testing"

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio"},
			{CodecType: "video", Width: 1920, Height: 1080, AvgFrameRate: "30000/1001", NBFrames: "300"},
		},
		Format: Format{Duration: "12.5"},
	}
	stream, ok := result.VideoStream()
	if !ok || stream.Width != 1920 {
		t.Fatalf("unexpected video stream %+v ok=%v", stream, ok)
	}
	if fr := stream.FrameRate(); fr < 29.9 || fr > 30.0 {
		t.Fatalf("unexpected frame rate %v", fr)
	}
	if stream.FrameCount() != 300 {
		t.Fatalf("unexpected frame count %d", stream.FrameCount())
	}
	if result.DurationSeconds() != 12.5 {
		t.Fatalf("unexpected duration %v", result.DurationSeconds())
	}
	if got := result.EstimatedFrames(10); got != 125 {
		t.Fatalf("expected 125 estimated frames, got %d", got)
	}
}

func TestResultHelpersHandleMissingData(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "video", AvgFrameRate: "0/0", NBFrames: "bad", Duration: "8"}},
	}
	stream, _ := result.VideoStream()
	if stream.FrameRate() != 0 {
		t.Fatalf("expected 0 frame rate, got %v", stream.FrameRate())
	}
	if stream.FrameCount() != 0 {
		t.Fatalf("expected 0 frame count, got %d", stream.FrameCount())
	}
	if result.DurationSeconds() != 8 {
		t.Fatalf("expected stream duration fallback, got %v", result.DurationSeconds())
	}
	if (Result{}).EstimatedFrames(10) != 0 {
		t.Fatal("expected 0 estimate without duration")
	}
}
