package extraction

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sharpframes/internal/frames"
)

// fakeFFmpeg writes a stub script that creates three empty frame files in
// the output directory, failing instead when the input path contains
// "broken".
func fakeFFmpeg(t *testing.T) string {
	t.Helper()
	script := `#!/bin/sh
for last; do :; done
dir=$(dirname "$last")
case "$*" in
*broken*) echo "decode error" >&2; exit 1 ;;
esac
for i in 1 2 3; do : > "$dir/frame_0000$i.jpg"; done
`
	path := filepath.Join(t.TempDir(), "ffmpeg-stub")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
}

func TestDetectInputType(t *testing.T) {
	dir := t.TempDir()

	video := filepath.Join(dir, "clip.mp4")
	touch(t, video)
	if kind, err := DetectInputType(video); err != nil || kind != InputVideoFile {
		t.Fatalf("video file: kind=%v err=%v", kind, err)
	}

	videoDir := filepath.Join(dir, "videos")
	if err := os.Mkdir(videoDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	touch(t, filepath.Join(videoDir, "a.mkv"))
	touch(t, filepath.Join(videoDir, "cover.jpg"))
	if kind, err := DetectInputType(videoDir); err != nil || kind != InputVideoDirectory {
		t.Fatalf("video dir: kind=%v err=%v", kind, err)
	}

	imageDir := filepath.Join(dir, "images")
	if err := os.Mkdir(imageDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	touch(t, filepath.Join(imageDir, "one.png"))
	if kind, err := DetectInputType(imageDir); err != nil || kind != InputImageDirectory {
		t.Fatalf("image dir: kind=%v err=%v", kind, err)
	}

	emptyDir := filepath.Join(dir, "empty")
	if err := os.Mkdir(emptyDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := DetectInputType(emptyDir); err == nil {
		t.Fatal("expected error for empty directory")
	}

	text := filepath.Join(dir, "notes.txt")
	touch(t, text)
	if _, err := DetectInputType(text); err == nil {
		t.Fatal("expected error for unsupported file")
	}
}

func TestBuildArgs(t *testing.T) {
	e := &Extractor{FPS: 10, Width: 1280, JPEGQuality: 2}
	args := e.buildArgs("in.mp4", "/tmp/frame_%05d.jpg")
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-vf fps=10,scale=1280:-2") {
		t.Fatalf("missing filters in %q", joined)
	}
	if !strings.Contains(joined, "-q:v 2") {
		t.Fatalf("missing quality in %q", joined)
	}

	e = &Extractor{FPS: 5}
	joined = strings.Join(e.buildArgs("in.mp4", "out"), " ")
	if strings.Contains(joined, "scale=") {
		t.Fatalf("unexpected scale filter in %q", joined)
	}
}

func TestExtractVideo(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	touch(t, video)
	dest := filepath.Join(dir, "staging")
	if err := os.Mkdir(dest, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	e := &Extractor{FFmpegBinary: fakeFFmpeg(t), FFprobeBinary: "definitely-missing-ffprobe", FPS: 10}
	result, err := e.ExtractVideo(context.Background(), video, dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(result.Frames))
	}
	if result.InputKind != frames.KindSingleSource || result.TempDir != dest {
		t.Fatalf("unexpected result %+v", result)
	}
	for i, rec := range result.Frames {
		if rec.GlobalIndex != i {
			t.Fatalf("frame %d has index %d", i, rec.GlobalIndex)
		}
		if rec.OutputName == "" || rec.SourceGroup != "" {
			t.Fatalf("unexpected record %+v", rec)
		}
	}
	if err := frames.ValidateSequence(result.Frames); err != nil {
		t.Fatalf("sequence invalid: %v", err)
	}
}

func TestExtractVideoGroupContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	good1 := filepath.Join(dir, "alpha.mp4")
	bad := filepath.Join(dir, "broken.mp4")
	good2 := filepath.Join(dir, "zulu.mp4")
	for _, v := range []string{good1, bad, good2} {
		touch(t, v)
	}
	destRoot := filepath.Join(dir, "staging")
	if err := os.Mkdir(destRoot, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	e := &Extractor{FFmpegBinary: fakeFFmpeg(t), FPS: 10}
	result, failures, err := e.ExtractVideoGroup(context.Background(), []string{good1, bad, good2}, destRoot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(failures) != 1 || failures[0].Source != bad {
		t.Fatalf("unexpected failures %+v", failures)
	}
	if len(result.Frames) != 6 {
		t.Fatalf("expected 6 frames across surviving sources, got %d", len(result.Frames))
	}
	if result.InputKind != frames.KindMultiSourceGrouped {
		t.Fatalf("unexpected kind %s", result.InputKind)
	}
	if err := frames.ValidateSequence(result.Frames); err != nil {
		t.Fatalf("global indexes invalid: %v", err)
	}
	if result.Frames[0].SourceGroup != "alpha" || result.Frames[3].SourceGroup != "zulu" {
		t.Fatalf("unexpected groups %q %q", result.Frames[0].SourceGroup, result.Frames[3].SourceGroup)
	}
	if !strings.HasPrefix(result.Frames[3].OutputName, "zulu_") {
		t.Fatalf("output name lost group attribution: %q", result.Frames[3].OutputName)
	}
}

func TestLoadImageDirectory(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.png"))
	touch(t, filepath.Join(dir, "a.jpg"))
	touch(t, filepath.Join(dir, "skip.txt"))

	e := &Extractor{}
	result, err := e.LoadImageDirectory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(result.Frames))
	}
	if result.TempDir != "" {
		t.Fatalf("image directory input must not own a temp dir, got %q", result.TempDir)
	}
	if result.Frames[0].OutputName != "a.jpg" || result.Frames[1].OutputName != "b.png" {
		t.Fatalf("unexpected order %q %q", result.Frames[0].OutputName, result.Frames[1].OutputName)
	}
}

func TestLoadImageDirectoryEmpty(t *testing.T) {
	e := &Extractor{}
	if _, err := e.LoadImageDirectory(t.TempDir()); err == nil {
		t.Fatal("expected error for empty image directory")
	}
}
