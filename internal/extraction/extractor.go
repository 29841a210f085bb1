package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"sharpframes/internal/frames"
	"sharpframes/internal/logging"
	"sharpframes/internal/media/ffprobe"
	"sharpframes/internal/services"
	"sharpframes/internal/textutil"
)

// Extractor samples frames out of video input via ffmpeg.
type Extractor struct {
	FFmpegBinary  string
	FFprobeBinary string
	// FPS is the sampling rate in frames per second.
	FPS int
	// OutputFormat is the frame image extension without the dot (jpg, png).
	OutputFormat string
	// Width scales extracted frames to this width when positive, keeping
	// aspect ratio. Zero leaves the source resolution.
	Width int
	// JPEGQuality is ffmpeg's -q:v value, 1 (best) to 31.
	JPEGQuality int
	Logger      *slog.Logger
}

// SourceFailure records one video in a grouped run that could not be
// extracted.
type SourceFailure struct {
	Source string
	Err    error
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger == nil {
		return logging.NewNop()
	}
	return e.Logger
}

func (e *Extractor) ffmpeg() string {
	if strings.TrimSpace(e.FFmpegBinary) == "" {
		return "ffmpeg"
	}
	return e.FFmpegBinary
}

// ExtractVideo samples one video into destDir and returns the resulting
// single-source candidate sequence. destDir must already exist.
func (e *Extractor) ExtractVideo(ctx context.Context, videoPath, destDir string) (*frames.ExtractionResult, error) {
	records, err := e.extractOne(ctx, videoPath, destDir, "")
	if err != nil {
		return nil, err
	}

	result := &frames.ExtractionResult{
		Frames:    records,
		TempDir:   destDir,
		InputKind: frames.KindSingleSource,
	}
	result.SetMetadata("source", videoPath)
	result.SetMetadata("fps", strconv.Itoa(e.FPS))
	e.probeMetadata(ctx, videoPath, result)
	return result, nil
}

// ExtractVideoGroup samples each video into its own subdirectory of
// destRoot, assigning global indexes across the whole group in video order.
// A failing video is recorded and skipped; the run continues with the rest.
func (e *Extractor) ExtractVideoGroup(ctx context.Context, videos []string, destRoot string) (*frames.ExtractionResult, []SourceFailure, error) {
	var (
		all      []frames.FrameRecord
		failures []SourceFailure
	)
	next := 0
	for i, video := range videos {
		if err := ctx.Err(); err != nil {
			return nil, failures, services.Wrap(services.ErrCancelled, "extraction", "group", "extraction cancelled", err)
		}
		group := textutil.SanitizeToken(strings.TrimSuffix(filepath.Base(video), filepath.Ext(video)))
		destDir := filepath.Join(destRoot, fmt.Sprintf("src-%02d_%s", i, group))
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			failures = append(failures, SourceFailure{Source: video, Err: err})
			continue
		}
		records, err := e.extractOne(ctx, video, destDir, group)
		if err != nil {
			if services.IsTerminalFailure(err) {
				return nil, failures, err
			}
			e.logger().Warn("source extraction failed",
				logging.String("source", video),
				logging.Error(err))
			failures = append(failures, SourceFailure{Source: video, Err: err})
			continue
		}
		for j := range records {
			records[j].GlobalIndex = next
			next++
		}
		all = append(all, records...)
	}

	result := &frames.ExtractionResult{
		Frames:    all,
		TempDir:   destRoot,
		InputKind: frames.KindMultiSourceGrouped,
	}
	result.SetMetadata("sources", strconv.Itoa(len(videos)))
	result.SetMetadata("failed_sources", strconv.Itoa(len(failures)))
	result.SetMetadata("fps", strconv.Itoa(e.FPS))
	return result, failures, nil
}

// extractOne runs ffmpeg for a single video and builds its frame records.
// group is empty for single-source runs.
func (e *Extractor) extractOne(ctx context.Context, videoPath, destDir, group string) ([]frames.FrameRecord, error) {
	pattern := filepath.Join(destDir, "frame_%05d."+e.format())
	args := e.buildArgs(videoPath, pattern)

	e.logger().Info("extracting frames",
		logging.String("source", videoPath),
		logging.Int("fps", e.FPS))

	cmd := exec.CommandContext(ctx, e.ffmpeg(), args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return nil, services.Wrap(services.ErrCancelled, "extraction", "ffmpeg", "extraction cancelled", ctx.Err())
		}
		return nil, services.Wrap(services.ErrExternalTool, "extraction", "ffmpeg",
			fmt.Sprintf("extract %s: %s", videoPath, strings.TrimSpace(string(output))), err)
	}

	return e.collectFrames(destDir, group)
}

// buildArgs assembles the ffmpeg invocation: sample at FPS, optionally
// scale to Width (with -2 keeping the height even), and write quality-
// controlled stills to the output pattern.
func (e *Extractor) buildArgs(input, outputPattern string) []string {
	filters := []string{fmt.Sprintf("fps=%d", e.FPS)}
	if e.Width > 0 {
		filters = append(filters, fmt.Sprintf("scale=%d:-2", e.Width))
	}
	quality := e.JPEGQuality
	if quality < 1 {
		quality = 2
	}
	return []string{
		"-i", input,
		"-vf", strings.Join(filters, ","),
		"-q:v", strconv.Itoa(quality),
		"-hide_banner",
		"-loglevel", "warning",
		outputPattern,
	}
}

// collectFrames reads the extracted stills back in name order and wraps
// them as frame records. Names sort in extraction order because ffmpeg
// zero-pads the sequence number.
func (e *Extractor) collectFrames(destDir, group string) ([]frames.FrameRecord, error) {
	paths, err := ListImages(destDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "extraction", "collect",
			fmt.Sprintf("ffmpeg produced no frames in %s", destDir), nil)
	}
	records := make([]frames.FrameRecord, len(paths))
	for i, path := range paths {
		name := filepath.Base(path)
		if group != "" {
			name = fmt.Sprintf("%s_%s", group, filepath.Base(path))
		}
		records[i] = frames.FrameRecord{
			SourcePath:  path,
			GlobalIndex: i,
			SourceGroup: group,
			SourceIndex: i,
			OutputName:  name,
		}
	}
	return records, nil
}

// LoadImageDirectory builds a candidate sequence from images already on
// disk. No staging directory is involved; the result owns no temp
// resource.
func (e *Extractor) LoadImageDirectory(dir string) (*frames.ExtractionResult, error) {
	paths, err := ListImages(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, services.Wrap(services.ErrValidation, "extraction", "images",
			fmt.Sprintf("directory %s contains no images", dir), nil)
	}
	records := make([]frames.FrameRecord, len(paths))
	for i, path := range paths {
		records[i] = frames.FrameRecord{
			SourcePath:  path,
			GlobalIndex: i,
			SourceIndex: i,
			OutputName:  filepath.Base(path),
		}
	}
	result := &frames.ExtractionResult{
		Frames:    records,
		InputKind: frames.KindSingleSource,
	}
	result.SetMetadata("source", dir)
	result.SetMetadata("input", "image-directory")
	return result, nil
}

func (e *Extractor) format() string {
	format := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(e.OutputFormat)), ".")
	if format == "" {
		return "jpg"
	}
	return format
}

// probeMetadata enriches result with duration and geometry when ffprobe is
// available. Probe failure is not fatal: the metadata is informational.
func (e *Extractor) probeMetadata(ctx context.Context, videoPath string, result *frames.ExtractionResult) {
	probe, err := ffprobe.Inspect(ctx, e.FFprobeBinary, videoPath)
	if err != nil {
		e.logger().Warn("ffprobe inspection failed",
			logging.String("source", videoPath),
			logging.Error(err))
		return
	}
	if d := probe.DurationSeconds(); d > 0 {
		result.SetMetadata("duration_seconds", strconv.FormatFloat(d, 'f', 2, 64))
	}
	if stream, ok := probe.VideoStream(); ok {
		result.SetMetadata("video_width", strconv.Itoa(stream.Width))
		result.SetMetadata("video_height", strconv.Itoa(stream.Height))
	}
}
