package extraction

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sharpframes/internal/services"
)

// InputType classifies what the user pointed the pipeline at.
type InputType string

const (
	InputVideoFile      InputType = "video"
	InputVideoDirectory InputType = "video-directory"
	InputImageDirectory InputType = "image-directory"
)

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mkv": {}, ".mov": {}, ".avi": {}, ".webm": {}, ".m4v": {}, ".mpg": {}, ".mpeg": {},
}

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".bmp": {}, ".tiff": {}, ".tif": {}, ".webp": {},
}

// IsVideoFile reports whether path carries a recognized video extension.
func IsVideoFile(path string) bool {
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// IsImageFile reports whether path carries a recognized image extension.
func IsImageFile(path string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// DetectInputType classifies path as a single video, a directory of videos,
// or a directory of images. A directory containing both counts as a video
// directory; images inside it are ignored.
func DetectInputType(path string) (InputType, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "extraction", "detect",
			fmt.Sprintf("input path %s is not accessible", path), err)
	}
	if !info.IsDir() {
		if IsVideoFile(path) {
			return InputVideoFile, nil
		}
		return "", services.Wrap(services.ErrValidation, "extraction", "detect",
			fmt.Sprintf("input file %s is not a recognized video format", path), nil)
	}

	videos, err := ListVideos(path)
	if err != nil {
		return "", err
	}
	if len(videos) > 0 {
		return InputVideoDirectory, nil
	}
	images, err := ListImages(path)
	if err != nil {
		return "", err
	}
	if len(images) > 0 {
		return InputImageDirectory, nil
	}
	return "", services.Wrap(services.ErrValidation, "extraction", "detect",
		fmt.Sprintf("directory %s contains no video or image files", path), nil)
}

// ListVideos returns the video files directly inside dir, sorted by name.
func ListVideos(dir string) ([]string, error) {
	return listByExtension(dir, IsVideoFile)
}

// ListImages returns the image files directly inside dir, sorted by name.
func ListImages(dir string) ([]string, error) {
	return listByExtension(dir, IsImageFile)
}

func listByExtension(dir string, match func(string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrResource, "extraction", "list",
			fmt.Sprintf("read directory %s", dir), err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if match(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
