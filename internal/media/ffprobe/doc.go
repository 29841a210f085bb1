// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Helper methods on Result expose the properties the extraction pipeline
// cares about: duration, video stream geometry, frame rate, and a frame
// count estimate for a given sampling rate.
package ffprobe
