// Package extraction turns a video file, a directory of videos, or a
// directory of images into an ordered candidate frame sequence.
//
// Video input is sampled through ffmpeg into a staging directory at a
// configured rate. Directory-of-videos input processes each video as its
// own source group, continuing past per-source failures and reporting them
// in aggregate. Image directories are used in place without staging.
package extraction
