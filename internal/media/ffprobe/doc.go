// Package ffprobe wraps ffprobe's JSON output for the master video.
//
// Inspect reads the first video stream and container format; the helpers
// turn ffprobe's string fields into frame rate, frame count and duration so
// callers can check a shot list covers the whole edit.
package ffprobe
