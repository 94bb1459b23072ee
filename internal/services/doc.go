// Package services holds the helpers shared by shotsync's external
// integrations.
//
// It defines sentinel error markers plus the Wrap helper so failures from
// Kitsu, ffmpeg and the filesystem classify consistently, and context helpers
// that stamp run and shot identifiers for logging.
package services
