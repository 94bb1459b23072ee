// Package media exports per-shot clips from the master video.
//
// Slice fans trim jobs out to a bounded worker pool once the frame ranges are
// known. A clip that fails to export is logged and skipped so one bad range
// does not cost the rest of the batch.
package media
