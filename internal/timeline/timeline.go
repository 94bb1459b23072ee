// Package timeline lays the shot list end to end on the master video's
// frame timeline.
package timeline

import (
	"math"
	"strconv"
	"strings"

	"shotsync/internal/breakdown"
)

// FrameRange is the half-open frame span [Start, End) a shot occupies in the
// master video.
type FrameRange struct {
	ShotID string  `json:"shot_id" yaml:"shot_id"`
	Start  int     `json:"start" yaml:"start"`
	End    int     `json:"end" yaml:"end"`
	FPS    float64 `json:"fps" yaml:"fps"`
}

// Length is the number of frames in the range.
func (r FrameRange) Length() int { return r.End - r.Start }

// Partition walks the sheet in order and assigns each shot the next
// lengthColumn frames, starting at frame 0. The sheet order is the timeline;
// no sorting happens here.
//
// Rows with a blank shot code, a length that is not a positive whole number,
// or an fps that is not a positive number are skipped. Missing columns fail
// with *breakdown.MissingColumnError.
func Partition(sheet breakdown.Sheet, lengthColumn, fpsColumn string) ([]FrameRange, error) {
	var missing []string
	for _, c := range []string{sheet.ShotColumn, lengthColumn, fpsColumn} {
		if c == "" || !sheet.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &breakdown.MissingColumnError{Columns: missing}
	}

	ranges := make([]FrameRange, 0, len(sheet.Records))
	cursor := 0
	for _, rec := range sheet.Records {
		if rec.CanonicalID == "" {
			continue
		}
		length, ok := ParseLength(rec.Fields[lengthColumn])
		if !ok {
			continue
		}
		fps, ok := ParseFPS(rec.Fields[fpsColumn])
		if !ok {
			continue
		}
		ranges = append(ranges, FrameRange{
			ShotID: rec.CanonicalID,
			Start:  cursor,
			End:    cursor + length,
			FPS:    fps,
		})
		cursor += length
	}
	return ranges, nil
}

// Total is the frame count covered by ranges.
func Total(ranges []FrameRange) int {
	if len(ranges) == 0 {
		return 0
	}
	return ranges[len(ranges)-1].End
}

// ParseLength accepts "24" and "24.0" but not "24.5", "0" or "-3".
func ParseLength(raw string) (int, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

// ParseFPS accepts any positive finite number.
func ParseFPS(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}
