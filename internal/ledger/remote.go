package ledger

import (
	"encoding/json"
	"math"
	"strings"

	"shotsync/internal/services/kitsu"
)

// FromRemote builds the ledger from Kitsu shots keyed by shot name.
// frame_in, frame_out and fps come from the shot's data block, the frame
// count from nb_frames. Absent or malformed values become 0, 0.0 or "".
func FromRemote(shots []kitsu.Shot) Ledger {
	out := make(Ledger, len(shots))
	for _, shot := range shots {
		name := strings.TrimSpace(shot.Name)
		if name == "" {
			continue
		}
		out[name] = Entry{
			FrameIn:     looseInt(shot.Data["frame_in"]),
			FrameOut:    looseInt(shot.Data["frame_out"]),
			FrameCount:  looseInt(shot.NbFrames),
			FPS:         looseFloat(shot.Data["fps"]),
			Description: shot.Description,
		}
	}
	return out
}

func looseInt(v any) int {
	switch val := v.(type) {
	case float64:
		if val == math.Trunc(val) && math.Abs(val) <= math.MaxInt32 {
			return int(val)
		}
	case int:
		return val
	case json.Number:
		if n, ok := parseInt(val.String()); ok {
			return n
		}
	case string:
		if n, ok := parseInt(val); ok {
			return n
		}
	}
	return 0
}

func looseFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		if !math.IsNaN(val) && !math.IsInf(val, 0) {
			return val
		}
	case int:
		return float64(val)
	case json.Number:
		if f, ok := parseFloat(val.String()); ok {
			return f
		}
	case string:
		if f, ok := parseFloat(val); ok {
			return f
		}
	}
	return 0
}
