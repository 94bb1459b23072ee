// Package ledger builds per-shot metadata snapshots from the processed CSV
// and from Kitsu so the two can be compared.
//
// Local data is held to a strict shape because it was produced by shotsync
// itself; remote shots are loosely typed on the server, so missing or
// malformed values there fall back to zero values instead of failing.
package ledger

import (
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Entry is the metadata compared for one shot.
type Entry struct {
	FrameIn     int     `json:"frame_in" yaml:"frame_in"`
	FrameOut    int     `json:"frame_out" yaml:"frame_out"`
	FrameCount  int     `json:"frame_count" yaml:"frame_count"`
	FPS         float64 `json:"fps" yaml:"fps"`
	Description string  `json:"description" yaml:"description"`
}

// Ledger maps canonical shot id to its metadata. Iteration order carries no
// meaning; use IDs for a stable order.
type Ledger map[string]Entry

// IDs returns the shot ids in ascending order.
func (l Ledger) IDs() []string {
	return slices.Sorted(maps.Keys(l))
}

// Has reports whether id is present.
func (l Ledger) Has(id string) bool {
	_, ok := l[id]
	return ok
}

func parseInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func parseFloat(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
