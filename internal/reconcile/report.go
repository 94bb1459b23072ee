package reconcile

import (
	"fmt"
	"strconv"
)

const (
	ErrMissingInRemote = "missing in remote"
	ErrMissingInLocal  = "missing in local"
)

// Field names used in FieldDiff.
const (
	FieldFrameIn     = "frame_in"
	FieldFrameOut    = "frame_out"
	FieldFrameCount  = "frame_count"
	FieldFPS         = "fps"
	FieldDescription = "description"
)

// Presence is the result of matching remote shot ids against local clips.
type Presence struct {
	// Missing are remote shots with no local clip.
	Missing []string `json:"missing" yaml:"missing"`
	// Extra are local clips with no remote shot.
	Extra    []string `json:"extra" yaml:"extra"`
	Matching int      `json:"matching" yaml:"matching"`
}

// Clean reports whether both sides list the same shots.
func (p Presence) Clean() bool { return len(p.Missing) == 0 && len(p.Extra) == 0 }

// FieldDiff is one differing field, both values rendered as text.
type FieldDiff struct {
	Field  string `json:"field" yaml:"field"`
	Local  string `json:"local" yaml:"local"`
	Remote string `json:"remote" yaml:"remote"`
}

// ShotDiscrepancy is either a presence error or a list of field diffs.
type ShotDiscrepancy struct {
	ShotID string      `json:"shot_id" yaml:"shot_id"`
	Error  string      `json:"error,omitempty" yaml:"error,omitempty"`
	Fields []FieldDiff `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Report is everything a reconciliation pass found.
type Report struct {
	Presence Presence          `json:"presence" yaml:"presence"`
	Shots    []ShotDiscrepancy `json:"shots" yaml:"shots"`
}

// Empty reports whether there is nothing to confirm.
func (r Report) Empty() bool { return r.Presence.Clean() && len(r.Shots) == 0 }

// Summary is a one-line count suitable for logs.
func (r Report) Summary() string {
	if r.Empty() {
		return "no discrepancies"
	}
	var mismatched, missingRemote, missingLocal int
	for _, s := range r.Shots {
		switch s.Error {
		case ErrMissingInRemote:
			missingRemote++
		case ErrMissingInLocal:
			missingLocal++
		default:
			mismatched++
		}
	}
	return fmt.Sprintf("%d clip(s) without shot, %d shot(s) without clip, %d mismatched, %d missing in remote, %d missing in local",
		len(r.Presence.Extra), len(r.Presence.Missing), mismatched, missingRemote, missingLocal)
}

func formatInt(v int) string { return strconv.Itoa(v) }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
