package reconcile

import (
	"maps"
	"math"
	"path/filepath"
	"slices"
	"strings"

	"shotsync/internal/ledger"
)

// FPSTolerance is the largest fps difference treated as equal.
const FPSTolerance = 1e-3

// ArtifactID strips directory and extension from a clip filename.
func ArtifactID(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CheckPresence compares remote shot ids with clip ids. Both result lists
// are sorted.
func CheckPresence(remote ledger.Ledger, artifacts []string) Presence {
	clips := make(map[string]struct{}, len(artifacts))
	for _, a := range artifacts {
		clips[a] = struct{}{}
	}
	p := Presence{Missing: []string{}, Extra: []string{}}
	for id := range remote {
		if _, ok := clips[id]; ok {
			p.Matching++
		} else {
			p.Missing = append(p.Missing, id)
		}
	}
	for id := range clips {
		if !remote.Has(id) {
			p.Extra = append(p.Extra, id)
		}
	}
	slices.Sort(p.Missing)
	slices.Sort(p.Extra)
	return p
}

// CompareMetadata diffs every shot present in either ledger. Frame fields and
// the description must match exactly; fps within FPSTolerance. The result is
// sorted by shot id.
func CompareMetadata(local, remote ledger.Ledger) []ShotDiscrepancy {
	ids := slices.Sorted(maps.Keys(local))
	for id := range remote {
		if !local.Has(id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	out := []ShotDiscrepancy{}
	for _, id := range ids {
		l, inLocal := local[id]
		r, inRemote := remote[id]
		switch {
		case !inRemote:
			out = append(out, ShotDiscrepancy{ShotID: id, Error: ErrMissingInRemote})
		case !inLocal:
			out = append(out, ShotDiscrepancy{ShotID: id, Error: ErrMissingInLocal})
		default:
			if diffs := diffEntries(l, r); len(diffs) > 0 {
				out = append(out, ShotDiscrepancy{ShotID: id, Fields: diffs})
			}
		}
	}
	return out
}

func diffEntries(l, r ledger.Entry) []FieldDiff {
	var diffs []FieldDiff
	intField := func(name string, a, b int) {
		if a != b {
			diffs = append(diffs, FieldDiff{Field: name, Local: formatInt(a), Remote: formatInt(b)})
		}
	}
	intField(FieldFrameIn, l.FrameIn, r.FrameIn)
	intField(FieldFrameOut, l.FrameOut, r.FrameOut)
	intField(FieldFrameCount, l.FrameCount, r.FrameCount)
	if !(math.Abs(l.FPS-r.FPS) < FPSTolerance) {
		diffs = append(diffs, FieldDiff{Field: FieldFPS, Local: formatFloat(l.FPS), Remote: formatFloat(r.FPS)})
	}
	if l.Description != r.Description {
		diffs = append(diffs, FieldDiff{Field: FieldDescription, Local: l.Description, Remote: r.Description})
	}
	return diffs
}

// Validate runs the presence and metadata checks into one report.
func Validate(local, remote ledger.Ledger, artifacts []string) Report {
	return Report{
		Presence: CheckPresence(remote, artifacts),
		Shots:    CompareMetadata(local, remote),
	}
}
