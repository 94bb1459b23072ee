package reconcile

import "strings"

// Decision is the outcome of the confirmation gate.
type Decision int

const (
	Abort Decision = iota
	Proceed
)

func (d Decision) String() string {
	if d == Proceed {
		return "proceed"
	}
	return "abort"
}

// Confirmer is asked to approve a non-empty report. It returns true only on
// an explicit yes.
type Confirmer func(Report) bool

// Gate lets a clean report through and otherwise defers to confirm. A nil
// confirmer never approves.
func Gate(report Report, confirm Confirmer) Decision {
	if report.Empty() {
		return Proceed
	}
	if confirm == nil {
		return Abort
	}
	if confirm(report) {
		return Proceed
	}
	return Abort
}

// Affirmative is the answer rule for interactive confirmers: "y" or "yes"
// in any case, surrounding space ignored.
func Affirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
