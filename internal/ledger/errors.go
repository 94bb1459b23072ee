package ledger

import "fmt"

// MissingFieldError reports a processed row without a required value.
type MissingFieldError struct {
	Line   int
	ShotID string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing %q", location(e.Line, e.ShotID), e.Field)
}

// InvalidDataError reports a processed value that does not have the
// expected type.
type InvalidDataError struct {
	Line   int
	ShotID string
	Field  string
	Value  string
	Want   string
}

func (e *InvalidDataError) Error() string {
	return fmt.Sprintf("%s: %q is %q, want %s", location(e.Line, e.ShotID), e.Field, e.Value, e.Want)
}

func location(line int, shotID string) string {
	switch {
	case shotID != "" && line > 0:
		return fmt.Sprintf("shot %s (line %d)", shotID, line)
	case shotID != "":
		return "shot " + shotID
	case line > 0:
		return fmt.Sprintf("line %d", line)
	default:
		return "row"
	}
}
