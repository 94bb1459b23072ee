package breakdown

import (
	"fmt"
	"strings"
)

// MissingColumnError reports structural columns absent from a table.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	if len(e.Columns) == 1 {
		return fmt.Sprintf("missing required column %q", e.Columns[0])
	}
	quoted := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return "missing required columns " + strings.Join(quoted, ", ")
}
