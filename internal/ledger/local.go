package ledger

import (
	"strings"

	"shotsync/internal/breakdown"
)

// FromLocal builds the ledger from a processed CSV table. Every processed
// column must exist; Name and the numeric fields must be set on every row.
// A later row replaces an earlier one with the same Name.
func FromLocal(table breakdown.Table) (Ledger, error) {
	required := []string{breakdown.ColName, breakdown.ColFrameIn, breakdown.ColFrameOut, breakdown.ColNbFrames, breakdown.ColFPS, breakdown.ColDescription}
	if err := table.RequireColumns(required...); err != nil {
		return nil, err
	}

	out := make(Ledger, len(table.Rows))
	for _, row := range table.Rows {
		id := strings.TrimSpace(row.Cells[breakdown.ColName])
		if id == "" {
			return nil, &MissingFieldError{Line: row.Line, Field: breakdown.ColName}
		}
		intField := func(col string) (int, error) {
			raw := strings.TrimSpace(row.Cells[col])
			if raw == "" {
				return 0, &MissingFieldError{Line: row.Line, ShotID: id, Field: col}
			}
			v, ok := parseInt(raw)
			if !ok {
				return 0, &InvalidDataError{Line: row.Line, ShotID: id, Field: col, Value: raw, Want: "an integer"}
			}
			return v, nil
		}

		var entry Entry
		var err error
		if entry.FrameIn, err = intField(breakdown.ColFrameIn); err != nil {
			return nil, err
		}
		if entry.FrameOut, err = intField(breakdown.ColFrameOut); err != nil {
			return nil, err
		}
		if entry.FrameCount, err = intField(breakdown.ColNbFrames); err != nil {
			return nil, err
		}
		rawFPS := strings.TrimSpace(row.Cells[breakdown.ColFPS])
		if rawFPS == "" {
			return nil, &MissingFieldError{Line: row.Line, ShotID: id, Field: breakdown.ColFPS}
		}
		fps, ok := parseFloat(rawFPS)
		if !ok {
			return nil, &InvalidDataError{Line: row.Line, ShotID: id, Field: breakdown.ColFPS, Value: rawFPS, Want: "a number"}
		}
		entry.FPS = fps
		entry.Description = row.Cells[breakdown.ColDescription]
		out[id] = entry
	}
	return out, nil
}
