package breakdown

import (
	"path/filepath"
	"strings"
	"time"

	"shotsync/internal/config"
)

// Column names of the processed CSV that Kitsu imports.
const (
	ColSequence    = "Sequence"
	ColName        = "Name"
	ColFrameIn     = "Frame In"
	ColFrameOut    = "Frame Out"
	ColNbFrames    = "Nb Frames"
	ColDescription = "Description"
	ColFPS         = "FPS"
)

// ProcessedColumns is the header order of the processed CSV.
var ProcessedColumns = []string{ColSequence, ColName, ColFrameIn, ColFrameOut, ColNbFrames, ColDescription, ColFPS}

// Columns names the breakdown spreadsheet columns.
type Columns struct {
	Shot        string
	FrameIn     string
	FrameOut    string
	Duration    string
	FPS         string
	Description string
}

// ColumnsFromConfig maps the [breakdown] config section.
func ColumnsFromConfig(cfg config.Breakdown) Columns {
	return Columns{
		Shot:        cfg.ShotColumn,
		FrameIn:     cfg.FrameInColumn,
		FrameOut:    cfg.FrameOutColumn,
		Duration:    cfg.DurationColumn,
		FPS:         cfg.FPSColumn,
		Description: cfg.DescriptionColumn,
	}
}

// Processed lists the columns the processed CSV is built from.
func (c Columns) Processed() []string {
	return []string{c.FrameIn, c.FrameOut, c.Duration, c.Description, c.FPS}
}

// Processed renames the sheet into the Kitsu import layout: canonical id as
// Name, frame columns carried over as text, and every row stamped with
// sequence.
func Processed(sheet Sheet, cols Columns, sequence string) (Table, error) {
	missing := make([]string, 0)
	for _, c := range cols.Processed() {
		if !sheet.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return Table{}, &MissingColumnError{Columns: missing}
	}

	out := Table{Columns: append([]string(nil), ProcessedColumns...)}
	for _, rec := range sheet.Records {
		out.Rows = append(out.Rows, Row{
			Line: rec.Line,
			Cells: map[string]string{
				ColSequence:    sequence,
				ColName:        rec.CanonicalID,
				ColFrameIn:     rec.Fields[cols.FrameIn],
				ColFrameOut:    rec.Fields[cols.FrameOut],
				ColNbFrames:    rec.Fields[cols.Duration],
				ColDescription: rec.Fields[cols.Description],
				ColFPS:         rec.Fields[cols.FPS],
			},
		})
	}
	return out, nil
}

// ProcessedName returns "<input stem>_kitsu_<YYYYmmdd_HHMMSS>.csv".
func ProcessedName(inputPath string, at time.Time) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "_kitsu_" + at.Format("20060102_150405") + ".csv"
}
