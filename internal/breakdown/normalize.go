package breakdown

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

const codeSeparator = "_"

// Record is a breakdown row annotated with its shot code and canonical id.
type Record struct {
	Line        int
	Code        string
	CanonicalID string
	Fields      map[string]string
}

// Sheet is the normalized, ordered shot list.
type Sheet struct {
	ShotColumn string
	Columns    []string
	Records    []Record
}

// Has reports whether column was present in the source table.
func (s Sheet) Has(column string) bool {
	return slices.Contains(s.Columns, column)
}

// Duplicates lists canonical ids carried by more than one record, in first
// occurrence order. Camera-roll and date variants of a shot collapse this way.
func (s Sheet) Duplicates() []string {
	seen := make(map[string]int, len(s.Records))
	var dups []string
	for _, r := range s.Records {
		seen[r.CanonicalID]++
		if seen[r.CanonicalID] == 2 {
			dups = append(dups, r.CanonicalID)
		}
	}
	return dups
}

// CanonicalID returns the first two underscore-separated segments of code.
// "SHOT_0030_A006C012_241206VG" becomes "SHOT_0030".
func CanonicalID(code string) string {
	parts := strings.SplitN(strings.TrimSpace(code), codeSeparator, 3)
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, codeSeparator)
}

type sortKey struct {
	prefix    string
	number    int64
	hasNumber bool
}

func keyOf(code string) sortKey {
	parts := strings.SplitN(code, codeSeparator, 3)
	key := sortKey{prefix: parts[0]}
	if len(parts) > 1 {
		if n, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64); err == nil {
			key.number = n
			key.hasNumber = true
		}
	}
	return key
}

// compareKeys orders by prefix, then by index. Codes whose index is not an
// integer come first within their prefix.
func compareKeys(a, b sortKey) int {
	if c := cmp.Compare(a.prefix, b.prefix); c != 0 {
		return c
	}
	if a.hasNumber != b.hasNumber {
		if a.hasNumber {
			return 1
		}
		return -1
	}
	return cmp.Compare(a.number, b.number)
}

// Normalize sorts the table rows by shot code and derives canonical ids.
// shotColumn and every column in required must exist.
func Normalize(table Table, shotColumn string, required ...string) (Sheet, error) {
	if err := table.RequireColumns(append([]string{shotColumn}, required...)...); err != nil {
		return Sheet{}, err
	}

	type keyed struct {
		record Record
		key    sortKey
	}
	rows := make([]keyed, 0, len(table.Rows))
	for _, row := range table.Rows {
		code, _ := row.Get(shotColumn)
		code = strings.TrimSpace(code)
		rows = append(rows, keyed{
			record: Record{Line: row.Line, Code: code, Fields: row.Cells},
			key:    keyOf(code),
		})
	}
	slices.SortStableFunc(rows, func(a, b keyed) int { return compareKeys(a.key, b.key) })

	sheet := Sheet{
		ShotColumn: shotColumn,
		Columns:    slices.Clone(table.Columns),
		Records:    make([]Record, len(rows)),
	}
	for i, r := range rows {
		r.record.CanonicalID = CanonicalID(r.record.Code)
		sheet.Records[i] = r.record
	}
	return sheet, nil
}
