package breakdown

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ReadCSV parses a breakdown spreadsheet exported as CSV. UTF-8 input with or
// without a byte order mark is accepted, as is UTF-16 with a BOM. Header and
// cell text is trimmed and NFC-normalized. Rows whose cells are all blank are
// skipped; spreadsheet exports commonly end with a run of them.
func ReadCSV(r io.Reader) (Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, errors.New("csv is empty")
	}
	if err != nil {
		return Table{}, fmt.Errorf("read csv header: %w", err)
	}
	columns := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		name = cleanCell(name)
		if name == "" {
			return Table{}, fmt.Errorf("csv header column %d is blank", i+1)
		}
		if _, dup := seen[name]; dup {
			return Table{}, fmt.Errorf("csv header repeats column %q", name)
		}
		seen[name] = struct{}{}
		columns[i] = name
	}

	table := Table{Columns: columns}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		cells := make(map[string]string, len(columns))
		blank := true
		for i, col := range columns {
			var v string
			if i < len(record) {
				v = cleanCell(record[i])
			}
			if v != "" {
				blank = false
			}
			cells[col] = v
		}
		if blank {
			continue
		}
		table.Rows = append(table.Rows, Row{Line: line, Cells: cells})
	}
	return table, nil
}

// ReadFile opens path and parses it with ReadCSV.
func ReadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open breakdown: %w", err)
	}
	defer f.Close()
	table, err := ReadCSV(f)
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// WriteCSV writes table with its header, cells in header order.
func WriteCSV(w io.Writer, table Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, col := range table.Columns {
			record[i] = row.Cells[col]
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFile writes table to path, replacing any existing file.
func WriteFile(path string, table Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, table); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func cleanCell(v string) string {
	return norm.NFC.String(strings.TrimSpace(v))
}
