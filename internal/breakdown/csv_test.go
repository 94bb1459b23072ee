package breakdown_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/unicode"

	"shotsync/internal/breakdown"
	"shotsync/internal/config"
)

const sampleBreakdown = "SHOT,FRAME IN,FRAME OUT,FRAME DURATION,FPS,Clip Name\n" +
	"SHOT_0020_A,1010,1030,20,24,Wide\n" +
	"SHOT_0010_A006C012_241206VG,1000,1010,10,24,Close-up\n" +
	",,,,,\n"

func TestReadCSVSkipsBlankRowsAndKeepsLines(t *testing.T) {
	table, err := breakdown.ReadCSV(strings.NewReader(sampleBreakdown))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[1].Line != 3 {
		t.Fatalf("expected source line 3, got %d", table.Rows[1].Line)
	}
	if v, _ := table.Rows[0].Get("Clip Name"); v != "Wide" {
		t.Fatalf("unexpected cell %q", v)
	}
}

func TestReadCSVHandlesBOMs(t *testing.T) {
	utf8BOM := "\ufeff" + sampleBreakdown
	table, err := breakdown.ReadCSV(strings.NewReader(utf8BOM))
	if err != nil {
		t.Fatalf("ReadCSV utf-8 bom: %v", err)
	}
	if table.Columns[0] != "SHOT" {
		t.Fatalf("bom leaked into header: %q", table.Columns[0])
	}

	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	utf16, err := enc.String(sampleBreakdown)
	if err != nil {
		t.Fatalf("encode utf-16: %v", err)
	}
	table, err = breakdown.ReadCSV(strings.NewReader(utf16))
	if err != nil {
		t.Fatalf("ReadCSV utf-16: %v", err)
	}
	if !table.Has("Clip Name") || len(table.Rows) != 2 {
		t.Fatalf("unexpected utf-16 table %+v", table)
	}
}

func TestReadCSVNormalizesUnicode(t *testing.T) {
	decomposed := "SHOT,Clip Name\nSH_0010,Cafe\u0301\n"
	table, err := breakdown.ReadCSV(strings.NewReader(decomposed))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if v, _ := table.Rows[0].Get("Clip Name"); v != "Caf\u00e9" {
		t.Fatalf("expected NFC text, got %q", v)
	}
}

func TestReadCSVRejectsDuplicateHeader(t *testing.T) {
	_, err := breakdown.ReadCSV(strings.NewReader("SHOT,SHOT\na,b\n"))
	if err == nil || !strings.Contains(err.Error(), "repeats") {
		t.Fatalf("expected duplicate header error, got %v", err)
	}
}

func TestProcessedRoundTrip(t *testing.T) {
	table, err := breakdown.ReadCSV(strings.NewReader(sampleBreakdown))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	cols := breakdown.ColumnsFromConfig(config.Default().Breakdown)
	sheet, err := breakdown.Normalize(table, cols.Shot, cols.Processed()...)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	processed, err := breakdown.Processed(sheet, cols, "SQ01")
	if err != nil {
		t.Fatalf("Processed: %v", err)
	}

	var buf bytes.Buffer
	if err := breakdown.WriteCSV(&buf, processed); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "Sequence,Name,Frame In,Frame Out,Nb Frames,Description,FPS\n" +
		"SQ01,SHOT_0010,1000,1010,10,Close-up,24\n" +
		"SQ01,SHOT_0020,1010,1030,20,Wide,24\n"
	if buf.String() != want {
		t.Fatalf("unexpected processed csv\n got %q\nwant %q", buf.String(), want)
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := breakdown.WriteFile(path, processed); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	back, err := breakdown.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !slices.Equal(back.Columns, breakdown.ProcessedColumns) || len(back.Rows) != 2 {
		t.Fatalf("unexpected round trip %+v", back)
	}
}

func TestProcessedMissingColumns(t *testing.T) {
	table, err := breakdown.ReadCSV(strings.NewReader("SHOT,FPS\nSH_0010,24\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	sheet, err := breakdown.Normalize(table, "SHOT")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	cols := breakdown.ColumnsFromConfig(config.Default().Breakdown)
	_, err = breakdown.Processed(sheet, cols, "SQ01")
	var missing *breakdown.MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
	if !slices.Contains(missing.Columns, "Clip Name") {
		t.Fatalf("expected Clip Name in %v", missing.Columns)
	}
}

func TestProcessedName(t *testing.T) {
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	got := breakdown.ProcessedName("/tmp/edit/EP01 breakdown.csv", at)
	if got != "EP01 breakdown_kitsu_20250304_050607.csv" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := breakdown.ReadFile(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist, got %v", err)
	}
}
