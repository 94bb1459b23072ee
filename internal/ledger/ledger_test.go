package ledger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"

	"shotsync/internal/breakdown"
	"shotsync/internal/ledger"
	"shotsync/internal/services/kitsu"
)

const processedCSV = "Sequence,Name,Frame In,Frame Out,Nb Frames,Description,FPS\n" +
	"SQ01,SH_0010,1000,1010,10,Close-up,24\n" +
	"SQ01,SH_0020,1010,1030,20,,23.976\n"

func readTable(t *testing.T, csv string) breakdown.Table {
	t.Helper()
	table, err := breakdown.ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return table
}

func TestFromLocal(t *testing.T) {
	got, err := ledger.FromLocal(readTable(t, processedCSV))
	if err != nil {
		t.Fatalf("FromLocal: %v", err)
	}
	want := ledger.Ledger{
		"SH_0010": {FrameIn: 1000, FrameOut: 1010, FrameCount: 10, FPS: 24, Description: "Close-up"},
		"SH_0020": {FrameIn: 1010, FrameOut: 1030, FrameCount: 20, FPS: 23.976},
	}
	if len(got) != len(want) {
		t.Fatalf("unexpected ledger %+v", got)
	}
	for id, entry := range want {
		if got[id] != entry {
			t.Fatalf("%s: got %+v want %+v", id, got[id], entry)
		}
	}
	if ids := got.IDs(); !slices.Equal(ids, []string{"SH_0010", "SH_0020"}) {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestFromLocalLaterRowWins(t *testing.T) {
	csv := processedCSV + "SQ01,SH_0010,2000,2005,5,Retake,24\n"
	got, err := ledger.FromLocal(readTable(t, csv))
	if err != nil {
		t.Fatalf("FromLocal: %v", err)
	}
	if got["SH_0010"].Description != "Retake" || got["SH_0010"].FrameCount != 5 {
		t.Fatalf("expected last row to win, got %+v", got["SH_0010"])
	}
}

func TestFromLocalErrors(t *testing.T) {
	header := "Sequence,Name,Frame In,Frame Out,Nb Frames,Description,FPS\n"
	tests := []struct {
		name  string
		csv   string
		check func(t *testing.T, err error)
	}{
		{
			name: "missing column",
			csv:  "Name,Frame In\nSH_0010,1\n",
			check: func(t *testing.T, err error) {
				var e *breakdown.MissingColumnError
				if !errors.As(err, &e) || !slices.Contains(e.Columns, "FPS") {
					t.Fatalf("expected MissingColumnError naming FPS, got %v", err)
				}
			},
		},
		{
			name: "missing name",
			csv:  header + "SQ01,,1,2,1,x,24\n",
			check: func(t *testing.T, err error) {
				var e *ledger.MissingFieldError
				if !errors.As(err, &e) || e.Field != "Name" || e.Line != 2 {
					t.Fatalf("expected MissingFieldError for Name on line 2, got %v", err)
				}
			},
		},
		{
			name: "missing frame count",
			csv:  header + "SQ01,SH_0010,1,2,,x,24\n",
			check: func(t *testing.T, err error) {
				var e *ledger.MissingFieldError
				if !errors.As(err, &e) || e.Field != "Nb Frames" || e.ShotID != "SH_0010" {
					t.Fatalf("expected MissingFieldError for Nb Frames, got %v", err)
				}
			},
		},
		{
			name: "fractional frame",
			csv:  header + "SQ01,SH_0010,1.5,2,1,x,24\n",
			check: func(t *testing.T, err error) {
				var e *ledger.InvalidDataError
				if !errors.As(err, &e) || e.Field != "Frame In" || e.Value != "1.5" {
					t.Fatalf("expected InvalidDataError for Frame In, got %v", err)
				}
				if !strings.Contains(err.Error(), "SH_0010") {
					t.Fatalf("expected shot id in message, got %q", err.Error())
				}
			},
		},
		{
			name: "text fps",
			csv:  header + "SQ01,SH_0010,1,2,1,x,fast\n",
			check: func(t *testing.T, err error) {
				var e *ledger.InvalidDataError
				if !errors.As(err, &e) || e.Field != "FPS" {
					t.Fatalf("expected InvalidDataError for FPS, got %v", err)
				}
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ledger.FromLocal(readTable(t, tc.csv))
			if got != nil {
				t.Fatalf("expected no partial ledger, got %+v", got)
			}
			tc.check(t, err)
		})
	}
}

func TestFromLocalAcceptsIntegralFloats(t *testing.T) {
	csv := "Sequence,Name,Frame In,Frame Out,Nb Frames,Description,FPS\nSQ01,SH_0010,1000.0,1010.0,10.0,x,24\n"
	got, err := ledger.FromLocal(readTable(t, csv))
	if err != nil {
		t.Fatalf("FromLocal: %v", err)
	}
	if got["SH_0010"].FrameOut != 1010 {
		t.Fatalf("unexpected entry %+v", got["SH_0010"])
	}
}

func TestFromRemoteDefaultsLooseValues(t *testing.T) {
	payload := `[
		{"name":"SH_0010","description":"Close-up","nb_frames":10,"data":{"frame_in":1000,"frame_out":"1010","fps":"24"}},
		{"name":"SH_0020","description":null,"nb_frames":null,"data":null},
		{"name":"SH_0030","nb_frames":"ten","data":{"frame_in":"abc","fps":23.976}},
		{"name":"","nb_frames":1}
	]`
	var shots []kitsu.Shot
	if err := json.Unmarshal([]byte(payload), &shots); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := ledger.FromRemote(shots)
	want := ledger.Ledger{
		"SH_0010": {FrameIn: 1000, FrameOut: 1010, FrameCount: 10, FPS: 24, Description: "Close-up"},
		"SH_0020": {},
		"SH_0030": {FPS: 23.976},
	}
	if len(got) != len(want) {
		t.Fatalf("unexpected ledger %+v", got)
	}
	for id, entry := range want {
		if got[id] != entry {
			t.Fatalf("%s: got %+v want %+v", id, got[id], entry)
		}
	}
}

func TestBuildersAreDeterministic(t *testing.T) {
	encode := func() []byte {
		local, err := ledger.FromLocal(readTable(t, processedCSV))
		if err != nil {
			t.Fatalf("FromLocal: %v", err)
		}
		remote := ledger.FromRemote([]kitsu.Shot{
			{Name: "SH_0020", Data: map[string]any{"fps": 24.0}},
			{Name: "SH_0010", NbFrames: 10.0},
		})
		data, err := json.Marshal(map[string]ledger.Ledger{"local": local, "remote": remote})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return data
	}
	first := encode()
	for range 5 {
		if next := encode(); !bytes.Equal(first, next) {
			t.Fatalf("ledger encoding changed between runs:\n%s\n%s", first, next)
		}
	}
}
