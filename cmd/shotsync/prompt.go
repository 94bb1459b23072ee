package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shotsync/internal/reconcile"
)

const confirmQuestion = "Discrepancies found. Push to Kitsu anyway? [y/N]: "

// terminalConfirmer prints the report and reads one answer line from in.
// End of input counts as no.
func terminalConfirmer(in io.Reader, out io.Writer) reconcile.Confirmer {
	reader := bufio.NewReader(in)
	return func(report reconcile.Report) bool {
		fmt.Fprintln(out, renderReport(report))
		fmt.Fprint(out, confirmQuestion)
		answer, err := reader.ReadString('\n')
		if err != nil && answer == "" {
			fmt.Fprintln(out)
			return false
		}
		return reconcile.Affirmative(answer)
	}
}

// renderReport formats a report as a presence summary and a table of
// per-shot discrepancies.
func renderReport(report reconcile.Report) string {
	var b strings.Builder
	if report.Empty() {
		b.WriteString("No discrepancies between local and remote shots.")
		return b.String()
	}

	p := report.Presence
	fmt.Fprintf(&b, "Clips matching remote shots: %d\n", p.Matching)
	if len(p.Missing) > 0 {
		fmt.Fprintf(&b, "Remote shots without a clip (%d): %s\n", len(p.Missing), strings.Join(p.Missing, ", "))
	}
	if len(p.Extra) > 0 {
		fmt.Fprintf(&b, "Clips without a remote shot (%d): %s\n", len(p.Extra), strings.Join(p.Extra, ", "))
	}

	if len(report.Shots) > 0 {
		rows := make([][]string, 0, len(report.Shots))
		for _, shot := range report.Shots {
			if shot.Error != "" {
				rows = append(rows, []string{shot.ShotID, shot.Error, "", ""})
				continue
			}
			for i, diff := range shot.Fields {
				id := shot.ShotID
				if i > 0 {
					id = ""
				}
				rows = append(rows, []string{id, diff.Field, diff.Local, diff.Remote})
			}
		}
		b.WriteString(renderTable(
			[]string{"Shot", "Field", "Local", "Remote"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
		))
		b.WriteByte('\n')
	}
	b.WriteString("Summary: " + report.Summary())
	return b.String()
}

func discrepancyCount(report reconcile.Report) int {
	return len(report.Presence.Missing) + len(report.Presence.Extra) + len(report.Shots)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
