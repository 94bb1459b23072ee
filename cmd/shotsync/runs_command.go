package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"shotsync/internal/history"
)

type runView struct {
	ID            string `json:"id"`
	StartedAt     string `json:"started_at"`
	FinishedAt    string `json:"finished_at,omitempty"`
	Mode          string `json:"mode"`
	Project       string `json:"project,omitempty"`
	Sequence      string `json:"sequence,omitempty"`
	OutputDir     string `json:"output_dir,omitempty"`
	Shots         int    `json:"shots"`
	Clips         int    `json:"clips"`
	Discrepancies int    `json:"discrepancies"`
	Decision      string `json:"decision,omitempty"`
	Matched       int    `json:"matched"`
	Unmatched     int    `json:"unmatched"`
	Failed        int    `json:"failed"`
	Error         string `json:"error,omitempty"`
}

func newRunView(run history.Run) runView {
	view := runView{
		ID:            run.ID,
		StartedAt:     run.StartedAt.Local().Format(time.DateTime),
		Mode:          string(run.Mode),
		Project:       run.Project,
		Sequence:      run.Sequence,
		OutputDir:     run.OutputDir,
		Shots:         run.Shots,
		Clips:         run.Clips,
		Discrepancies: run.Discrepancies,
		Decision:      run.Decision,
		Matched:       run.Matched,
		Unmatched:     run.Unmatched,
		Failed:        run.Failed,
		Error:         run.Error,
	}
	if run.Finished() {
		view.FinishedAt = run.FinishedAt.Local().Format(time.DateTime)
	}
	return view
}

func (v runView) outcome() string {
	switch {
	case v.Error != "":
		return "error"
	case v.FinishedAt == "":
		return "running"
	case v.Decision == "" || v.Decision == "none":
		return "processed"
	default:
		return v.Decision
	}
}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent ingest runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cmd.Context(), cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			views := make([]runView, 0, len(runs))
			for _, run := range runs {
				views = append(views, newRunView(run))
			}
			if jsonOut {
				return writeJSON(cmd, views)
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				rows = append(rows, []string{
					v.StartedAt,
					v.Mode,
					v.Project,
					v.Sequence,
					strconv.Itoa(v.Shots),
					strconv.Itoa(v.Clips),
					strconv.Itoa(v.Discrepancies),
					v.outcome(),
					fmt.Sprintf("%d/%d/%d", v.Matched, v.Unmatched, v.Failed),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Started", "Mode", "Project", "Sequence", "Shots", "Clips", "Issues", "Outcome", "Pub ok/skip/fail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
