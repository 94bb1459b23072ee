package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shotsync/internal/breakdown"
	"shotsync/internal/config"
	"shotsync/internal/services"
	"shotsync/internal/timeline"
)

type partitionOutput struct {
	Ranges      []timeline.FrameRange `json:"ranges" yaml:"ranges"`
	TotalFrames int                   `json:"total_frames" yaml:"total_frames"`
	Duplicates  []string              `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
}

func newPartitionCommand(ctx *commandContext) *cobra.Command {
	var csvPath string
	var formatArg string

	cmd := &cobra.Command{
		Use:   "partition",
		Short: "Print the frame range each shot occupies in the edit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(formatArg)
			if err != nil {
				return err
			}
			if strings.TrimSpace(csvPath) == "" {
				return services.Wrap(services.ErrValidation, "cli", "partition", "--csv is required", nil)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(strings.TrimSpace(csvPath))
			if err != nil {
				return err
			}
			table, err := breakdown.ReadFile(path)
			if err != nil {
				return services.Wrap(services.ErrValidation, "breakdown", "read", path, err)
			}
			cols := breakdown.ColumnsFromConfig(cfg.Breakdown)
			sheet, err := breakdown.Normalize(table, cols.Shot, cols.Duration, cols.FPS)
			if err != nil {
				return services.Wrap(services.ErrValidation, "breakdown", "normalize", path, err)
			}
			ranges, err := timeline.Partition(sheet, cols.Duration, cols.FPS)
			if err != nil {
				return services.Wrap(services.ErrValidation, "timeline", "partition", path, err)
			}
			out := partitionOutput{
				Ranges:      ranges,
				TotalFrames: timeline.Total(ranges),
				Duplicates:  sheet.Duplicates(),
			}
			if out.Ranges == nil {
				out.Ranges = []timeline.FrameRange{}
			}

			if handled, err := writeStructured(cmd, format, out); handled {
				return err
			}
			rows := make([][]string, 0, len(ranges))
			for _, r := range ranges {
				rows = append(rows, []string{
					r.ShotID,
					strconv.Itoa(r.Start),
					strconv.Itoa(r.End),
					strconv.Itoa(r.Length()),
					strconv.FormatFloat(r.FPS, 'f', -1, 64),
				})
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, renderTable(
				[]string{"Shot", "Start", "End", "Frames", "FPS"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			fmt.Fprintf(w, "Total: %s, %s\n", plural(len(ranges), "shot"), plural(out.TotalFrames, "frame"))
			if len(out.Duplicates) > 0 {
				fmt.Fprintf(w, "Duplicate shot ids: %s\n", strings.Join(out.Duplicates, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Breakdown CSV to partition")
	cmd.Flags().StringVar(&formatArg, "format", "table", "Output format: table, json or yaml")
	return cmd
}
