package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shotsync/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var skipKitsu bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check directories, media tools and the Kitsu connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			lines := renderSectionHeader("Configuration", colorize)
			path := ctx.configPath
			if path == "" {
				path = "(defaults)"
			}
			lines = append(lines, renderStatusLine("Config file", statusInfo, path, colorize))
			lines = append(lines, renderStatusLine("Sequence", statusInfo, cfg.Breakdown.Sequence, colorize))

			checkKitsu := cfg.KitsuConfigured() && !skipKitsu
			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{Media: true, Kitsu: checkKitsu})

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Checks", colorize)...)
			for _, r := range results {
				lines = append(lines, renderStatusLine(r.Name, checkKind(r), r.Detail, colorize))
			}
			if !checkKitsu {
				detail := "not configured (set KITSU_SERVER, KITSU_EMAIL, KITSU_PASSWORD)"
				if skipKitsu {
					detail = "skipped"
				}
				lines = append(lines, renderStatusLine("Kitsu", statusWarn, detail, colorize))
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipKitsu, "offline", false, "Skip the Kitsu connection check")
	return cmd
}
