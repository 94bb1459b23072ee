package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shotsync/internal/breakdown"
	"shotsync/internal/config"
	"shotsync/internal/ledger"
	"shotsync/internal/reconcile"
	"shotsync/internal/services"
	"shotsync/internal/workspace"
)

func newReconcileCommand(ctx *commandContext) *cobra.Command {
	var (
		csvPath   string
		project   string
		clipsDir  string
		sequence  string
		formatArg string
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare a processed breakdown with the Kitsu sequence without changing anything",
		Long: `Build the local shot ledger from a processed Kitsu CSV (as written by
"shotsync ingest") and the remote ledger from the Kitsu sequence, then print
every discrepancy. With --clips the clip folder is also checked against the
remote shot list. Nothing is sent to Kitsu.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(formatArg)
			if err != nil {
				return err
			}
			csvPath = strings.TrimSpace(csvPath)
			project = strings.TrimSpace(project)
			if csvPath == "" || project == "" {
				return services.Wrap(services.ErrValidation, "cli", "reconcile", "--csv and --push are required", nil)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if strings.TrimSpace(sequence) == "" {
				sequence = cfg.Breakdown.Sequence
			}

			path, err := config.ExpandPath(csvPath)
			if err != nil {
				return err
			}
			table, err := breakdown.ReadFile(path)
			if err != nil {
				return services.Wrap(services.ErrValidation, "breakdown", "read", path, err)
			}
			local, err := ledger.FromLocal(table)
			if err != nil {
				return services.Wrap(services.ErrValidation, "ledger", "local", path, err)
			}
			remote, err := fetchRemote(cmd.Context(), cfg, project, sequence, logger)
			if err != nil {
				return err
			}

			report := reconcile.Report{Shots: reconcile.CompareMetadata(local, remote.ledger)}
			if dir := strings.TrimSpace(clipsDir); dir != "" {
				expanded, err := config.ExpandPath(dir)
				if err != nil {
					return err
				}
				artifacts, err := workspace.Artifacts(expanded, cfg.Media.Extension)
				if err != nil {
					return err
				}
				ids := make([]string, len(artifacts))
				for i, a := range artifacts {
					ids[i] = reconcile.ArtifactID(a)
				}
				report.Presence = reconcile.CheckPresence(remote.ledger, ids)
			} else {
				report.Presence = reconcile.Presence{Missing: []string{}, Extra: []string{}}
			}
			if report.Shots == nil {
				report.Shots = []reconcile.ShotDiscrepancy{}
			}

			if handled, err := writeStructured(cmd, format, report); handled {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderReport(report))
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Processed Kitsu CSV to compare")
	cmd.Flags().StringVarP(&project, "push", "p", "", "Kitsu project to compare against")
	cmd.Flags().StringVar(&clipsDir, "clips", "", "Clip folder to check against the remote shot list")
	cmd.Flags().StringVar(&sequence, "sequence", "", "Sequence name (default breakdown.sequence)")
	cmd.Flags().StringVar(&formatArg, "format", "table", "Output format: table, json or yaml")
	return cmd
}
