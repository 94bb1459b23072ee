package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"shotsync/internal/config"
	"shotsync/internal/history"
	"shotsync/internal/logging"
	"shotsync/internal/services"
)

// ingestRequest is the validated flag set of "shotsync ingest".
type ingestRequest struct {
	CSVPath     string
	VideoPath   string
	Project     string
	PushOnlyDir string
	Sequence    string
}

func (r ingestRequest) validate() error {
	invalid := func(msg string) error {
		return services.Wrap(services.ErrValidation, "cli", "ingest", msg, nil)
	}
	switch {
	case r.VideoPath != "" && r.CSVPath == "":
		return invalid("--video requires --csv")
	case r.PushOnlyDir != "" && r.Project == "":
		return invalid("--push-only requires --push")
	case r.PushOnlyDir != "" && (r.CSVPath != "" || r.VideoPath != ""):
		return invalid("--push-only cannot be combined with --csv or --video")
	case r.CSVPath == "" && r.PushOnlyDir == "":
		return invalid("one of --csv or --push-only is required")
	}
	return nil
}

func (r ingestRequest) mode() history.Mode {
	switch {
	case r.PushOnlyDir != "":
		return history.ModePushOnly
	case r.Project != "":
		return history.ModePush
	default:
		return history.ModeProcess
	}
}

func (r ingestRequest) pushes() bool { return r.Project != "" }

// expand resolves ~ in every path flag.
func (r *ingestRequest) expand() error {
	for _, p := range []*string{&r.CSVPath, &r.VideoPath, &r.PushOnlyDir} {
		if *p == "" {
			continue
		}
		expanded, err := config.ExpandPath(*p)
		if err != nil {
			return services.Wrap(services.ErrValidation, "cli", "ingest", "resolve path", err)
		}
		*p = expanded
	}
	return nil
}

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var req ingestRequest

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Process a breakdown CSV, cut clips and publish to Kitsu",
		Long: `Process a shot breakdown CSV into a Kitsu import file inside a new
timestamped folder under paths.output_dir.

With --video the edit is cut into one clip per shot. With --push the local
shots are reconciled against the Kitsu sequence; any discrepancy is shown and
nothing is sent to Kitsu until you answer yes. --push-only re-publishes an
existing output folder using its newest CSV.`,
		Example: `  shotsync ingest --csv breakdown.csv
  shotsync ingest --csv breakdown.csv -v edit.mov -p "My Film"
  shotsync ingest --push-only ~/.local/share/shotsync/processed/20261019_101500 -p "My Film"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.CSVPath = strings.TrimSpace(req.CSVPath)
			req.VideoPath = strings.TrimSpace(req.VideoPath)
			req.Project = strings.TrimSpace(req.Project)
			req.PushOnlyDir = strings.TrimSpace(req.PushOnlyDir)
			req.Sequence = strings.TrimSpace(req.Sequence)
			if err := req.validate(); err != nil {
				return err
			}
			if err := req.expand(); err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if req.Sequence == "" {
				req.Sequence = cfg.Breakdown.Sequence
			}
			logger, err := ctx.ensureLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			runner := &ingester{
				cfg:      cfg,
				logger:   logger,
				out:      cmd.OutOrStdout(),
				progress: cmd.ErrOrStderr(),
				confirm:  terminalConfirmer(cmd.InOrStdin(), cmd.OutOrStdout()),
				now:      time.Now,
			}
			recorder := openRecorder(cmd.Context(), cfg, logger)
			defer recorder.close()

			runCtx := recorder.start(cmd.Context(), req)
			runner.logger = logging.WithContext(runCtx, logger)
			result, runErr := runner.run(runCtx, req)
			recorder.finish(runCtx, result, runErr)
			if runErr != nil {
				return runErr
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.summary(req))
			runner.logger.Info("ingest finished",
				logging.String("output_dir", result.OutputDir),
				logging.String("decision", result.decisionLabel()),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.CSVPath, "csv", "", "Breakdown CSV to process")
	cmd.Flags().StringVarP(&req.VideoPath, "video", "v", "", "Edit video to cut into per-shot clips (requires --csv)")
	cmd.Flags().StringVarP(&req.Project, "push", "p", "", "Kitsu project to reconcile and publish to")
	cmd.Flags().StringVar(&req.PushOnlyDir, "push-only", "", "Publish an existing output folder (requires --push)")
	cmd.Flags().StringVar(&req.Sequence, "sequence", "", "Sequence name (default breakdown.sequence)")
	return cmd
}
