package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Mode describes what an ingest run was asked to do.
type Mode string

const (
	ModeProcess  Mode = "process"
	ModePush     Mode = "push"
	ModePushOnly Mode = "push-only"
)

// Run is one recorded ingest.
type Run struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    time.Time
	Mode          Mode
	CSVPath       string
	VideoPath     string
	Project       string
	Sequence      string
	OutputDir     string
	Shots         int
	Clips         int
	Discrepancies int
	Decision      string
	Matched       int
	Unmatched     int
	Failed        int
	Error         string
}

// Finished reports whether Finish was recorded.
func (r Run) Finished() bool { return !r.FinishedAt.IsZero() }

// Start inserts a run and assigns its id.
func (s *Store) Start(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = newRunID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.exec(ctx, `INSERT INTO runs (id, started_at, mode, csv_path, video_path, project, sequence, output_dir)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(time.RFC3339Nano), string(run.Mode),
		run.CSVPath, run.VideoPath, run.Project, run.Sequence, run.OutputDir,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Finish stores the outcome fields of run.
func (s *Store) Finish(ctx context.Context, run *Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	res, err := s.exec(ctx, `UPDATE runs SET finished_at = ?, output_dir = ?, shots = ?, clips = ?, discrepancies = ?,
		decision = ?, matched = ?, unmatched = ?, failed = ?, error = ? WHERE id = ?`,
		run.FinishedAt.UTC().Format(time.RFC3339Nano), run.OutputDir, run.Shots, run.Clips, run.Discrepancies,
		run.Decision, run.Matched, run.Unmatched, run.Failed, run.Error, run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, run.ID)
	}
	return nil
}

const runColumns = `id, started_at, finished_at, mode, csv_path, video_path, project, sequence, output_dir,
	shots, clips, discrepancies, decision, matched, unmatched, failed, error`

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, "SELECT "+runColumns+" FROM runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Get returns one run by id.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run                                    Run
		started                                string
		finished, mode, csvPath, videoPath     sql.NullString
		project, sequence, outputDir, decision sql.NullString
		errText                                sql.NullString
	)
	err := row.Scan(&run.ID, &started, &finished, &mode, &csvPath, &videoPath, &project, &sequence, &outputDir,
		&run.Shots, &run.Clips, &run.Discrepancies, &decision, &run.Matched, &run.Unmatched, &run.Failed, &errText)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished.String)
	run.Mode = Mode(mode.String)
	run.CSVPath = csvPath.String
	run.VideoPath = videoPath.String
	run.Project = project.String
	run.Sequence = sequence.String
	run.OutputDir = outputDir.String
	run.Decision = decision.String
	run.Error = errText.String
	return run, nil
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
