package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"mpegsort/internal/relocate"
	"mpegsort/internal/sorter"
)

// ErrRunNotFound is returned when a run id has no record.
var ErrRunNotFound = errors.New("run not found")

// RunStatus tracks whether a run finished.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunCancelled RunStatus = "cancelled"
)

const defaultListLimit = 20

// Run is one recorded sort invocation.
type Run struct {
	ID         string        `json:"id"`
	Source     string        `json:"source"`
	Mode       sorter.Mode   `json:"mode"`
	Workers    int           `json:"workers"`
	DryRun     bool          `json:"dry_run"`
	Status     RunStatus     `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at,omitzero"`
	Counts     sorter.Counts `json:"counts"`
	Elapsed    float64       `json:"elapsed_seconds"`
	Throughput float64       `json:"files_per_second"`
}

var _ sorter.Recorder = (*Store)(nil)

// BeginRun inserts a running record for runID.
func (s *Store) BeginRun(ctx context.Context, runID, source string, mode sorter.Mode, workers int) error {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return errors.New("run id is required")
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, source, mode, workers, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, source, mode.String(), workers, string(RunRunning), formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", runID, err)
	}
	return nil
}

// RecordOutcome appends one outcome to runID.
func (s *Store) RecordOutcome(ctx context.Context, runID string, o relocate.Outcome) error {
	_, err := s.execWithRetry(ctx,
		`INSERT INTO outcomes (run_id, original_name, source_path, success, operation, destination_dir, final_name, error_detail, dry_run, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, o.OriginalName, o.SourcePath, boolToInt(o.Success), o.Operation.String(),
		nullString(o.DestinationDir), nullString(o.FinalName), nullString(o.ErrorDetail),
		boolToInt(o.DryRun), formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("insert outcome for %s: %w", runID, err)
	}
	return nil
}

// FinishRun stores the final counters and marks the run completed or cancelled.
func (s *Store) FinishRun(ctx context.Context, runID string, summary sorter.Summary) error {
	status := RunCompleted
	if summary.Cancelled {
		status = RunCancelled
	}
	c := summary.Counts
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, dry_run = ?,
		   total_files = ?, processed = ?, succeeded = ?, errors = ?, skipped = ?,
		   audio_count = ?, video_count = ?, unknown_count = ?, extensions_corrected = ?,
		   elapsed_seconds = ?, files_per_second = ?
		 WHERE id = ?`,
		string(status), formatTime(s.now()), boolToInt(summary.DryRun),
		c.TotalFiles, c.Processed, c.Succeeded, c.Errors, c.Skipped,
		c.AudioCount, c.VideoCount, c.UnknownCount, c.ExtensionsCorrected,
		summary.ElapsedSeconds, summary.FilesPerSecond,
		runID,
	)
	if err != nil {
		return fmt.Errorf("update run %s: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

const runColumns = `id, source, mode, workers, dry_run, status, started_at, COALESCE(finished_at, ''),
	total_files, processed, succeeded, errors, skipped, audio_count, video_count, unknown_count,
	extensions_corrected, elapsed_seconds, files_per_second`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run               Run
		mode, status      string
		started, finished string
		dryRun            int
	)
	c := &run.Counts
	if err := row.Scan(&run.ID, &run.Source, &mode, &run.Workers, &dryRun, &status, &started, &finished,
		&c.TotalFiles, &c.Processed, &c.Succeeded, &c.Errors, &c.Skipped, &c.AudioCount, &c.VideoCount,
		&c.UnknownCount, &c.ExtensionsCorrected, &run.Elapsed, &run.Throughput); err != nil {
		return Run{}, err
	}
	parsed, err := sorter.ParseMode(mode)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	run.Mode = parsed
	run.DryRun = dryRun != 0
	run.Status = RunStatus(status)
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	return run, nil
}

// ListRuns returns the most recent runs, newest first. A limit <= 0 uses a
// default of 20.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a single run by id.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return run, nil
}

// Outcomes returns every outcome recorded for runID in completion order.
func (s *Store) Outcomes(ctx context.Context, runID string) ([]relocate.Outcome, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT original_name, source_path, success, operation, COALESCE(destination_dir, ''),
		        COALESCE(final_name, ''), COALESCE(error_detail, ''), dry_run
		 FROM outcomes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []relocate.Outcome
	for rows.Next() {
		var (
			o               relocate.Outcome
			success, dryRun int
			op              string
		)
		if err := rows.Scan(&o.OriginalName, &o.SourcePath, &success, &op, &o.DestinationDir, &o.FinalName, &o.ErrorDetail, &dryRun); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		parsed, err := relocate.ParseOperation(op)
		if err != nil {
			return nil, err
		}
		o.Operation = parsed
		o.Success = success != 0
		o.DryRun = dryRun != 0
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return outcomes, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
