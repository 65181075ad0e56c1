package db

import (
	"fmt"
	"time"

	"tslpm/internal/domain"
)

// Run is one persisted orchestrator run.
type Run struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Summary    domain.RunSummary
}

// SaveRun records a run and its per-patch results in one transaction.
func (d *DB) SaveRun(run Run, results []domain.PatchResult) (int64, error) {
	tx, err := d.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		INSERT INTO runs (started_at, finished_at, processed, succeeded, failed, skipped, missing)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.StartedAt, run.FinishedAt,
		run.Summary.Processed, run.Summary.Succeeded, run.Summary.Failed,
		run.Summary.Skipped, run.Summary.Missing)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for _, r := range results {
		if _, err := tx.Exec(`
			INSERT INTO patch_results (run_id, mod_name, patch_name, status, exit_code, log_path, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, runID, r.ModName, r.PatchName, string(r.Status), r.ExitCode, r.LogPath, r.Reason); err != nil {
			return 0, fmt.Errorf("inserting patch result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (d *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.Query(`
		SELECT id, started_at, finished_at, processed, succeeded, failed, skipped, missing
		FROM runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt,
			&r.Summary.Processed, &r.Summary.Succeeded, &r.Summary.Failed,
			&r.Summary.Skipped, &r.Summary.Missing); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRunResults returns the per-patch results of a run in processing order.
func (d *DB) GetRunResults(runID int64) ([]domain.PatchResult, error) {
	rows, err := d.Query(`
		SELECT mod_name, patch_name, status, exit_code, COALESCE(log_path, ''), COALESCE(reason, '')
		FROM patch_results WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying patch results: %w", err)
	}
	defer rows.Close()

	var results []domain.PatchResult
	for rows.Next() {
		var r domain.PatchResult
		var status string
		if err := rows.Scan(&r.ModName, &r.PatchName, &status, &r.ExitCode, &r.LogPath, &r.Reason); err != nil {
			return nil, fmt.Errorf("scanning patch result: %w", err)
		}
		r.Status = domain.PatchStatus(status)
		results = append(results, r)
	}
	return results, rows.Err()
}
