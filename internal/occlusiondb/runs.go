package occlusiondb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunRecord represents one detection run over an input source.
type RunRecord struct {
	RunID           string          `json:"run_id"`
	Source          string          `json:"source"`
	Params          json.RawMessage `json:"params,omitempty"`
	Status          string          `json:"status"`
	Error           string          `json:"error,omitempty"`
	FramesProcessed int             `json:"frames_processed"`
	OccludedFrames  int             `json:"occluded_frames"`
	StartedAt       time.Time       `json:"started_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
}

// InsertRun creates a run record when processing starts and returns its ID.
// A missing RunID is filled with a fresh UUID.
func (db *OcclusionDB) InsertRun(rec RunRecord) (string, error) {
	if rec.RunID == "" {
		rec.RunID = uuid.New().String()
	}
	if rec.Status == "" {
		rec.Status = "running"
	}
	query := `
		INSERT INTO occlusion_runs (run_id, source, params, status, started_at)
		VALUES (?, ?, ?, ?, ?)
	`
	var params *string
	if len(rec.Params) > 0 {
		s := string(rec.Params)
		params = &s
	}
	_, err := db.Exec(query,
		rec.RunID,
		rec.Source,
		params,
		rec.Status,
		rec.StartedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run %s: %w", rec.RunID, err)
	}
	return rec.RunID, nil
}

// CompleteRun marks a run finished, recording its counters and any terminal
// error message.
func (db *OcclusionDB) CompleteRun(runID string, framesProcessed, occludedFrames int, completedAt time.Time, errMsg string) error {
	status := "completed"
	if errMsg != "" {
		status = "failed"
	}
	query := `
		UPDATE occlusion_runs
		SET status = ?, error = ?, frames_processed = ?, occluded_frames = ?, completed_at = ?
		WHERE run_id = ?
	`
	_, err := db.Exec(query,
		status,
		nullStr(errMsg),
		framesProcessed,
		occludedFrames,
		completedAt.UTC().Format(time.RFC3339),
		runID,
	)
	if err != nil {
		return fmt.Errorf("completing run %s: %w", runID, err)
	}
	return nil
}

// GetRun returns a run by ID, or nil when it does not exist.
func (db *OcclusionDB) GetRun(runID string) (*RunRecord, error) {
	query := `
		SELECT run_id, source, params, status, error, frames_processed,
		       occluded_frames, started_at, completed_at
		FROM occlusion_runs
		WHERE run_id = ?
	`
	rec, err := scanRun(db.QueryRow(query, runID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying run %s: %w", runID, err)
	}
	return rec, nil
}

// ListRuns returns recent runs, most recent first.
func (db *OcclusionDB) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	query := `
		SELECT run_id, source, params, status, error, frames_processed,
		       occluded_frames, started_at, completed_at
		FROM occlusion_runs
		ORDER BY started_at DESC
		LIMIT ?
	`
	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		runs = append(runs, *rec)
	}
	return runs, rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var rec RunRecord
	var params, errMsg, completedAt sql.NullString
	var startedAt string
	if err := row.Scan(
		&rec.RunID, &rec.Source, &params, &rec.Status, &errMsg,
		&rec.FramesProcessed, &rec.OccludedFrames, &startedAt, &completedAt,
	); err != nil {
		return nil, err
	}
	if params.Valid && params.String != "" {
		rec.Params = json.RawMessage(params.String)
	}
	if errMsg.Valid {
		rec.Error = errMsg.String
	}
	t, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at for run %s: %w", rec.RunID, err)
	}
	rec.StartedAt = t
	if completedAt.Valid {
		t, err := time.Parse(time.RFC3339, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing completed_at for run %s: %w", rec.RunID, err)
		}
		rec.CompletedAt = &t
	}
	return &rec, nil
}
