package runstore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/airway-data/ventscan/internal/feature"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one recorded extraction run.
type Run struct {
	RunID         string
	CreatedUnix   int64
	Mode          string
	ManifestPath  string
	ConfigJSON    string
	Status        string
	Error         string
	SampleCount   int
	FeatureCount  int
	DurationMs    int64
	CompletedUnix int64
}

// InsertRun records a new run.
func (s *Store) InsertRun(r *Run) error {
	_, err := s.Exec(`
		INSERT INTO extraction_runs (run_id, created_unix, mode, manifest_path, config_json, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.RunID, r.CreatedUnix, r.Mode, r.ManifestPath, r.ConfigJSON, r.Status)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", r.RunID, err)
	}
	return nil
}

// UpdateRunStatus sets a run's status and error message.
func (s *Store) UpdateRunStatus(runID, status, errMsg string) error {
	res, err := s.Exec(`UPDATE extraction_runs SET status = ?, error = ? WHERE run_id = ?`,
		status, errMsg, runID)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", runID, err)
	}
	return requireRowChanged(res, runID)
}

// CompleteRun marks a run completed with its final statistics.
func (s *Store) CompleteRun(runID string, sampleCount, featureCount int, durationMs, completedUnix int64) error {
	res, err := s.Exec(`
		UPDATE extraction_runs
		SET status = ?, sample_count = ?, feature_count = ?, duration_ms = ?, completed_unix = ?
		WHERE run_id = ?`,
		StatusCompleted, sampleCount, featureCount, durationMs, completedUnix, runID)
	if err != nil {
		return fmt.Errorf("failed to complete run %s: %w", runID, err)
	}
	return requireRowChanged(res, runID)
}

// GetRun loads one run by id.
func (s *Store) GetRun(runID string) (*Run, error) {
	row := s.QueryRow(`
		SELECT run_id, created_unix, mode, manifest_path, config_json, status, error,
		       sample_count, feature_count, duration_ms, completed_unix
		FROM extraction_runs WHERE run_id = ?`, runID)

	var r Run
	err := row.Scan(&r.RunID, &r.CreatedUnix, &r.Mode, &r.ManifestPath, &r.ConfigJSON,
		&r.Status, &r.Error, &r.SampleCount, &r.FeatureCount, &r.DurationMs, &r.CompletedUnix)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	return &r, nil
}

// ListRuns returns up to limit runs, newest first.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	rows, err := s.Query(`
		SELECT run_id, created_unix, mode, manifest_path, config_json, status, error,
		       sample_count, feature_count, duration_ms, completed_unix
		FROM extraction_runs ORDER BY created_unix DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.CreatedUnix, &r.Mode, &r.ManifestPath, &r.ConfigJSON,
			&r.Status, &r.Error, &r.SampleCount, &r.FeatureCount, &r.DurationMs, &r.CompletedUnix); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// SaveFeatureTable stores a run's feature table: column names on the run
// row, one feature_rows record per table row. Runs inside a transaction so
// a failed save leaves no partial table behind.
func (s *Store) SaveFeatureTable(runID string, tbl *feature.Table) error {
	if err := tbl.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid feature table: %w", err)
	}
	columnsJSON, err := json.Marshal(tbl.Names)
	if err != nil {
		return fmt.Errorf("failed to encode column names: %w", err)
	}

	tx, err := s.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE extraction_runs SET columns_json = ? WHERE run_id = ?`,
		string(columnsJSON), runID)
	if err != nil {
		return fmt.Errorf("failed to store columns for run %s: %w", runID, err)
	}
	if err := requireRowChanged(res, runID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO feature_rows (run_id, row_index, label, features_json)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range tbl.Rows {
		featuresJSON, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to encode row %d: %w", i, err)
		}
		if _, err := stmt.Exec(runID, i, tbl.Labels[i], string(featuresJSON)); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// FeatureTable reloads a run's stored feature table in row order.
func (s *Store) FeatureTable(runID string) (*feature.Table, error) {
	var columnsJSON string
	err := s.QueryRow(`SELECT columns_json FROM extraction_runs WHERE run_id = ?`, runID).
		Scan(&columnsJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load columns for run %s: %w", runID, err)
	}

	var names []string
	if err := json.Unmarshal([]byte(columnsJSON), &names); err != nil {
		return nil, fmt.Errorf("failed to decode column names: %w", err)
	}

	rows, err := s.Query(`
		SELECT label, features_json FROM feature_rows
		WHERE run_id = ? ORDER BY row_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rows for run %s: %w", runID, err)
	}
	defer rows.Close()

	tbl := feature.NewTable(names)
	for rows.Next() {
		var label, featuresJSON string
		if err := rows.Scan(&label, &featuresJSON); err != nil {
			return nil, fmt.Errorf("failed to scan feature row: %w", err)
		}
		var values []float64
		if err := json.Unmarshal([]byte(featuresJSON), &values); err != nil {
			return nil, fmt.Errorf("failed to decode feature row: %w", err)
		}
		if err := tbl.Append(values, label); err != nil {
			return nil, fmt.Errorf("stored row does not match columns: %w", err)
		}
	}
	return tbl, rows.Err()
}

// requireRowChanged turns a zero-row update into a not-found error.
func requireRowChanged(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}
