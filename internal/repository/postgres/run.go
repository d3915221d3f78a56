package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/snapdiff/snapdiff/internal/domain/run"
	"github.com/snapdiff/snapdiff/internal/pkg/errors"
)

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) run.Repository {
	return &RunRepository{db: db}
}

func (r *RunRepository) GetByID(ctx context.Context, id int64) (*run.TestRun, error) {
	query := `SELECT id, suite_id, name, status, started_at, completed_at, created_at FROM test_runs WHERE id = ?`

	tr, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Test run")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get test run", err)
	}

	return tr, nil
}

func (r *RunRepository) ListScreenshots(ctx context.Context, testRunID int64) ([]*run.Screenshot, error) {
	query := `SELECT id, test_run_id, test_name, viewport, step_name, ref, captured_at
		FROM screenshots WHERE test_run_id = ? ORDER BY test_name, viewport, step_name`

	rows, err := r.db.QueryContext(ctx, query, testRunID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list screenshots", err)
	}
	defer rows.Close()

	var shots []*run.Screenshot
	for rows.Next() {
		var s run.Screenshot
		var capturedAt string
		err := rows.Scan(&s.ID, &s.TestRunID, &s.TestName, &s.Viewport, &s.StepName, &s.Ref, &capturedAt)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan screenshot", err)
		}
		s.CapturedAt, _ = time.Parse(time.RFC3339, capturedAt)
		shots = append(shots, &s)
	}

	return shots, rows.Err()
}

func (r *RunRepository) ListPendingAnalysis(ctx context.Context, limit int) ([]*run.TestRun, error) {
	query := `SELECT id, suite_id, name, status, started_at, completed_at, created_at
		FROM test_runs WHERE status = ? ORDER BY id ASC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, run.StatusCompleted, limit)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list pending runs", err)
	}
	defer rows.Close()

	var runs []*run.TestRun
	for rows.Next() {
		tr, err := scanRun(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan test run", err)
		}
		runs = append(runs, tr)
	}

	return runs, rows.Err()
}

func (r *RunRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	result, err := r.db.ExecContext(ctx, "UPDATE test_runs SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return errors.DatabaseError("Failed to update run status", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to update run status", err)
	}
	if rows == 0 {
		return errors.NotFound("Test run")
	}

	return nil
}

func scanRun(row rowScanner) (*run.TestRun, error) {
	var tr run.TestRun
	var startedAt, createdAt string
	var completedAt sql.NullString

	err := row.Scan(&tr.ID, &tr.SuiteID, &tr.Name, &tr.Status, &startedAt, &completedAt, &createdAt)
	if err != nil {
		return nil, err
	}

	tr.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	tr.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if completedAt.Valid {
		if t, err := time.Parse(time.RFC3339, completedAt.String); err == nil {
			tr.CompletedAt = &t
		}
	}

	return &tr, nil
}
