package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/snapdiff/snapdiff/internal/domain/baseline"
	"github.com/snapdiff/snapdiff/internal/pkg/errors"
)

type BaselineRepository struct {
	db *sql.DB
}

func NewBaselineRepository(db *sql.DB) baseline.Repository {
	return &BaselineRepository{db: db}
}

func (r *BaselineRepository) Get(ctx context.Context, suiteID int64) (*baseline.Baseline, error) {
	query := `SELECT suite_id, baseline_run_id, set_at, notes FROM baselines WHERE suite_id = ?`

	var b baseline.Baseline
	var runID sql.NullInt64
	var setAt sql.NullString
	err := r.db.QueryRowContext(ctx, query, suiteID).Scan(&b.SuiteID, &runID, &setAt, &b.Notes)

	if err == sql.ErrNoRows {
		// No row means no baseline, a normal state for a new suite.
		return &baseline.Baseline{SuiteID: suiteID}, nil
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get baseline", err)
	}

	if runID.Valid {
		b.BaselineRunID = &runID.Int64
	}
	if setAt.Valid {
		if t, err := time.Parse(time.RFC3339, setAt.String); err == nil {
			b.SetAt = &t
		}
	}

	return &b, nil
}

func (r *BaselineRepository) Set(ctx context.Context, suiteID, runID int64, notes string) error {
	query := `INSERT INTO baselines (suite_id, baseline_run_id, set_at, notes) VALUES (?, ?, ?, ?)
		ON CONFLICT(suite_id) DO UPDATE SET
			baseline_run_id = excluded.baseline_run_id,
			set_at = excluded.set_at,
			notes = excluded.notes`

	_, err := r.db.ExecContext(ctx, query, suiteID, runID, time.Now().UTC().Format(time.RFC3339), notes)
	if err != nil {
		return errors.DatabaseError("Failed to set baseline", err)
	}

	return nil
}

func (r *BaselineRepository) Clear(ctx context.Context, suiteID int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM baselines WHERE suite_id = ?", suiteID)
	if err != nil {
		return errors.DatabaseError("Failed to clear baseline", err)
	}

	return nil
}
