package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/snapdiff/snapdiff/internal/domain/regression"
	"github.com/snapdiff/snapdiff/internal/pkg/errors"
)

type RegressionRepository struct {
	db *sql.DB
}

func NewRegressionRepository(db *sql.DB) regression.Repository {
	return &RegressionRepository{db: db}
}

const regressionColumns = `id, test_run_id, baseline_run_id, test_name, viewport, step_name,
	pixels_different, percentage_different, width, height, threshold, is_significant,
	diff_ref, annotation, status, reviewed_by, reviewed_at, notes, created_at, updated_at`

func (r *RegressionRepository) Create(ctx context.Context, reg *regression.Regression) (int64, error) {
	now := time.Now()
	reg.CreatedAt = now
	if reg.Status == "" {
		reg.Status = regression.StatusPending
	}

	query := `INSERT INTO regressions (test_run_id, baseline_run_id, test_name, viewport, step_name,
		pixels_different, percentage_different, width, height, threshold, is_significant,
		diff_ref, annotation, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		reg.TestRunID, nullableID(reg.BaselineRunID), reg.TestName, reg.Viewport, reg.StepName,
		reg.PixelsDifferent, reg.PercentageDifferent, reg.Width, reg.Height, reg.Threshold, reg.IsSignificant,
		reg.DiffRef, reg.Annotation, reg.Status, now.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, errors.DatabaseError("Failed to create regression", err)
	}

	return result.LastInsertId()
}

func (r *RegressionRepository) Upsert(ctx context.Context, reg *regression.Regression) (int64, error) {
	now := time.Now()
	reg.CreatedAt = now
	if reg.Status == "" {
		reg.Status = regression.StatusPending
	}

	// A re-run refreshes the comparison fields of the existing record but
	// preserves its identity and review state.
	query := `INSERT INTO regressions (test_run_id, baseline_run_id, test_name, viewport, step_name,
		pixels_different, percentage_different, width, height, threshold, is_significant,
		diff_ref, annotation, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(test_run_id, test_name, viewport, step_name) DO UPDATE SET
			baseline_run_id = excluded.baseline_run_id,
			pixels_different = excluded.pixels_different,
			percentage_different = excluded.percentage_different,
			width = excluded.width,
			height = excluded.height,
			threshold = excluded.threshold,
			is_significant = excluded.is_significant,
			diff_ref = excluded.diff_ref,
			annotation = excluded.annotation,
			updated_at = excluded.created_at`

	_, err := r.db.ExecContext(ctx, query,
		reg.TestRunID, nullableID(reg.BaselineRunID), reg.TestName, reg.Viewport, reg.StepName,
		reg.PixelsDifferent, reg.PercentageDifferent, reg.Width, reg.Height, reg.Threshold, reg.IsSignificant,
		reg.DiffRef, reg.Annotation, reg.Status, now.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, errors.DatabaseError("Failed to upsert regression", err)
	}

	var id int64
	err = r.db.QueryRowContext(ctx,
		`SELECT id FROM regressions WHERE test_run_id = ? AND test_name = ? AND viewport = ? AND step_name = ?`,
		reg.TestRunID, reg.TestName, reg.Viewport, reg.StepName).Scan(&id)
	if err != nil {
		return 0, errors.DatabaseError("Failed to resolve upserted regression", err)
	}

	reg.ID = id
	return id, nil
}

func (r *RegressionRepository) GetByID(ctx context.Context, id int64) (*regression.Regression, error) {
	query := fmt.Sprintf(`SELECT %s FROM regressions WHERE id = ?`, regressionColumns)

	reg, err := scanRegression(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Regression")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get regression", err)
	}

	return reg, nil
}

func (r *RegressionRepository) List(ctx context.Context, testRunID int64, filter regression.Filter) ([]*regression.Regression, error) {
	whereClause, args := regressionWhere(testRunID, filter)

	query := fmt.Sprintf(`SELECT %s FROM regressions WHERE %s ORDER BY test_name, viewport, step_name`,
		regressionColumns, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list regressions", err)
	}
	defer rows.Close()

	var regs []*regression.Regression
	for rows.Next() {
		reg, err := scanRegression(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan regression", err)
		}
		regs = append(regs, reg)
	}

	return regs, rows.Err()
}

func (r *RegressionRepository) ListWithPagination(ctx context.Context, testRunID int64, filter regression.Filter, limit, offset int) ([]*regression.Regression, int64, error) {
	whereClause, args := regressionWhere(testRunID, filter)

	var total int64
	err := r.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM regressions WHERE %s", whereClause), args...).Scan(&total)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to count regressions", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM regressions WHERE %s ORDER BY test_name, viewport, step_name LIMIT ? OFFSET ?`,
		regressionColumns, whereClause)

	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list regressions", err)
	}
	defer rows.Close()

	var regs []*regression.Regression
	for rows.Next() {
		reg, err := scanRegression(rows)
		if err != nil {
			return nil, 0, errors.DatabaseError("Failed to scan regression", err)
		}
		regs = append(regs, reg)
	}

	return regs, total, rows.Err()
}

func (r *RegressionRepository) UpdateReview(ctx context.Context, id int64, status, notes, reviewedBy string, reviewedAt time.Time) error {
	query := `UPDATE regressions SET status = ?, notes = ?, reviewed_by = ?, reviewed_at = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		status, notes, reviewedBy, reviewedAt.UTC().Format(time.RFC3339), reviewedAt.UTC().Format(time.RFC3339), id)
	if err != nil {
		return errors.DatabaseError("Failed to update regression review", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to update regression review", err)
	}
	if rows == 0 {
		return errors.NotFound("Regression")
	}

	return nil
}

func (r *RegressionRepository) Stats(ctx context.Context, testRunID int64) (*regression.Stats, error) {
	stats := &regression.Stats{ByStatus: make(map[string]int)}

	query := `SELECT status, is_significant, COUNT(*) FROM regressions WHERE test_run_id = ? GROUP BY status, is_significant`

	rows, err := r.db.QueryContext(ctx, query, testRunID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to get regression stats", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var significant bool
		var count int
		if err := rows.Scan(&status, &significant, &count); err != nil {
			return nil, errors.DatabaseError("Failed to scan stats", err)
		}
		stats.Total += count
		if significant {
			stats.Significant += count
		}
		if status == regression.StatusPending {
			stats.Pending += count
		}
		stats.ByStatus[status] += count
	}

	return stats, rows.Err()
}

func (r *RegressionRepository) Trends(ctx context.Context, suiteID int64, since time.Time) ([]*regression.TrendPoint, error) {
	// created_at is RFC3339, so its first ten characters are the date and
	// lexicographic order is chronological order.
	query := `SELECT substr(r.created_at, 1, 10) AS day,
			COUNT(*),
			SUM(CASE WHEN r.is_significant THEN 1 ELSE 0 END)
		FROM regressions r
		JOIN test_runs t ON t.id = r.test_run_id
		WHERE t.suite_id = ? AND r.created_at >= ?
		GROUP BY day
		ORDER BY day ASC`

	rows, err := r.db.QueryContext(ctx, query, suiteID, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, errors.DatabaseError("Failed to get regression trends", err)
	}
	defer rows.Close()

	var points []*regression.TrendPoint
	for rows.Next() {
		var p regression.TrendPoint
		if err := rows.Scan(&p.Date, &p.RegressionCount, &p.SignificantCount); err != nil {
			return nil, errors.DatabaseError("Failed to scan trend point", err)
		}
		points = append(points, &p)
	}

	return points, rows.Err()
}

func regressionWhere(testRunID int64, filter regression.Filter) (string, []interface{}) {
	where := []string{"test_run_id = ?"}
	args := []interface{}{testRunID}

	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.IsSignificant != nil {
		where = append(where, "is_significant = ?")
		args = append(args, *filter.IsSignificant)
	}

	return strings.Join(where, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRegression(row rowScanner) (*regression.Regression, error) {
	var reg regression.Regression
	var baselineRunID sql.NullInt64
	var reviewedAt, updatedAt sql.NullString
	var createdAt string

	err := row.Scan(&reg.ID, &reg.TestRunID, &baselineRunID, &reg.TestName, &reg.Viewport, &reg.StepName,
		&reg.PixelsDifferent, &reg.PercentageDifferent, &reg.Width, &reg.Height, &reg.Threshold, &reg.IsSignificant,
		&reg.DiffRef, &reg.Annotation, &reg.Status, &reg.ReviewedBy, &reviewedAt, &reg.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if baselineRunID.Valid {
		reg.BaselineRunID = &baselineRunID.Int64
	}
	if reviewedAt.Valid {
		if t, err := time.Parse(time.RFC3339, reviewedAt.String); err == nil {
			reg.ReviewedAt = &t
		}
	}
	reg.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if updatedAt.Valid {
		reg.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt.String)
	}

	return &reg, nil
}

func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}
