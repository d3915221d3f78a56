package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/snapdiff/snapdiff/internal/domain/settings"
	"github.com/snapdiff/snapdiff/internal/pkg/errors"
)

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) settings.Repository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) GetSettings(ctx context.Context, suiteID int64) (*settings.SuiteSettings, error) {
	query := `SELECT suite_id, threshold, include_antialiasing, updated_at FROM suite_settings WHERE suite_id = ?`

	var s settings.SuiteSettings
	var threshold sql.NullFloat64
	var updatedAt sql.NullString
	err := r.db.QueryRowContext(ctx, query, suiteID).Scan(&s.SuiteID, &threshold, &s.IncludeAntialiasing, &updatedAt)

	if err == sql.ErrNoRows {
		// Missing row means the suite runs on system defaults.
		return &settings.SuiteSettings{SuiteID: suiteID}, nil
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get suite settings", err)
	}

	if threshold.Valid {
		s.Threshold = &threshold.Float64
	}
	if updatedAt.Valid {
		s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt.String)
	}

	return &s, nil
}

func (r *SettingsRepository) UpsertSettings(ctx context.Context, s *settings.SuiteSettings) error {
	s.UpdatedAt = time.Now()

	query := `INSERT INTO suite_settings (suite_id, threshold, include_antialiasing, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(suite_id) DO UPDATE SET
			threshold = excluded.threshold,
			include_antialiasing = excluded.include_antialiasing,
			updated_at = excluded.updated_at`

	var threshold interface{}
	if s.Threshold != nil {
		threshold = *s.Threshold
	}

	_, err := r.db.ExecContext(ctx, query, s.SuiteID, threshold, s.IncludeAntialiasing, s.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return errors.DatabaseError("Failed to upsert suite settings", err)
	}

	return nil
}

func (r *SettingsRepository) ListIgnoreRegions(ctx context.Context, suiteID int64, testName, viewport string) ([]*settings.IgnoreRegion, error) {
	// Empty test_name or viewport on a row acts as a wildcard, so a
	// suite-wide region applies to every key.
	query := `SELECT id, suite_id, test_name, viewport, x, y, width, height, created_at
		FROM ignore_regions
		WHERE suite_id = ? AND (test_name = ? OR test_name = '') AND (viewport = ? OR viewport = '')
		ORDER BY id`

	return r.queryIgnoreRegions(ctx, query, suiteID, testName, viewport)
}

func (r *SettingsRepository) ListAllIgnoreRegions(ctx context.Context, suiteID int64) ([]*settings.IgnoreRegion, error) {
	query := `SELECT id, suite_id, test_name, viewport, x, y, width, height, created_at
		FROM ignore_regions WHERE suite_id = ? ORDER BY id`

	return r.queryIgnoreRegions(ctx, query, suiteID)
}

func (r *SettingsRepository) CreateIgnoreRegion(ctx context.Context, region *settings.IgnoreRegion) (int64, error) {
	region.CreatedAt = time.Now()

	query := `INSERT INTO ignore_regions (suite_id, test_name, viewport, x, y, width, height, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		region.SuiteID, region.TestName, region.Viewport,
		region.X, region.Y, region.Width, region.Height,
		region.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, errors.DatabaseError("Failed to create ignore region", err)
	}

	return result.LastInsertId()
}

func (r *SettingsRepository) DeleteIgnoreRegion(ctx context.Context, suiteID, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM ignore_regions WHERE suite_id = ? AND id = ?", suiteID, id)
	if err != nil {
		return errors.DatabaseError("Failed to delete ignore region", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to delete ignore region", err)
	}
	if rows == 0 {
		return errors.NotFound("Ignore region")
	}

	return nil
}

func (r *SettingsRepository) queryIgnoreRegions(ctx context.Context, query string, args ...interface{}) ([]*settings.IgnoreRegion, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list ignore regions", err)
	}
	defer rows.Close()

	var regions []*settings.IgnoreRegion
	for rows.Next() {
		var reg settings.IgnoreRegion
		var createdAt string
		err := rows.Scan(&reg.ID, &reg.SuiteID, &reg.TestName, &reg.Viewport,
			&reg.X, &reg.Y, &reg.Width, &reg.Height, &createdAt)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan ignore region", err)
		}
		reg.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		regions = append(regions, &reg)
	}

	return regions, rows.Err()
}
