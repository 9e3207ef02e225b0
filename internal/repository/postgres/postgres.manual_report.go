// FilePath: internal/repository/postgres/postgres.manual_report.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/mirnanodes/broilink-backend/internal/database"
	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/models"
)

type ManualReportRepo struct {
	PostgresBaseRepo
}

func NewManualReportRepository(db database.DB) *ManualReportRepo {
	repo := &PostgresBaseRepo{db: db}
	return &ManualReportRepo{PostgresBaseRepo: *repo}
}

// Upsert writes a daily report. A second submission for the same farm and
// date overwrites the existing row and bumps updated_at; created_at keeps
// the first submission time.
func (r *ManualReportRepo) Upsert(ctx context.Context, report *models.ManualReport) error {
	query := `
		INSERT INTO manual_reports (
			farm_id, user_id_input, report_date,
			konsumsi_pakan, konsumsi_air, rata_rata_bobot, jumlah_kematian,
			created_at, updated_at
		) VALUES (
			:farm_id, :user_id_input, :report_date,
			:konsumsi_pakan, :konsumsi_air, :rata_rata_bobot, :jumlah_kematian,
			:created_at, :updated_at
		)
		ON CONFLICT (farm_id, report_date) DO UPDATE SET
			user_id_input = EXCLUDED.user_id_input,
			konsumsi_pakan = EXCLUDED.konsumsi_pakan,
			konsumsi_air = EXCLUDED.konsumsi_air,
			rata_rata_bobot = EXCLUDED.rata_rata_bobot,
			jumlah_kematian = EXCLUDED.jumlah_kematian,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`

	now := time.Now()
	report.CreatedAt = now
	report.UpdatedAt = now

	rows, err := r.db.GetDB().NamedQueryContext(ctx, query, report)
	if err != nil {
		return errors.NewDatabaseError("failed to upsert manual report", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&report.ID, &report.CreatedAt); err != nil {
			return errors.NewDatabaseError("failed to read upserted report", err)
		}
	}
	return nil
}

func (r *ManualReportRepo) GetByDate(ctx context.Context, farmID int64, reportDate time.Time) (*models.ManualReport, error) {
	report := &models.ManualReport{}
	query := `SELECT * FROM manual_reports WHERE farm_id = $1 AND report_date = $2`

	err := r.db.GetDB().GetContext(ctx, report, query, farmID, reportDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("manual report not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get manual report", err)
	}
	return report, nil
}

func (r *ManualReportRepo) GetRange(ctx context.Context, farmID int64, start, end time.Time) ([]models.ManualReport, error) {
	reports := []models.ManualReport{}
	query := `
		SELECT * FROM manual_reports
		WHERE farm_id = $1 AND report_date BETWEEN $2 AND $3
		ORDER BY report_date ASC`

	err := r.db.GetDB().SelectContext(ctx, &reports, query, farmID, start, end)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list manual reports", err)
	}
	return reports, nil
}

// GetRangeByUpdatedAt windows on edit time instead of report date. The
// daily analysis view buckets reports by when they were last touched, so
// a backdated report edited today must surface in today's window.
func (r *ManualReportRepo) GetRangeByUpdatedAt(ctx context.Context, farmID int64, start, end time.Time) ([]models.ManualReport, error) {
	reports := []models.ManualReport{}
	query := `
		SELECT * FROM manual_reports
		WHERE farm_id = $1 AND updated_at BETWEEN $2 AND $3
		ORDER BY updated_at ASC`

	err := r.db.GetDB().SelectContext(ctx, &reports, query, farmID, start, end)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list manual reports", err)
	}
	return reports, nil
}

func (r *ManualReportRepo) DeleteByFarmID(ctx context.Context, farmID int64, tx database.Transaction) error {
	query := `DELETE FROM manual_reports WHERE farm_id = $1`

	if _, err := tx.ExecContext(ctx, query, farmID); err != nil {
		return errors.NewDatabaseError("failed to delete manual reports", err)
	}
	return nil
}
