// FilePath: internal/farmservice/farmservice.report.go
package farmservice

import (
	"context"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/models"
)

// SubmitManualReport upserts the daily report for a farm and date. A
// second submission for the same date replaces the first; the stored
// updated_at moves to the submission time, which is what the 1_day
// analysis range buckets by.
func (s *FarmService) SubmitManualReport(ctx context.Context, report *models.ManualReport) error {
	if report.FarmID == 0 {
		return errors.NewValidationError("farm id is required", nil)
	}
	if report.ReportDate.IsZero() {
		return errors.NewValidationError("report date is required", nil)
	}
	if report.FeedKg < 0 || report.WaterL < 0 || report.AvgWeight < 0 || report.MortalityCount < 0 {
		return errors.NewValidationError("report values must not be negative", nil)
	}

	farm, err := s.Farms.Get(ctx, report.FarmID)
	if err != nil {
		return err
	}

	// A peternak may only report on their own farm.
	roles := GetUserRoles(ctx)
	if hasRole(roles, "peternak") && !hasRole(roles, "admin") {
		userID := GetUserID(ctx)
		if farm.PeternakID == nil || *farm.PeternakID != userID {
			return errors.NewAuthorizationError("not assigned to this farm", nil)
		}
	}

	// Reports are keyed by calendar date.
	report.ReportDate = truncateToDay(report.ReportDate)
	if report.ReportedBy == 0 {
		report.ReportedBy = GetUserID(ctx)
	}

	if err := s.Reports.Upsert(ctx, report); err != nil {
		return err
	}

	nuts.L.Infof("[FarmService] Manual report stored for farm %d on %s", report.FarmID, report.ReportDate.Format("2006-01-02"))
	return nil
}

// GetManualReport fetches the report for one farm and date, nil when the
// peternak has not reported yet.
func (s *FarmService) GetManualReport(ctx context.Context, farmID int64, date time.Time) (*models.ManualReport, error) {
	report, err := s.Reports.GetByDate(ctx, farmID, truncateToDay(date))
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return report, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func hasRole(roles []string, want string) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
