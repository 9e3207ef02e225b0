// FilePath: internal/farmservice/farmservice.dashboard.go
package farmservice

import (
	"context"
	"math"
	"sort"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/models"
	"github.com/mirnanodes/broilink-backend/internal/status"
)

// OwnerDashboard is the owner's home view: every farm with its current
// classified condition.
type OwnerDashboard struct {
	Owner *models.User  `json:"owner"`
	Farms []*FarmStatus `json:"farms"`
}

// PeternakDashboard is the worker's home view: the assigned farm, its
// condition, whether today's report is already in and a recap of the
// last week's reports.
type PeternakDashboard struct {
	Peternak      *models.User         `json:"peternak"`
	Farm          *FarmStatus          `json:"farm,omitempty"`
	TodayReport   *models.ManualReport `json:"today_report,omitempty"`
	ReportedToday bool                 `json:"reported_today"`
	WeekSummary   *WeekSummary         `json:"week_summary,omitempty"`
}

// WeekSummary holds the trailing 7-day manual reports, positionally
// aligned and ordered by report date. Days without a report are
// skipped rather than zero-filled.
type WeekSummary struct {
	Labels    []string `json:"labels"`
	Feed      []int    `json:"pakan"`
	Water     []int    `json:"minum"`
	AvgWeight []int    `json:"bobot"`
	Mortality []int    `json:"kematian"`
}

// GetOwnerDashboard builds the owner view. A farm whose status lookup
// fails is reported as unknown instead of failing the whole dashboard.
func (s *FarmService) GetOwnerDashboard(ctx context.Context, ownerID int64) (*OwnerDashboard, error) {
	owner, err := s.Users.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner.RoleID != models.RoleOwner && owner.RoleID != models.RoleAdmin {
		return nil, errors.NewAuthorizationError("user is not an owner", nil)
	}

	_, farms, err := s.Farms.List(ctx, models.FarmFilters{OwnerID: ownerID}, 1, 100)
	if err != nil {
		return nil, err
	}

	statuses := make([]*FarmStatus, 0, len(farms))
	for _, farm := range farms {
		fs, err := s.GetFarmStatus(ctx, farm.ID)
		if err != nil {
			nuts.L.Warnf("[FarmService] Status lookup failed for farm %d: %v", farm.ID, err)
			fs = &FarmStatus{Farm: farm, Status: status.StatusUnknown, CheckedAt: time.Now()}
		}
		statuses = append(statuses, fs)
	}

	return &OwnerDashboard{Owner: owner, Farms: statuses}, nil
}

// GetPeternakDashboard builds the worker view. A peternak without an
// assigned farm gets an empty dashboard, not an error.
func (s *FarmService) GetPeternakDashboard(ctx context.Context, peternakID int64) (*PeternakDashboard, error) {
	peternak, err := s.Users.Get(ctx, peternakID)
	if err != nil {
		return nil, err
	}
	if peternak.RoleID != models.RolePeternak {
		return nil, errors.NewAuthorizationError("user is not a peternak", nil)
	}

	dashboard := &PeternakDashboard{Peternak: peternak}

	_, farms, err := s.Farms.List(ctx, models.FarmFilters{PeternakID: peternakID}, 1, 1)
	if err != nil {
		return nil, err
	}
	if len(farms) == 0 {
		return dashboard, nil
	}

	fs, err := s.GetFarmStatus(ctx, farms[0].ID)
	if err != nil {
		return nil, err
	}
	dashboard.Farm = fs

	report, err := s.GetManualReport(ctx, farms[0].ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	dashboard.TodayReport = report
	dashboard.ReportedToday = report != nil

	summary, err := s.weekSummary(ctx, farms[0].ID)
	if err != nil {
		return nil, err
	}
	dashboard.WeekSummary = summary

	return dashboard, nil
}

// weekSummary recaps the last 7 days of manual reports, today
// included.
func (s *FarmService) weekSummary(ctx context.Context, farmID int64) (*WeekSummary, error) {
	now := time.Now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := day.AddDate(0, 0, -6)

	reports, err := s.Reports.GetRange(ctx, farmID, start, now)
	if err != nil {
		return nil, err
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].ReportDate.Before(reports[j].ReportDate) })

	summary := &WeekSummary{
		Labels:    []string{},
		Feed:      []int{},
		Water:     []int{},
		AvgWeight: []int{},
		Mortality: []int{},
	}
	for _, report := range reports {
		summary.Labels = append(summary.Labels, report.ReportDate.Format("Mon, 02 Jan"))
		summary.Feed = append(summary.Feed, int(math.Round(report.FeedKg)))
		summary.Water = append(summary.Water, int(math.Round(report.WaterL)))
		summary.AvgWeight = append(summary.AvgWeight, int(math.Round(report.AvgWeight)))
		summary.Mortality = append(summary.Mortality, report.MortalityCount)
	}
	return summary, nil
}
