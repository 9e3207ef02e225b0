// FilePath: internal/farmservice/farmservice.monitoring.go
package farmservice

import (
	"context"
	"time"

	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/models"
	"github.com/mirnanodes/broilink-backend/internal/monitoring"
	"github.com/mirnanodes/broilink-backend/internal/status"
	"github.com/mirnanodes/broilink-backend/internal/timeseries"
)

const anchorDateFormat = "2006-01-02"

// FarmStatus is the classified current condition of one farm.
type FarmStatus struct {
	Farm      *models.Farm          `json:"farm"`
	Status    status.Status         `json:"status"`
	Reading   *models.SensorReading `json:"reading,omitempty"`
	CheckedAt time.Time             `json:"checked_at"`
}

// ParseAnchor interprets an optional YYYY-MM-DD anchor date in UTC,
// defaulting to today.
func ParseAnchor(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	anchor, err := time.ParseInLocation(anchorDateFormat, raw, time.UTC)
	if err != nil {
		return time.Time{}, errors.NewValidationError("invalid date, expected YYYY-MM-DD", err)
	}
	return anchor, nil
}

// GetMonitoring returns the bucketed IoT series for one farm, range and
// anchor date.
func (s *FarmService) GetMonitoring(ctx context.Context, farmID int64, rangeStr, dateStr string) (*timeseries.SensorSeries, error) {
	r, err := timeseries.ParseRange(rangeStr)
	if err != nil {
		return nil, err
	}
	anchor, err := ParseAnchor(dateStr)
	if err != nil {
		return nil, err
	}
	if _, err := s.Farms.Get(ctx, farmID); err != nil {
		return nil, err
	}

	timer := time.Now()
	defer func() {
		monitoring.AggregateQueryDurationSeconds.WithLabelValues(string(r)).Observe(time.Since(timer).Seconds())
	}()

	w, err := timeseries.Plan(r, anchor)
	if err != nil {
		return nil, err
	}

	readings, err := s.SensorData.GetRange(ctx, farmID, w.Start, w.End)
	if err != nil {
		return nil, err
	}

	series := timeseries.AggregateSensor(farmID, w, readings)
	return &series, nil
}

// GetAnalysis returns the bucketed manual-report series plus the latest
// classified condition as the dashboard overview.
func (s *FarmService) GetAnalysis(ctx context.Context, farmID int64, rangeStr, dateStr string) (*timeseries.ManualSeries, error) {
	r, err := timeseries.ParseRange(rangeStr)
	if err != nil {
		return nil, err
	}
	anchor, err := ParseAnchor(dateStr)
	if err != nil {
		return nil, err
	}
	if _, err := s.Farms.Get(ctx, farmID); err != nil {
		return nil, err
	}

	timer := time.Now()
	defer func() {
		monitoring.AggregateQueryDurationSeconds.WithLabelValues(string(r)).Observe(time.Since(timer).Seconds())
	}()

	w, err := timeseries.Plan(r, anchor)
	if err != nil {
		return nil, err
	}

	// The day view buckets by edit time, so it must also fetch by edit
	// time; the other ranges bucket and fetch by report date.
	var reports []models.ManualReport
	if r == timeseries.RangeDay {
		reports, err = s.Reports.GetRangeByUpdatedAt(ctx, farmID, w.Start, w.End)
	} else {
		reports, err = s.Reports.GetRange(ctx, farmID, w.Start, w.End)
	}
	if err != nil {
		return nil, err
	}

	series := timeseries.AggregateManual(farmID, w, reports)

	latest, thresholds, err := s.latestWithThresholds(ctx, farmID)
	if err != nil {
		return nil, err
	}
	overview := timeseries.ComposeOverview(latest, thresholds)
	series.Overview = &overview

	return &series, nil
}

// GetFarmStatus classifies a farm's latest reading. A farm without
// readings reports unknown rather than an error.
func (s *FarmService) GetFarmStatus(ctx context.Context, farmID int64) (*FarmStatus, error) {
	farm, err := s.GetFarm(ctx, farmID)
	if err != nil {
		return nil, err
	}

	latest, thresholds, err := s.latestWithThresholds(ctx, farmID)
	if err != nil {
		return nil, err
	}

	return &FarmStatus{
		Farm:      farm,
		Status:    status.Classify(latest, thresholds),
		Reading:   latest,
		CheckedAt: time.Now(),
	}, nil
}

// SubmitReading stores one environment reading for a farm.
func (s *FarmService) SubmitReading(ctx context.Context, reading *models.SensorReading) error {
	if reading.FarmID == 0 {
		return errors.NewValidationError("farm id is required", nil)
	}
	if _, err := s.Farms.Get(ctx, reading.FarmID); err != nil {
		return err
	}

	if err := s.SensorData.InsertReading(ctx, reading); err != nil {
		monitoring.IngestErrorsTotal.WithLabelValues(reading.DataSource).Inc()
		return err
	}

	monitoring.ReadingsIngestedTotal.WithLabelValues(reading.DataSource).Inc()
	return nil
}

// ListMonitoredFarms returns every farm, for the alert monitor sweep.
// Pages through the listing so no farm escapes the sweep.
func (s *FarmService) ListMonitoredFarms(ctx context.Context) ([]*models.Farm, error) {
	const pageSize = 100

	var all []*models.Farm
	for page := 1; ; page++ {
		total, farms, err := s.Farms.List(ctx, models.FarmFilters{}, page, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, farms...)
		if len(farms) < pageSize || int64(len(all)) >= total {
			return all, nil
		}
	}
}

// LatestReading returns the farm's newest reading, nil when none exist.
func (s *FarmService) LatestReading(ctx context.Context, farmID int64) (*models.SensorReading, error) {
	latest, err := s.SensorData.GetLatest(ctx, farmID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return latest, nil
}

func (s *FarmService) latestWithThresholds(ctx context.Context, farmID int64) (*models.SensorReading, status.Thresholds, error) {
	thresholds, err := s.FarmThresholds(ctx, farmID)
	if err != nil {
		return nil, status.Thresholds{}, err
	}
	latest, err := s.LatestReading(ctx, farmID)
	if err != nil {
		return nil, status.Thresholds{}, err
	}
	return latest, thresholds, nil
}
