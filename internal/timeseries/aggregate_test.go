// FilePath: internal/timeseries/aggregate_test.go
package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirnanodes/broilink-backend/internal/models"
	"github.com/mirnanodes/broilink-backend/internal/status"
)

func sensorAt(ts time.Time, temp, hum, amm float64) models.SensorReading {
	return models.SensorReading{
		ID:          "sr_" + ts.Format("150405"),
		FarmID:      1,
		Timestamp:   ts,
		Temperature: temp,
		Humidity:    hum,
		Ammonia:     amm,
		DataSource:  models.SourceIoT,
	}
}

func intPtr(v int) *int { return &v }

func TestAggregateSensorDayMeans(t *testing.T) {
	w, err := Plan(RangeDay, date(2024, time.March, 15))
	require.NoError(t, err)

	readings := []models.SensorReading{
		sensorAt(time.Date(2024, time.March, 15, 1, 0, 0, 0, time.UTC), 30, 60, 10),
		sensorAt(time.Date(2024, time.March, 15, 2, 0, 0, 0, time.UTC), 31, 62, 12),
		sensorAt(time.Date(2024, time.March, 15, 13, 0, 0, 0, time.UTC), 34, 70, 20),
		// Outside the window, must be ignored.
		sensorAt(time.Date(2024, time.March, 16, 1, 0, 0, 0, time.UTC), 99, 99, 99),
	}

	got := AggregateSensor(1, w, readings)

	require.Len(t, got.Temperature, 6)
	// Bucket 0 averages the two early readings; 30.5 rounds up.
	assert.Equal(t, intPtr(31), got.Temperature[0])
	assert.Equal(t, intPtr(61), got.Humidity[0])
	assert.Equal(t, intPtr(11), got.Ammonia[0])
	assert.Equal(t, intPtr(34), got.Temperature[3])

	// Buckets with no data stay null, never zero.
	for _, i := range []int{1, 2, 4, 5} {
		assert.Nil(t, got.Temperature[i])
		assert.Nil(t, got.Humidity[i])
		assert.Nil(t, got.Ammonia[i])
	}

	assert.Equal(t, RangeDay, got.Meta.Range)
	assert.Equal(t, int64(1), got.Meta.FarmID)
	assert.Equal(t, "2024-03-15T00:00:00Z", got.Meta.Start)
}

func TestAggregateManualWeekSingleReport(t *testing.T) {
	w, err := Plan(RangeWeek, date(2024, time.March, 15))
	require.NoError(t, err)

	reports := []models.ManualReport{{
		FarmID:         1,
		ReportDate:     date(2024, time.March, 12),
		FeedKg:         120,
		WaterL:         250,
		AvgWeight:      1.8,
		MortalityCount: 3,
		UpdatedAt:      time.Date(2024, time.March, 12, 9, 0, 0, 0, time.UTC),
	}}

	got := AggregateManual(1, w, reports)

	require.Len(t, got.Feed, 7)
	// 2024-03-12 is bucket 3 of the Sat..Fri window.
	assert.Equal(t, intPtr(120), got.Feed[3])
	assert.Equal(t, intPtr(250), got.Water[3])
	assert.Equal(t, intPtr(2), got.AvgWeight[3])
	assert.Equal(t, intPtr(3), got.Mortality[3])

	for i := 0; i < 7; i++ {
		if i == 3 {
			continue
		}
		assert.Nil(t, got.Feed[i], "bucket %d", i)
		assert.Nil(t, got.Mortality[i], "bucket %d", i)
	}
}

func TestAggregateManualSumsAndMeans(t *testing.T) {
	w, err := Plan(RangeMonth, date(2024, time.March, 15))
	require.NoError(t, err)

	reports := []models.ManualReport{
		{FarmID: 1, ReportDate: date(2024, time.March, 1), FeedKg: 100, WaterL: 200, AvgWeight: 1.2, MortalityCount: 2},
		{FarmID: 1, ReportDate: date(2024, time.March, 3), FeedKg: 110, WaterL: 210, AvgWeight: 1.5, MortalityCount: 1},
	}

	got := AggregateManual(1, w, reports)

	// Feed/water/mortality sum; average weight is a mean.
	assert.Equal(t, intPtr(210), got.Feed[0])
	assert.Equal(t, intPtr(410), got.Water[0])
	assert.Equal(t, intPtr(1), got.AvgWeight[0])
	assert.Equal(t, intPtr(3), got.Mortality[0])
}

func TestAggregateManualDayBucketsByEditTime(t *testing.T) {
	w, err := Plan(RangeDay, date(2024, time.March, 15))
	require.NoError(t, err)

	// A report logically dated two days earlier but edited at 14:30 today
	// must land in the bucket of the edit, not of the report date.
	reports := []models.ManualReport{{
		FarmID:     1,
		ReportDate: date(2024, time.March, 13),
		FeedKg:     80,
		UpdatedAt:  time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC),
	}}

	got := AggregateManual(1, w, reports)

	assert.Equal(t, intPtr(80), got.Feed[3])
	assert.Nil(t, got.Feed[0])
}

func TestAggregateIdempotent(t *testing.T) {
	w, err := Plan(RangeWeek, date(2024, time.March, 15))
	require.NoError(t, err)

	readings := []models.SensorReading{
		sensorAt(time.Date(2024, time.March, 11, 8, 0, 0, 0, time.UTC), 30, 60, 10),
		sensorAt(time.Date(2024, time.March, 14, 8, 0, 0, 0, time.UTC), 33, 65, 15),
	}

	first := AggregateSensor(1, w, readings)
	second := AggregateSensor(1, w, readings)
	assert.Equal(t, first, second)
}

func TestAggregateEmptyWindow(t *testing.T) {
	w, err := Plan(RangeSixMonths, date(2024, time.March, 15))
	require.NoError(t, err)

	got := AggregateSensor(7, w, nil)

	require.Len(t, got.Temperature, 6)
	for i := range got.Temperature {
		assert.Nil(t, got.Temperature[i])
	}
}

func TestComposeOverview(t *testing.T) {
	cfg := status.ResolveThresholds(models.DefaultFarmConfig())

	latest := sensorAt(time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC), 36, 60, 10)
	ov := ComposeOverview(&latest, cfg)
	assert.Equal(t, status.StatusCritical, ov.Status)
	require.NotNil(t, ov.Temperature)
	assert.Equal(t, 36.0, *ov.Temperature)

	empty := ComposeOverview(nil, cfg)
	assert.Equal(t, status.StatusUnknown, empty.Status)
	assert.Nil(t, empty.Temperature)
	assert.Nil(t, empty.Humidity)
	assert.Nil(t, empty.Ammonia)
}
