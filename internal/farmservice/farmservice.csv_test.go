// FilePath: internal/farmservice/farmservice.csv_test.go
package farmservice

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/models"
)

func TestImportReadingsCSV(t *testing.T) {
	svc, farm, sensorData, _ := newTestService(t)

	csvData := strings.Join([]string{
		"timestamp,temperature,humidity,ammonia",
		"2024-03-15T01:00:00Z,30.5,60,10",
		"2024-03-15 02:00:00,31,62,12",
	}, "\n")

	n, err := svc.ImportReadingsCSV(context.Background(), farm.ID, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, sensorData.readings, 2)
	assert.Equal(t, models.SourceCSV, sensorData.readings[0].DataSource)
	assert.Equal(t, 30.5, sensorData.readings[0].Temperature)
}

func TestImportReadingsCSVRejectsBadRows(t *testing.T) {
	svc, farm, sensorData, _ := newTestService(t)

	csvData := strings.Join([]string{
		"timestamp,temperature,humidity,ammonia",
		"2024-03-15T01:00:00Z,30.5,60,10",
		"2024-03-15T02:00:00Z,not-a-number,62,12",
	}, "\n")

	_, err := svc.ImportReadingsCSV(context.Background(), farm.ID, strings.NewReader(csvData))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Empty(t, sensorData.readings, "a bad row must reject the whole file")
}

func TestImportReadingsCSVEmptyFile(t *testing.T) {
	svc, farm, _, _ := newTestService(t)

	_, err := svc.ImportReadingsCSV(context.Background(), farm.ID,
		strings.NewReader("timestamp,temperature,humidity,ammonia\n"))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestExportFarmDataCSVAllSections(t *testing.T) {
	svc, farm, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SubmitReading(ctx, &models.SensorReading{
		FarmID:      farm.ID,
		Timestamp:   time.Now().UTC().Add(-2 * time.Hour),
		Temperature: 30, Humidity: 60, Ammonia: 10,
	}))
	require.NoError(t, svc.SubmitManualReport(ctx, &models.ManualReport{
		FarmID: farm.ID, ReportedBy: 2,
		ReportDate: time.Now().UTC().Add(-24 * time.Hour),
		FeedKg:     120, WaterL: 200, AvgWeight: 1.8, MortalityCount: 3,
	}))

	var buf bytes.Buffer
	require.NoError(t, svc.ExportFarmDataCSV(ctx, farm.ID, "all", "7days", &buf))

	out := buf.String()
	assert.Contains(t, out, "DATA SENSOR IOT")
	assert.Contains(t, out, "Waktu,Suhu (°C),Kelembapan (%),Amonia (ppm),Sumber")
	assert.Contains(t, out, ",30,60,10,")
	assert.Contains(t, out, "LAPORAN MANUAL HARIAN")
	assert.Contains(t, out, "Tanggal,Pakan (kg),Air (liter),Bobot (kg),Kematian")
	assert.Contains(t, out, ",120,200,1.8,3")
	assert.Contains(t, out, "Farm: "+farm.Name)
}

func TestExportFarmDataCSVSelectsSection(t *testing.T) {
	svc, farm, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SubmitReading(ctx, &models.SensorReading{
		FarmID:      farm.ID,
		Timestamp:   time.Now().UTC().Add(-time.Hour),
		Temperature: 30, Humidity: 60, Ammonia: 10,
	}))
	require.NoError(t, svc.SubmitManualReport(ctx, &models.ManualReport{
		FarmID: farm.ID, ReportedBy: 2,
		ReportDate: time.Now().UTC(),
		FeedKg:     120,
	}))

	var buf bytes.Buffer
	require.NoError(t, svc.ExportFarmDataCSV(ctx, farm.ID, "iot", "30days", &buf))
	assert.Contains(t, buf.String(), "DATA SENSOR IOT")
	assert.NotContains(t, buf.String(), "LAPORAN MANUAL HARIAN")

	buf.Reset()
	require.NoError(t, svc.ExportFarmDataCSV(ctx, farm.ID, "manual", "30days", &buf))
	assert.NotContains(t, buf.String(), "DATA SENSOR IOT")
	assert.Contains(t, buf.String(), "LAPORAN MANUAL HARIAN")
}

func TestExportFarmDataCSVValidation(t *testing.T) {
	svc, farm, _, _ := newTestService(t)
	ctx := context.Background()

	var buf bytes.Buffer
	err := svc.ExportFarmDataCSV(ctx, farm.ID, "everything", "7days", &buf)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	err = svc.ExportFarmDataCSV(ctx, farm.ID, "all", "2days", &buf)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	// Default type and period pass validation.
	require.NoError(t, svc.ExportFarmDataCSV(ctx, farm.ID, "", "", &buf))
}
