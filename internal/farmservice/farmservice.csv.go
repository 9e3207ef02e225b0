// FilePath: internal/farmservice/farmservice.csv.go
package farmservice

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/models"
	"github.com/mirnanodes/broilink-backend/internal/monitoring"
)

// csvHeader is the import/export column contract.
var csvHeader = []string{"timestamp", "temperature", "humidity", "ammonia"}

// ImportReadingsCSV parses a readings CSV and stores all rows in one
// batch. The first row must be the header; timestamps are RFC 3339.
// Any bad row rejects the whole file so a partial import never lands.
func (s *FarmService) ImportReadingsCSV(ctx context.Context, farmID int64, r io.Reader) (int, error) {
	if _, err := s.Farms.Get(ctx, farmID); err != nil {
		return 0, err
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		monitoring.IngestErrorsTotal.WithLabelValues(models.SourceCSV).Inc()
		return 0, errors.NewValidationError("failed to read CSV header", err)
	}
	if len(header) < len(csvHeader) {
		monitoring.IngestErrorsTotal.WithLabelValues(models.SourceCSV).Inc()
		return 0, errors.NewValidationError("CSV header must be timestamp,temperature,humidity,ammonia", nil)
	}

	readings := []models.SensorReading{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			monitoring.IngestErrorsTotal.WithLabelValues(models.SourceCSV).Inc()
			return 0, errors.NewValidationError(fmt.Sprintf("bad CSV row at line %d", line), err)
		}

		reading, err := parseCSVRow(farmID, record)
		if err != nil {
			monitoring.IngestErrorsTotal.WithLabelValues(models.SourceCSV).Inc()
			return 0, errors.NewValidationError(fmt.Sprintf("bad CSV row at line %d", line), err)
		}
		readings = append(readings, reading)
	}

	if len(readings) == 0 {
		return 0, errors.NewValidationError("CSV contains no data rows", nil)
	}

	if err := s.SensorData.InsertReadings(ctx, readings); err != nil {
		monitoring.IngestErrorsTotal.WithLabelValues(models.SourceCSV).Inc()
		return 0, err
	}

	monitoring.ReadingsIngestedTotal.WithLabelValues(models.SourceCSV).Add(float64(len(readings)))
	nuts.L.Infof("[FarmService] Imported %d CSV readings for farm %d", len(readings), farmID)
	return len(readings), nil
}

// Export section selectors.
const (
	ExportTypeIoT    = "iot"
	ExportTypeManual = "manual"
	ExportTypeAll    = "all"
)

// exportPeriodDays maps the download period tokens to a trailing day
// count. Empty means the default 30-day window.
func exportPeriodDays(period string) (int, *errors.APIError) {
	switch period {
	case "", "30days":
		return 30, nil
	case "7days":
		return 7, nil
	case "90days":
		return 90, nil
	case "180days":
		return 180, nil
	default:
		return 0, errors.NewValidationError("period must be 7days, 30days, 90days or 180days", nil)
	}
}

// ExportFarmDataCSV writes the owner download: a sensor section and a
// manual report section over the trailing period, each with its own
// header block. Empty sections are omitted.
func (s *FarmService) ExportFarmDataCSV(ctx context.Context, farmID int64, typ, period string, w io.Writer) error {
	farm, err := s.Farms.Get(ctx, farmID)
	if err != nil {
		return err
	}

	if typ == "" {
		typ = ExportTypeAll
	}
	if typ != ExportTypeIoT && typ != ExportTypeManual && typ != ExportTypeAll {
		return errors.NewValidationError("type must be iot, manual or all", nil)
	}
	days, apiErr := exportPeriodDays(period)
	if apiErr != nil {
		return apiErr
	}

	now := time.Now().UTC()
	since := now.AddDate(0, 0, -days)
	exportedAt := now.Format("02/01/2006 15:04:05")

	if typ == ExportTypeIoT || typ == ExportTypeAll {
		readings, err := s.SensorData.GetRange(ctx, farmID, since, now)
		if err != nil {
			return err
		}
		if len(readings) > 0 {
			fmt.Fprintf(w, "DATA SENSOR IOT\nFarm: %s\nExported at: %s\n\n", farm.Name, exportedAt)
			fmt.Fprintln(w, "Waktu,Suhu (°C),Kelembapan (%),Amonia (ppm),Sumber")
			for _, rd := range readings {
				fmt.Fprintf(w, "%s,%s,%s,%s,%s\n",
					rd.Timestamp.Format("02/01/2006 15:04:05"),
					strconv.FormatFloat(rd.Temperature, 'f', -1, 64),
					strconv.FormatFloat(rd.Humidity, 'f', -1, 64),
					strconv.FormatFloat(rd.Ammonia, 'f', -1, 64),
					rd.DataSource)
			}
			fmt.Fprintln(w)
		}
	}

	if typ == ExportTypeManual || typ == ExportTypeAll {
		reports, err := s.Reports.GetRange(ctx, farmID, since, now)
		if err != nil {
			return err
		}
		if len(reports) > 0 {
			fmt.Fprintf(w, "LAPORAN MANUAL HARIAN\nFarm: %s\nExported at: %s\n\n", farm.Name, exportedAt)
			fmt.Fprintln(w, "Tanggal,Pakan (kg),Air (liter),Bobot (kg),Kematian")
			for _, rp := range reports {
				fmt.Fprintf(w, "%s,%s,%s,%s,%d\n",
					rp.ReportDate.Format("02/01/2006"),
					strconv.FormatFloat(rp.FeedKg, 'f', -1, 64),
					strconv.FormatFloat(rp.WaterL, 'f', -1, 64),
					strconv.FormatFloat(rp.AvgWeight, 'f', -1, 64),
					rp.MortalityCount)
			}
		}
	}

	nuts.L.Infof("[FarmService] Exported %s/%dd CSV for farm %d", typ, days, farmID)
	return nil
}

func parseCSVRow(farmID int64, record []string) (models.SensorReading, error) {
	ts, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		// Fall back to the plain datetime the sensor dashboards export.
		ts, err = time.ParseInLocation("2006-01-02 15:04:05", record[0], time.UTC)
		if err != nil {
			return models.SensorReading{}, fmt.Errorf("invalid timestamp %q", record[0])
		}
	}

	temp, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return models.SensorReading{}, fmt.Errorf("invalid temperature %q", record[1])
	}
	hum, err := strconv.ParseFloat(record[2], 64)
	if err != nil {
		return models.SensorReading{}, fmt.Errorf("invalid humidity %q", record[2])
	}
	amm, err := strconv.ParseFloat(record[3], 64)
	if err != nil {
		return models.SensorReading{}, fmt.Errorf("invalid ammonia %q", record[3])
	}

	return models.SensorReading{
		FarmID:      farmID,
		Timestamp:   ts,
		Temperature: temp,
		Humidity:    hum,
		Ammonia:     amm,
		DataSource:  models.SourceCSV,
	}, nil
}
