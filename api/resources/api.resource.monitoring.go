// FilePath: api/resources/api.resource.monitoring.go
package resources

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"

	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/farmservice"
	"github.com/mirnanodes/broilink-backend/internal/models"
)

var queryDecoder = schema.NewDecoder()

func init() {
	queryDecoder.IgnoreUnknownKeys(true)
}

// MonitoringHandlers serves the aggregate chart endpoints, farm status
// and sensor reading ingest.
type MonitoringHandlers struct {
	svc *farmservice.FarmService
}

// aggregateQuery is the shared query contract of both aggregate
// endpoints. Date is optional and defaults to today.
type aggregateQuery struct {
	FarmID int64  `schema:"farm_id,required"`
	Range  string `schema:"range,required"`
	Date   string `schema:"date"`
}

func parseAggregateQuery(r *http.Request) (*aggregateQuery, *errors.APIError) {
	var q aggregateQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		return nil, errors.NewValidationError("invalid query parameters", err)
	}
	if q.FarmID <= 0 {
		return nil, errors.NewValidationError("farm_id is required", nil)
	}
	return &q, nil
}

// @Summary IoT monitoring aggregate
// @Description Bucketed means of temperature, humidity and ammonia for a chart range
// @Tags monitoring
// @Produce json
// @Param farm_id query int true "Farm ID"
// @Param range query string true "1_day | 1_week | 1_month | 6_months"
// @Param date query string false "Anchor date (YYYY-MM-DD, default today)"
// @Success 200 {object} timeseries.SensorSeries
// @Failure 400 {object} errors.APIError
// @Router /monitoring/aggregate [get]
// @Security BearerAuth
func (h *MonitoringHandlers) MonitoringAggregate(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	q, apiErr := parseAggregateQuery(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	series, err := h.svc.GetMonitoring(r.Context(), q.FarmID, q.Range, q.Date)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, series)
}

// @Summary Manual report aggregate
// @Description Bucketed feed/water/weight/mortality series plus latest status overview
// @Tags monitoring
// @Produce json
// @Param farm_id query int true "Farm ID"
// @Param range query string true "1_day | 1_week | 1_month | 6_months"
// @Param date query string false "Anchor date (YYYY-MM-DD, default today)"
// @Success 200 {object} timeseries.ManualSeries
// @Failure 400 {object} errors.APIError
// @Router /analysis/aggregate [get]
// @Security BearerAuth
func (h *MonitoringHandlers) AnalysisAggregate(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	q, apiErr := parseAggregateQuery(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	series, err := h.svc.GetAnalysis(r.Context(), q.FarmID, q.Range, q.Date)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, series)
}

// @Summary Current farm status
// @Description Classify the farm's latest reading against its thresholds
// @Tags monitoring
// @Produce json
// @Param id path int true "Farm ID"
// @Success 200 {object} farmservice.FarmStatus
// @Failure 404 {object} errors.APIError
// @Router /farms/{id}/status [get]
// @Security BearerAuth
func (h *MonitoringHandlers) GetFarmStatus(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, apiErr := pathID(r, mux.Vars(r), "id")
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	status, err := h.svc.GetFarmStatus(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

// @Summary Record a sensor reading
// @Description Insert one environment reading (simulation or manual entry)
// @Tags monitoring
// @Accept json
// @Produce json
// @Param reading body models.SensorReading true "Reading"
// @Success 201 {object} models.SensorReading
// @Failure 400 {object} errors.APIError
// @Router /monitoring/readings [post]
// @Security BearerAuth
func (h *MonitoringHandlers) SubmitReading(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var reading models.SensorReading
	if err := json.NewDecoder(r.Body).Decode(&reading); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if reading.DataSource == "" {
		reading.DataSource = models.SourceManual
	}
	if err := h.svc.SubmitReading(r.Context(), &reading); err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, reading)
}

// @Summary Import readings from CSV
// @Description Bulk-insert historical readings for a farm from a CSV upload
// @Tags monitoring
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Farm ID"
// @Param file formData file true "CSV file (timestamp,temperature,humidity,ammonia)"
// @Success 201 {object} map[string]int
// @Failure 400 {object} errors.APIError
// @Router /farms/{id}/readings/import [post]
// @Security BearerAuth
func (h *MonitoringHandlers) ImportReadingsCSV(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, apiErr := pathID(r, mux.Vars(r), "id")
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid file upload", err).WithRequestID(requestID))
		return
	}
	defer file.Close()

	count, err := h.svc.ImportReadingsCSV(r.Context(), id, file)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]int{"imported": count})
}

// @Summary Export farm data as CSV
// @Description Download sensor and/or manual report data over a trailing period
// @Tags monitoring
// @Produce text/csv
// @Param id path int true "Farm ID"
// @Param type query string false "iot | manual | all (default all)"
// @Param period query string false "7days | 30days | 90days | 180days (default 30days)"
// @Success 200 {file} file
// @Failure 400 {object} errors.APIError
// @Router /farms/{id}/export [get]
// @Security BearerAuth
func (h *MonitoringHandlers) ExportFarmDataCSV(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, apiErr := pathID(r, mux.Vars(r), "id")
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	typ := r.URL.Query().Get("type")
	period := r.URL.Query().Get("period")

	// Buffer the export so validation failures still get a JSON error
	// response instead of a truncated download.
	var buf bytes.Buffer
	if err := h.svc.ExportFarmDataCSV(r.Context(), id, typ, period, &buf); err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	filename := fmt.Sprintf("export_farm_%d_%s.csv", id, time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=UTF-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Write(buf.Bytes())
}
