// FilePath: api/resources/api.resource.reports.go
package resources

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"

	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/farmservice"
	"github.com/mirnanodes/broilink-backend/internal/models"
)

// ReportHandlers serves daily manual report submission and retrieval.
type ReportHandlers struct {
	svc *farmservice.FarmService
}

// @Summary Submit a daily manual report
// @Description Upsert the farm's report for a date; resubmission overwrites
// @Tags reports
// @Accept json
// @Produce json
// @Param id path int true "Farm ID"
// @Param report body models.ManualReport true "Report values"
// @Success 200 {object} models.ManualReport
// @Failure 400 {object} errors.APIError
// @Failure 403 {object} errors.APIError
// @Router /farms/{id}/reports [post]
// @Security BearerAuth
func (h *ReportHandlers) SubmitReport(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	farmID, apiErr := pathID(r, mux.Vars(r), "id")
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	var report models.ManualReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	report.FarmID = farmID
	if err := h.svc.SubmitManualReport(r.Context(), &report); err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}

// @Summary Get a daily manual report
// @Description Get the farm's report for a date (YYYY-MM-DD, default today)
// @Tags reports
// @Produce json
// @Param id path int true "Farm ID"
// @Param date query string false "Report date"
// @Success 200 {object} models.ManualReport
// @Failure 404 {object} errors.APIError
// @Router /farms/{id}/reports [get]
// @Security BearerAuth
func (h *ReportHandlers) GetReport(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	farmID, apiErr := pathID(r, mux.Vars(r), "id")
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	date := time.Now().UTC()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
		if err != nil {
			respondWithError(w, errors.NewValidationError("invalid date, expected YYYY-MM-DD", err).WithRequestID(requestID))
			return
		}
		date = parsed
	}

	report, err := h.svc.GetManualReport(r.Context(), farmID, date)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}
	if report == nil {
		respondWithError(w, errors.NewNotFoundError("no report for that date", nil).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}
