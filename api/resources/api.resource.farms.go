// FilePath: api/resources/api.resource.farms.go
package resources

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"

	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/farmservice"
	"github.com/mirnanodes/broilink-backend/internal/models"
)

// FarmHandlers encapsulates the farm-related HTTP handlers
type FarmHandlers struct {
	svc *farmservice.FarmService
}

// @Summary Create a new farm
// @Description Create a new farm with default threshold configuration
// @Tags farms
// @Accept json
// @Produce json
// @Param farm body models.Farm true "Farm details"
// @Success 201 {object} models.Farm
// @Failure 400 {object} errors.APIError
// @Failure 401 {object} errors.APIError
// @Router /farms [post]
// @Security BearerAuth
func (h *FarmHandlers) CreateFarm(w http.ResponseWriter, r *http.Request) {
	var farm models.Farm
	requestID := nuts.NID("req", 12)

	if err := json.NewDecoder(r.Body).Decode(&farm); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.svc.CreateFarm(r.Context(), &farm); err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, farm)
}

// @Summary Get a farm by ID
// @Description Get detailed information about a specific farm
// @Tags farms
// @Produce json
// @Param id path int true "Farm ID"
// @Success 200 {object} models.Farm
// @Failure 404 {object} errors.APIError
// @Router /farms/{id} [get]
func (h *FarmHandlers) GetFarm(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, apiErr := pathID(r, mux.Vars(r), "id")
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	farm, err := h.svc.GetFarm(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, farm)
}

// @Summary List farms
// @Description Get a paginated farm list, optionally filtered by owner or peternak
// @Tags farms
// @Produce json
// @Param owner_id query int false "Filter by owner"
// @Param peternak_id query int false "Filter by assigned peternak"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /farms [get]
func (h *FarmHandlers) ListFarms(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	page, limit := getPageParams(r)

	var filters models.FarmFilters
	filters.OwnerID, _ = strconv.ParseInt(r.URL.Query().Get("owner_id"), 10, 64)
	filters.PeternakID, _ = strconv.ParseInt(r.URL.Query().Get("peternak_id"), 10, 64)

	total, farms, err := h.svc.ListFarms(r.Context(), filters, page, limit)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"total": total,
		"page":  page,
		"limit": limit,
		"farms": farms,
	})
}

// @Summary Update a farm
// @Description Update an existing farm's details
// @Tags farms
// @Accept json
// @Produce json
// @Param id path int true "Farm ID"
// @Param farm body models.Farm true "Updated farm details"
// @Success 200 {object} models.Farm
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /farms/{id} [put]
// @Security BearerAuth
func (h *FarmHandlers) UpdateFarm(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, apiErr := pathID(r, mux.Vars(r), "id")
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	var farm models.Farm
	if err := json.NewDecoder(r.Body).Decode(&farm); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	farm.ID = id
	if err := h.svc.UpdateFarm(r.Context(), &farm); err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, farm)
}

// @Summary Delete a farm
// @Description Delete a farm and all its configuration, reports and readings
// @Tags farms
// @Produce json
// @Param id path int true "Farm ID"
// @Success 204 "No Content"
// @Failure 404 {object} errors.APIError
// @Router /farms/{id} [delete]
// @Security BearerAuth
func (h *FarmHandlers) DeleteFarm(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, apiErr := pathID(r, mux.Vars(r), "id")
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	if err := h.svc.DeleteFarm(r.Context(), id); err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Assign a peternak to a farm
// @Description Set or clear the peternak responsible for a farm
// @Tags farms
// @Accept json
// @Produce json
// @Param id path int true "Farm ID"
// @Param assignment body object true "Assignment (peternak_id, null to clear)"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Router /farms/{id}/peternak [put]
// @Security BearerAuth
func (h *FarmHandlers) AssignPeternak(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, apiErr := pathID(r, mux.Vars(r), "id")
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	var body struct {
		PeternakID *int64 `json:"peternak_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.svc.AssignPeternak(r.Context(), id, body.PeternakID); err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// @Summary Get farm threshold configuration
// @Description Get the farm's threshold parameters merged over defaults
// @Tags farms
// @Produce json
// @Param id path int true "Farm ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.APIError
// @Router /farms/{id}/config [get]
// @Security BearerAuth
func (h *FarmHandlers) GetFarmConfig(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, apiErr := pathID(r, mux.Vars(r), "id")
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	config, err := h.svc.GetFarmConfig(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, config)
}

// @Summary Update farm threshold configuration
// @Description Update one or more known threshold parameters
// @Tags farms
// @Accept json
// @Produce json
// @Param id path int true "Farm ID"
// @Param config body map[string]string true "Parameter values"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Router /farms/{id}/config [put]
// @Security BearerAuth
func (h *FarmHandlers) UpdateFarmConfig(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, apiErr := pathID(r, mux.Vars(r), "id")
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.svc.UpdateFarmConfig(r.Context(), id, values); err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	config, err := h.svc.GetFarmConfig(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, config)
}

// @Summary Reset farm threshold configuration
// @Description Replace the farm's configuration with the defaults
// @Tags farms
// @Produce json
// @Param id path int true "Farm ID"
// @Success 200 {object} map[string]string
// @Router /farms/{id}/config/reset [post]
// @Security BearerAuth
func (h *FarmHandlers) ResetFarmConfig(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, apiErr := pathID(r, mux.Vars(r), "id")
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	config, err := h.svc.ResetFarmConfig(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, config)
}
