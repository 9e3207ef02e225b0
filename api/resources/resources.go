// FilePath: api/resources/resources.go
package resources

import (
	"encoding/json"
	"net/http"
	"strconv"

	nuts "github.com/vaudience/go-nuts"

	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/farmservice"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Farms      *FarmHandlers
	Monitoring *MonitoringHandlers
	Reports    *ReportHandlers
	Users      *UserHandlers
}

// NewResources creates a new Resources instance
func NewResources(svc *farmservice.FarmService) *Resources {
	return &Resources{
		Farms:      &FarmHandlers{svc: svc},
		Monitoring: &MonitoringHandlers{svc: svc},
		Reports:    &ReportHandlers{svc: svc},
		Users:      &UserHandlers{svc: svc},
	}
}

// Helper functions

func pathID(r *http.Request, vars map[string]string, name string) (int64, *errors.APIError) {
	id, err := strconv.ParseInt(vars[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError("invalid "+name, err)
	}
	return id, nil
}

func getPageParams(r *http.Request) (page, limit int) {
	query := r.URL.Query()
	page, _ = strconv.Atoi(query.Get("page"))
	limit, _ = strconv.Atoi(query.Get("limit"))

	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return page, limit
}

// respondWithServiceError maps a service failure to its API error,
// wrapping anything untyped as internal.
func respondWithServiceError(w http.ResponseWriter, requestID string, err error) {
	if apiErr, ok := err.(*errors.APIError); ok {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	respondWithError(w, errors.NewInternalError("request failed", err).WithRequestID(requestID))
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
