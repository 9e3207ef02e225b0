// FilePath: api/resources/api.resource.users.go
package resources

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"

	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/farmservice"
	"github.com/mirnanodes/broilink-backend/internal/models"
	"github.com/mirnanodes/broilink-backend/internal/telegram"
)

// TokenIssuer signs an access token for an authenticated user. The JWT
// middleware provides the production implementation.
type TokenIssuer interface {
	IssueToken(user *models.User) (string, error)
}

// DeepLinker builds a one-shot Telegram linking URL for a user. The
// telegram bot provides the production implementation.
type DeepLinker interface {
	CreateDeepLink(ctx context.Context, userID int64, botUsername string) (string, error)
}

// Broadcaster fans a message out to every linked Telegram chat. The
// telegram notifier provides the production implementation.
type Broadcaster interface {
	BroadcastMessage(ctx context.Context, text string) (*telegram.BroadcastResult, error)
}

// UserHandlers serves authentication, account management, the admin
// request inbox and the role dashboards.
type UserHandlers struct {
	svc         *farmservice.FarmService
	tokens      TokenIssuer
	deepLinker  DeepLinker
	broadcaster Broadcaster
	botUsername string
}

// SetTokenIssuer wires the auth middleware in after construction.
func (h *UserHandlers) SetTokenIssuer(t TokenIssuer) { h.tokens = t }

// SetDeepLinker wires the Telegram bot in when it is enabled.
func (h *UserHandlers) SetDeepLinker(d DeepLinker, botUsername string) {
	h.deepLinker = d
	h.botUsername = botUsername
}

// SetBroadcaster wires the Telegram notifier in when it is enabled.
func (h *UserHandlers) SetBroadcaster(b Broadcaster) { h.broadcaster = b }

// @Summary Log in
// @Description Exchange email and password for a bearer token
// @Tags users
// @Accept json
// @Produce json
// @Param credentials body object true "email, password"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.APIError
// @Router /auth/login [post]
func (h *UserHandlers) Login(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	user, err := h.svc.Authenticate(r.Context(), creds.Email, creds.Password)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	token, err := h.tokens.IssueToken(user)
	if err != nil {
		respondWithError(w, errors.NewInternalError("failed to issue token", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// @Summary Create a user
// @Description Register a new account (admin only)
// @Tags users
// @Accept json
// @Produce json
// @Param user body object true "User details plus password"
// @Success 201 {object} models.User
// @Failure 400 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /users [post]
// @Security BearerAuth
func (h *UserHandlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var body struct {
		models.User
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.svc.CreateUser(r.Context(), &body.User, body.Password); err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, body.User)
}

// @Summary Get a user by ID
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} errors.APIError
// @Router /users/{id} [get]
// @Security BearerAuth
func (h *UserHandlers) GetUser(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, apiErr := pathID(r, mux.Vars(r), "id")
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

// @Summary List users
// @Description Paginated user list with role and name/email search filters
// @Tags users
// @Produce json
// @Param role_id query int false "Filter by role"
// @Param search query string false "Name or email substring"
// @Success 200 {object} map[string]interface{}
// @Router /users [get]
// @Security BearerAuth
func (h *UserHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	page, limit := getPageParams(r)

	var filters models.UserFilters
	filters.RoleID, _ = strconv.ParseInt(r.URL.Query().Get("role_id"), 10, 64)
	filters.Search = r.URL.Query().Get("search")

	total, users, err := h.svc.ListUsers(r.Context(), filters, page, limit)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"total": total,
		"page":  page,
		"limit": limit,
		"users": users,
	})
}

// @Summary Change password
// @Tags users
// @Accept json
// @Param body body object true "current_password, new_password"
// @Success 204 "No Content"
// @Failure 401 {object} errors.APIError
// @Router /users/me/password [put]
// @Security BearerAuth
func (h *UserHandlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	userID := farmservice.GetUserID(r.Context())

	var body struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.svc.ChangePassword(r.Context(), userID, body.CurrentPassword, body.NewPassword); err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Delete a user
// @Tags users
// @Param id path int true "User ID"
// @Success 204 "No Content"
// @Router /users/{id} [delete]
// @Security BearerAuth
func (h *UserHandlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, apiErr := pathID(r, mux.Vars(r), "id")
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Submit a request to the admin
// @Description Owners request changes, guests report via the public form
// @Tags requests
// @Accept json
// @Produce json
// @Param request body models.RequestLog true "Request content"
// @Success 201 {object} models.RequestLog
// @Failure 400 {object} errors.APIError
// @Router /requests [post]
func (h *UserHandlers) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req models.RequestLog
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.svc.SubmitRequest(r.Context(), &req); err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, req)
}

// @Summary List admin requests
// @Tags requests
// @Produce json
// @Param status query string false "pending | approved | rejected"
// @Success 200 {array} models.RequestLog
// @Router /requests [get]
// @Security BearerAuth
func (h *UserHandlers) ListRequests(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	page, limit := getPageParams(r)
	status := r.URL.Query().Get("status")

	requests, err := h.svc.Requests.List(r.Context(), status, (page-1)*limit, limit)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, requests)
}

// @Summary Resolve an admin request
// @Description Approve or reject a pending request
// @Tags requests
// @Accept json
// @Param id path int true "Request ID"
// @Param decision body object true "approve (bool)"
// @Success 204 "No Content"
// @Failure 409 {object} errors.APIError
// @Router /requests/{id}/resolve [post]
// @Security BearerAuth
func (h *UserHandlers) ResolveRequest(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, apiErr := pathID(r, mux.Vars(r), "id")
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	var body struct {
		Approve bool `json:"approve"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.svc.ResolveRequest(r.Context(), id, body.Approve); err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Owner dashboard
// @Description All of the owner's farms with current status and latest readings
// @Tags dashboards
// @Produce json
// @Success 200 {object} farmservice.OwnerDashboard
// @Router /dashboard/owner [get]
// @Security BearerAuth
func (h *UserHandlers) OwnerDashboard(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	userID := farmservice.GetUserID(r.Context())

	dashboard, err := h.svc.GetOwnerDashboard(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, dashboard)
}

// @Summary Peternak dashboard
// @Description The peternak's assigned farm, status and today's report state
// @Tags dashboards
// @Produce json
// @Success 200 {object} farmservice.PeternakDashboard
// @Router /dashboard/peternak [get]
// @Security BearerAuth
func (h *UserHandlers) PeternakDashboard(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	userID := farmservice.GetUserID(r.Context())

	dashboard, err := h.svc.GetPeternakDashboard(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, dashboard)
}

// @Summary Create a Telegram deep link
// @Description One-shot t.me link that binds the caller's account to a chat
// @Tags users
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errors.APIError
// @Router /users/me/telegram-link [post]
// @Security BearerAuth
func (h *UserHandlers) CreateTelegramLink(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	userID := farmservice.GetUserID(r.Context())

	if h.deepLinker == nil {
		respondWithError(w, errors.NewInternalError("telegram integration is not enabled", nil).WithRequestID(requestID))
		return
	}

	link, err := h.deepLinker.CreateDeepLink(r.Context(), userID, h.botUsername)
	if err != nil {
		respondWithError(w, errors.NewInternalError("failed to create link", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"link": link})
}

// @Summary Broadcast a message
// @Description Send a text to every linked Telegram chat (admin only)
// @Tags users
// @Accept json
// @Produce json
// @Param message body object true "message"
// @Success 200 {object} telegram.BroadcastResult
// @Failure 400 {object} errors.APIError
// @Failure 503 {object} errors.APIError
// @Router /broadcast [post]
// @Security BearerAuth
func (h *UserHandlers) Broadcast(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	if h.broadcaster == nil {
		respondWithError(w, errors.NewInternalError("telegram integration is not enabled", nil).WithRequestID(requestID))
		return
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}
	if body.Message == "" {
		respondWithError(w, errors.NewValidationError("message is required", nil).WithRequestID(requestID))
		return
	}

	result, err := h.broadcaster.BroadcastMessage(r.Context(), body.Message)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
