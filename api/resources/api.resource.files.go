// FilePath: api/resources/api.resource.files.go
package resources

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"

	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/farmservice"
)

const maxUploadMemory = 10 << 20

// @Summary Upload a profile photo
// @Description Store the caller's profile picture (jpeg/png)
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Success 201 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Failure 413 {object} errors.APIError
// @Router /users/me/photo [post]
// @Security BearerAuth
func (h *UserHandlers) UploadProfilePhoto(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	userID := farmservice.GetUserID(r.Context())

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondWithError(w, errors.NewValidationError("file too large", err).WithRequestID(requestID))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid file upload", err).WithRequestID(requestID))
		return
	}
	file.Close()

	relPath, err := h.svc.Files.Store(r.Context(), userID, header)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}

	user, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}
	previous := user.ProfilePic
	user.ProfilePic = relPath
	if err := h.svc.Users.Update(r.Context(), user); err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}
	if previous != "" && previous != relPath {
		if err := h.svc.Files.Delete(r.Context(), previous); err != nil {
			nuts.L.Warnf("[FileHandler] Failed to remove old photo %s: %v", previous, err)
		}
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"profile_pic": relPath})
}

// @Summary Get a user's profile photo
// @Tags users
// @Produce image/jpeg
// @Param id path int true "User ID"
// @Success 200 {file} file
// @Failure 404 {object} errors.APIError
// @Router /users/{id}/photo [get]
// @Security BearerAuth
func (h *UserHandlers) GetProfilePhoto(w http.ResponseWriter, r *http.Request) {
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
	if user.ProfilePic == "" {
		respondWithError(w, errors.NewNotFoundError("no profile photo", nil).WithRequestID(requestID))
		return
	}

	w.Header().Set("Content-Type", photoMimeType(user.ProfilePic))
	if err := h.svc.Files.Stream(r.Context(), user.ProfilePic, w); err != nil {
		nuts.L.Errorf("[FileHandler] Failed to stream photo for user %d: %v", id, err)
	}
}

// @Summary Delete the caller's profile photo
// @Tags users
// @Success 204 "No Content"
// @Router /users/me/photo [delete]
// @Security BearerAuth
func (h *UserHandlers) DeleteProfilePhoto(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	userID := farmservice.GetUserID(r.Context())

	user, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, requestID, err)
		return
	}
	if user.ProfilePic != "" {
		if err := h.svc.Files.Delete(r.Context(), user.ProfilePic); err != nil {
			respondWithServiceError(w, requestID, err)
			return
		}
		user.ProfilePic = ""
		if err := h.svc.Users.Update(r.Context(), user); err != nil {
			respondWithServiceError(w, requestID, err)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func photoMimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
