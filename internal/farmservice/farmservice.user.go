// FilePath: internal/farmservice/farmservice.user.go
package farmservice

import (
	"context"
	"strings"
	"time"

	nuts "github.com/vaudience/go-nuts"
	"golang.org/x/crypto/bcrypt"

	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/models"
)

const bcryptCost = 12

// CreateUser registers an account with a hashed password.
func (s *FarmService) CreateUser(ctx context.Context, user *models.User, password string) error {
	if user.Email == "" || !strings.Contains(user.Email, "@") {
		return errors.NewValidationError("a valid email is required", nil)
	}
	if len(password) < 8 {
		return errors.NewValidationError("password must be at least 8 characters", nil)
	}
	if user.RoleID == 0 {
		user.RoleID = models.RolePeternak
	}

	if existing, err := s.Users.GetByEmail(ctx, user.Email); err == nil && existing != nil {
		return errors.NewConflictError("email already registered", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return errors.NewInternalError("failed to hash password", err)
	}
	user.PasswordHash = string(hash)

	if err := s.Users.Create(ctx, user); err != nil {
		return err
	}

	nuts.L.Infof("[FarmService] Created user %d (%s, role %s)", user.ID, user.Email, models.RoleName(user.RoleID))
	return nil
}

// Authenticate verifies credentials and returns the account. Login
// failures deliberately do not reveal whether the email exists.
func (s *FarmService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewAuthError("invalid email or password", nil)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.NewAuthError("invalid email or password", err)
	}

	if err := s.Users.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		nuts.L.Warnf("[FarmService] Failed to update last login for user %d: %v", user.ID, err)
	}

	return user, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *FarmService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return errors.NewAuthError("current password is incorrect", err)
	}
	if len(next) < 8 {
		return errors.NewValidationError("password must be at least 8 characters", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return errors.NewInternalError("failed to hash password", err)
	}
	user.PasswordHash = string(hash)

	return s.Users.Update(ctx, user)
}

// GetUser retrieves an account by id.
func (s *FarmService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.Users.Get(ctx, id)
}

// ListUsers retrieves a paginated, filtered account list.
func (s *FarmService) ListUsers(ctx context.Context, filters models.UserFilters, page, limit int) (int64, []*models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	return s.Users.List(ctx, filters, page, limit)
}

// DeleteUser removes an account. Farms owned by the user keep existing
// and must be reassigned by the admin.
func (s *FarmService) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.Users.Get(ctx, id); err != nil {
		return err
	}
	nuts.L.Infof("[FarmService] Deleting user %d", id)
	return s.Users.Delete(ctx, id)
}

// SubmitRequest stores an inbox entry for the admin: an owner request or
// a guest report from the public form.
func (s *FarmService) SubmitRequest(ctx context.Context, req *models.RequestLog) error {
	if req.RequestContent == "" {
		return errors.NewValidationError("request content is required", nil)
	}
	if req.UserID == 0 && req.SenderName == "" {
		return errors.NewValidationError("guest requests need a sender name", nil)
	}
	return s.Requests.Create(ctx, req)
}

// ResolveRequest marks a pending request approved or rejected.
func (s *FarmService) ResolveRequest(ctx context.Context, requestID int64, approve bool) error {
	req, err := s.Requests.Get(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status != models.RequestStatusPending {
		return errors.NewConflictError("request already resolved", nil)
	}

	status := models.RequestStatusRejected
	if approve {
		status = models.RequestStatusApproved
	}
	return s.Requests.UpdateStatus(ctx, requestID, status)
}
