// FilePath: internal/farmservice/farmservice.farm.go
package farmservice

import (
	"context"

	"github.com/itsatony/struccy"
	nuts "github.com/vaudience/go-nuts"

	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/models"
)

// CreateFarm creates a new farm and seeds it with the default threshold
// configuration so classification works from the first reading.
func (s *FarmService) CreateFarm(ctx context.Context, farm *models.Farm) error {
	if farm.Name == "" {
		return errors.NewValidationError("farm name is required", nil)
	}
	if farm.OwnerID == 0 {
		return errors.NewValidationError("farm owner is required", nil)
	}

	owner, err := s.Users.Get(ctx, farm.OwnerID)
	if err != nil {
		return err
	}
	if owner.RoleID != models.RoleOwner && owner.RoleID != models.RoleAdmin {
		return errors.NewValidationError("farm owner must have the owner role", nil)
	}

	if err := s.Farms.Create(ctx, farm); err != nil {
		return err
	}

	if err := s.Configs.Replace(ctx, farm.ID, models.DefaultFarmConfig()); err != nil {
		// The farm exists but classification would report unknown until
		// a config is written, so surface the failure.
		return errors.NewInternalError("farm created but default config failed", err)
	}

	nuts.L.Infof("[FarmService] Created farm %d (%s) for owner %d", farm.ID, farm.Name, farm.OwnerID)
	return nil
}

// GetFarm retrieves a farm with role-based field filtering
func (s *FarmService) GetFarm(ctx context.Context, id int64) (*models.Farm, error) {
	farm, err := s.Farms.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	roles := GetUserRoles(ctx)

	filteredMap, err := struccy.StructToMapFieldsWithReadXS(farm, roles)
	if err != nil {
		return nil, errors.NewInternalError("failed to filter farm fields", err)
	}
	filtered := &models.Farm{}
	_, err = struccy.MergeMapStringFieldsToStruct(filtered, filteredMap, roles)
	if err != nil {
		return nil, errors.NewInternalError("failed to map filtered fields to farm struct", err)
	}

	return filtered, nil
}

// UpdateFarm updates an existing farm with role-based access control
func (s *FarmService) UpdateFarm(ctx context.Context, farm *models.Farm) error {
	existing, err := s.Farms.Get(ctx, farm.ID)
	if err != nil {
		return err
	}

	roles := GetUserRoles(ctx)

	updatedFields, _, err := struccy.UpdateStructFields(existing, farm, roles, true, true)
	if err != nil {
		return errors.NewAuthorizationError("unauthorized field update", err)
	}

	nuts.L.Infof("[FarmService] Updating farm %d, fields changed: %v", farm.ID, updatedFields)
	return s.Farms.Update(ctx, existing)
}

// DeleteFarm handles farm deletion with cascading cleanup
func (s *FarmService) DeleteFarm(ctx context.Context, id int64) error {
	if _, err := s.Farms.Get(ctx, id); err != nil {
		return err
	}

	nuts.L.Infof("[FarmService] Deleting farm %d", id)
	return s.Cleanup.DeleteFarm(ctx, id)
}

// ListFarms retrieves a paginated, filtered list of farms
func (s *FarmService) ListFarms(ctx context.Context, filters models.FarmFilters, page, limit int) (int64, []*models.Farm, error) {
	if limit <= 0 || limit > 100 {
		limit = 50 // Default limit
	}
	if page <= 0 {
		page = 1
	}

	return s.Farms.List(ctx, filters, page, limit)
}

// AssignPeternak binds a worker to a farm, or clears the binding when
// peternakID is nil. The user must carry the peternak role.
func (s *FarmService) AssignPeternak(ctx context.Context, farmID int64, peternakID *int64) error {
	if peternakID != nil {
		user, err := s.Users.Get(ctx, *peternakID)
		if err != nil {
			return err
		}
		if user.RoleID != models.RolePeternak {
			return errors.NewValidationError("assigned user must have the peternak role", nil)
		}
	}

	if err := s.Farms.AssignPeternak(ctx, farmID, peternakID); err != nil {
		return err
	}

	if peternakID != nil {
		nuts.L.Infof("[FarmService] Assigned peternak %d to farm %d", *peternakID, farmID)
	} else {
		nuts.L.Infof("[FarmService] Cleared peternak assignment for farm %d", farmID)
	}
	return nil
}

// GetUserRoles retrieves user role names from context, set by the auth
// middleware. Unauthenticated callers get the guest role.
func GetUserRoles(ctx context.Context) []string {
	if roles := ctx.Value(ContextKeyUserRoles); roles != nil {
		if r, ok := roles.([]string); ok {
			return r
		}
	}
	return []string{"guest"}
}

// GetUserID retrieves the authenticated user id from context, 0 when
// unauthenticated.
func GetUserID(ctx context.Context) int64 {
	if id := ctx.Value(ContextKeyUserID); id != nil {
		if v, ok := id.(int64); ok {
			return v
		}
	}
	return 0
}

type contextKey string

// Context keys shared with the auth middleware.
const (
	ContextKeyUserID    contextKey = "user_id"
	ContextKeyUserRoles contextKey = "user_roles"
)
