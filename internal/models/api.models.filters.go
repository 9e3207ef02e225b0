// FilePath: internal/models/api.models.filters.go
package models

// UserFilters defines the available filter options for user listings
type UserFilters struct {
	RoleID int64  `json:"role_id"`
	Search string `json:"search"`
}

// FarmFilters defines the available filter options for farm listings
type FarmFilters struct {
	OwnerID    int64 `json:"owner_id"`
	PeternakID int64 `json:"peternak_id"`
}
