package services

import (
	"github.com/google/uuid"

	"complexcare/internal/models"
)

// Actor is the authenticated caller. TenantID is the tenant the request acts
// on, which for a superadmin is the one selected with X-Tenant-ID.
type Actor struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     string
}

func (a Actor) IsSuperadmin() bool { return a.Role == models.RoleSuperadmin }

// IsAdmin is true for tenant admins and superadmins.
func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin || a.IsSuperadmin() }
