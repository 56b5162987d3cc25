package models

import (
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleSuperadmin = "superadmin"
	RoleAdmin      = "admin"
	RoleClinician  = "clinician"
	RoleStaff      = "staff"
)

var Roles = []string{RoleSuperadmin, RoleAdmin, RoleClinician, RoleStaff}

type User struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     *uuid.UUID `json:"tenant_id,omitempty"`
	Email        string     `json:"email"`
	Password     string     `json:"-"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) Prepare() {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = html.EscapeString(strings.ToLower(strings.TrimSpace(u.Email)))
	u.Name = strings.TrimSpace(u.Name)
	if u.Role == "" {
		u.Role = RoleStaff
	}
}

func (u *User) IsSuperadmin() bool {
	return u.Role == RoleSuperadmin
}
