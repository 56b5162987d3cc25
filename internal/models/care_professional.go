package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type CareProfessional struct {
	ID                 uuid.UUID `json:"id"`
	TenantID           uuid.UUID `json:"tenant_id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Role               string    `json:"role"`
	Email              *string   `json:"email,omitempty"`
	Phone              *string   `json:"phone,omitempty"`
	RegistrationNumber *string   `json:"registration_number,omitempty"`
	HourlyRatePence    int64     `json:"hourly_rate_pence"`
	Active             bool      `json:"active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (c *CareProfessional) Prepare() {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Role = strings.ToLower(strings.TrimSpace(c.Role))
}

func (c *CareProfessional) FullName() string {
	return c.FirstName + " " + c.LastName
}
