package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
)

type Tenant struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Status       string    `json:"status"`
	ContactEmail *string   `json:"contact_email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and joins its alphanumeric runs with dashes.
func Slugify(name string) string {
	slug := slugInvalidChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

func (t *Tenant) Prepare() {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.Name = strings.TrimSpace(t.Name)
	if t.Slug == "" {
		t.Slug = Slugify(t.Name)
	}
	if t.Status == "" {
		t.Status = TenantStatusActive
	}
}

func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

type TenantStats struct {
	TenantID          uuid.UUID `json:"tenant_id"`
	Patients          int       `json:"patients"`
	CareProfessionals int       `json:"care_professionals"`
	Appointments      int       `json:"appointments"`
	Users             int       `json:"users"`
}
