package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	PatientStatusActive     = "active"
	PatientStatusInactive   = "inactive"
	PatientStatusDischarged = "discharged"
)

type Patient struct {
	ID             uuid.UUID  `json:"id"`
	TenantID       uuid.UUID  `json:"tenant_id"`
	NHSNumber      *string    `json:"nhs_number,omitempty"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Gender         *string    `json:"gender,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	Email          *string    `json:"email,omitempty"`
	Address        *string    `json:"address,omitempty"`
	GPPracticeCode *string    `json:"gp_practice_code,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (p *Patient) Prepare() {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	if p.NHSNumber != nil {
		n := NormalizeNHSNumber(*p.NHSNumber)
		p.NHSNumber = &n
	}
	if p.Status == "" {
		p.Status = PatientStatusActive
	}
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// NormalizeNHSNumber strips the spaces and dashes people type into NHS numbers.
func NormalizeNHSNumber(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(s)
}

// ValidNHSNumber applies the modulus 11 check to a 10 digit NHS number.
func ValidNHSNumber(s string) bool {
	s = NormalizeNHSNumber(s)
	if len(s) != 10 {
		return false
	}
	sum := 0
	for i := 0; i < 9; i++ {
		d := s[i]
		if d < '0' || d > '9' {
			return false
		}
		sum += int(d-'0') * (10 - i)
	}
	last := s[9]
	if last < '0' || last > '9' {
		return false
	}
	check := 11 - sum%11
	if check == 11 {
		check = 0
	}
	if check == 10 {
		return false
	}
	return check == int(last-'0')
}

type PatientFilter struct {
	Search string
	Status string
	Limit  int
	Offset int
}
