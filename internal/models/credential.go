package models

import (
	"time"

	"github.com/google/uuid"
)

// ReminderLeadTime is how long before expiry a credential reminder falls due.
const ReminderLeadTime = 30 * 24 * time.Hour

const (
	CredentialValid    = "valid"
	CredentialExpiring = "expiring"
	CredentialExpired  = "expired"
	CredentialNoExpiry = "no_expiry"
)

var CredentialTypes = []string{"dbs", "nmc_pin", "hcpc", "training", "right_to_work", "insurance", "driving_licence", "other"}

type Credential struct {
	ID                 uuid.UUID  `json:"id"`
	TenantID           uuid.UUID  `json:"tenant_id"`
	CareProfessionalID uuid.UUID  `json:"care_professional_id"`
	Type               string     `json:"type"`
	Reference          *string    `json:"reference,omitempty"`
	IssuedOn           *time.Time `json:"issued_on,omitempty"`
	ExpiresOn          *time.Time `json:"expires_on,omitempty"`
	ReminderDate       *time.Time `json:"reminder_date,omitempty"`
	ReminderSent       bool       `json:"reminder_sent"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (c *Credential) Prepare() {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.ReminderDate = ReminderDateFor(c.ExpiresOn)
}

// ReminderDateFor returns the date 30 days before expiry, or nil when the
// credential never expires.
func ReminderDateFor(expiresOn *time.Time) *time.Time {
	if expiresOn == nil {
		return nil
	}
	d := expiresOn.Add(-ReminderLeadTime)
	return &d
}

// StatusAt derives the credential status relative to now.
func (c *Credential) StatusAt(now time.Time) string {
	if c.ExpiresOn == nil {
		return CredentialNoExpiry
	}
	today := dateOf(now)
	expires := dateOf(*c.ExpiresOn)
	switch {
	case expires.Before(today):
		return CredentialExpired
	case !today.Before(expires.Add(-ReminderLeadTime)):
		return CredentialExpiring
	default:
		return CredentialValid
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type CredentialAudit struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     uuid.UUID  `json:"tenant_id"`
	CredentialID uuid.UUID  `json:"credential_id"`
	Action       string     `json:"action"`
	ActorID      *uuid.UUID `json:"actor_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
