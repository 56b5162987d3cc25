package models

import (
	"time"

	"github.com/google/uuid"
)

const NotificationCredentialExpiry = "credential_expiry"

type Notification struct {
	ID        uuid.UUID  `json:"id"`
	TenantID  uuid.UUID  `json:"tenant_id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (n *Notification) Prepare() {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
}
