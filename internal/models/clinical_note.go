package models

import (
	"time"

	"github.com/google/uuid"
)

var NoteCategories = []string{"assessment", "progress", "incident", "handover"}

type ClinicalNote struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	PatientID uuid.UUID `json:"patient_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Category  string    `json:"category"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n *ClinicalNote) Prepare() {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
}
