package demo

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complexcare/internal/models"
)

func TestSampleDataIsStableAndValid(t *testing.T) {
	tenant := uuid.New()
	patients := Patients(tenant)
	require.NotEmpty(t, patients)
	assert.Equal(t, patients[0].ID, Patients(uuid.New())[0].ID)

	seen := map[uuid.UUID]bool{}
	for _, p := range patients {
		assert.Equal(t, tenant, p.TenantID)
		assert.False(t, seen[p.ID])
		seen[p.ID] = true
		require.NotNil(t, p.NHSNumber)
		assert.True(t, models.ValidNHSNumber(*p.NHSNumber), *p.NHSNumber)
	}

	all := CareProfessionals(tenant, false)
	active := CareProfessionals(tenant, true)
	assert.Len(t, active, len(all)-1)

	patientIDs := map[uuid.UUID]bool{}
	for _, p := range patients {
		patientIDs[p.ID] = true
	}
	staffIDs := map[uuid.UUID]bool{}
	for _, cp := range active {
		staffIDs[cp.ID] = true
	}

	now := time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC)
	appts := Appointments(tenant, now)
	require.NotEmpty(t, appts)
	for i, a := range appts {
		assert.True(t, patientIDs[a.PatientID])
		assert.True(t, staffIDs[a.CareProfessionalID])
		assert.True(t, a.EndsAt.After(a.StartsAt))
		assert.Equal(t, 1, a.StartsAt.Day())
		for _, b := range appts[i+1:] {
			if a.CareProfessionalID == b.CareProfessionalID {
				assert.False(t, a.Overlaps(b.StartsAt, b.EndsAt))
			}
		}
	}
}
