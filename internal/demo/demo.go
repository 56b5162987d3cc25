// Package demo holds the fixed sample records served by list endpoints when
// demo mode is on and the database cannot be reached.
package demo

import (
	"time"

	"github.com/google/uuid"

	"complexcare/internal/models"
)

// Header marks responses built from sample data.
const Header = "X-Demo-Data"

var namespace = uuid.MustParse("6f1c2b1e-8a1d-4c55-9a0e-3c1f0d9b7e21")

// id derives a stable id so sample records keep their ids across requests
// and link to each other.
func id(kind string, n int) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(kind+"/"+string(rune('a'+n))))
}

func ptr[T any](v T) *T { return &v }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

var samplePatients = []models.Patient{
	{NHSNumber: ptr("9434765919"), FirstName: "Margaret", LastName: "Holloway", DateOfBirth: date(1941, 3, 14), Gender: ptr("female"), Address: ptr("12 Orchard Lane, Harrogate"), GPPracticeCode: ptr("B82005")},
	{NHSNumber: ptr("4010232137"), FirstName: "Daniel", LastName: "Okafor", DateOfBirth: date(1987, 11, 2), Gender: ptr("male"), Address: ptr("Flat 4, 88 Station Road, Leeds")},
	{NHSNumber: ptr("4857773457"), FirstName: "Priya", LastName: "Raman", DateOfBirth: date(2009, 6, 21), Gender: ptr("female"), GPPracticeCode: ptr("A81001")},
	{NHSNumber: ptr("4505577104"), FirstName: "Thomas", LastName: "Whitfield", DateOfBirth: date(1958, 1, 30), Gender: ptr("male"), Status: models.PatientStatusInactive},
	{NHSNumber: ptr("7321165434"), FirstName: "Aisha", LastName: "Begum", DateOfBirth: date(1972, 9, 9), Gender: ptr("female")},
}

var sampleProfessionals = []models.CareProfessional{
	{FirstName: "Helen", LastName: "Marsh", Role: "nurse", RegistrationNumber: ptr("12A3456E"), HourlyRatePence: 2450, Active: true},
	{FirstName: "Kwame", LastName: "Asante", Role: "carer", HourlyRatePence: 1275, Active: true},
	{FirstName: "Sofia", LastName: "Bianchi", Role: "therapist", RegistrationNumber: ptr("PH123456"), HourlyRatePence: 3100, Active: true},
	{FirstName: "Gareth", LastName: "Evans", Role: "carer", HourlyRatePence: 1250, Active: false},
}

// Patients returns the sample patients stamped with tenantID.
func Patients(tenantID uuid.UUID) []models.Patient {
	out := make([]models.Patient, len(samplePatients))
	for i, p := range samplePatients {
		p.ID = id("patient", i)
		p.TenantID = tenantID
		if p.Status == "" {
			p.Status = models.PatientStatusActive
		}
		out[i] = p
	}
	return out
}

// CareProfessionals returns the sample staff stamped with tenantID.
func CareProfessionals(tenantID uuid.UUID, activeOnly bool) []models.CareProfessional {
	out := make([]models.CareProfessional, 0, len(sampleProfessionals))
	for i, cp := range sampleProfessionals {
		if activeOnly && !cp.Active {
			continue
		}
		cp.ID = id("care-professional", i)
		cp.TenantID = tenantID
		out = append(out, cp)
	}
	return out
}

// Appointments returns a day of sample visits starting at 09:00 UTC on the
// day of now, pairing sample patients with active sample staff.
func Appointments(tenantID uuid.UUID, now time.Time) []models.Appointment {
	y, m, d := now.UTC().Date()
	day := time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
	locations := []string{"Patient home", "Clinic room 2", "Patient home", "Video call"}

	out := make([]models.Appointment, 0, len(locations))
	for i, loc := range locations {
		start := day.Add(time.Duration(i) * 90 * time.Minute)
		out = append(out, models.Appointment{
			ID:                 id("appointment", i),
			TenantID:           tenantID,
			PatientID:          id("patient", i),
			CareProfessionalID: id("care-professional", i%3),
			StartsAt:           start,
			EndsAt:             start.Add(time.Hour),
			Status:             models.AppointmentScheduled,
			Location:           ptr(loc),
		})
	}
	return out
}
