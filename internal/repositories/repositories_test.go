package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complexcare/internal/database"
	"complexcare/internal/models"
	"complexcare/internal/testutil"
)

func strPtr(s string) *string { return &s }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestPatientRepository(t *testing.T) {
	pool := testutil.Pool(t)
	ctx := context.Background()
	tenant := testutil.Tenant(t, pool)
	other := testutil.Tenant(t, pool)
	repo := NewPatientRepository(pool)

	p := &models.Patient{TenantID: tenant.ID, FirstName: "Ada", LastName: "Lovelace", NHSNumber: strPtr("9434765919")}
	require.NoError(t, repo.Create(ctx, p))
	require.NoError(t, repo.Create(ctx, &models.Patient{TenantID: tenant.ID, FirstName: "Grace", LastName: "Hopper"}))

	t.Run("nhs number unique per tenant", func(t *testing.T) {
		dup := &models.Patient{TenantID: tenant.ID, FirstName: "Dup", LastName: "Licate", NHSNumber: strPtr("9434765919")}
		err := repo.Create(ctx, dup)
		require.Error(t, err)
		assert.True(t, database.IsUniqueViolation(err))

		elsewhere := &models.Patient{TenantID: other.ID, FirstName: "Ada", LastName: "Lovelace", NHSNumber: strPtr("9434765919")}
		assert.NoError(t, repo.Create(ctx, elsewhere))
	})

	t.Run("reads are tenant scoped", func(t *testing.T) {
		got, err := repo.GetByID(ctx, other.ID, p.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = repo.GetByID(ctx, tenant.ID, p.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Lovelace", got.LastName)
	})

	t.Run("search by name and nhs number", func(t *testing.T) {
		list, err := repo.List(ctx, tenant.ID, models.PatientFilter{Search: "hop", Limit: 50})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Grace", list[0].FirstName)

		list, err = repo.List(ctx, tenant.ID, models.PatientFilter{Search: "9434765919", Limit: 50})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, p.ID, list[0].ID)

		for _, term := range []string{"%", "_", "gr_ce", "%ace"} {
			list, err = repo.List(ctx, tenant.ID, models.PatientFilter{Search: term, Limit: 50})
			require.NoError(t, err)
			assert.Empty(t, list, "search %q is matched literally", term)
		}
	})

	t.Run("delete", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, other.ID, p.ID), ErrNotFound)
		require.NoError(t, repo.Delete(ctx, tenant.ID, p.ID))
		assert.ErrorIs(t, repo.Delete(ctx, tenant.ID, p.ID), ErrNotFound)
	})
}

func TestAssignmentsAndOverlap(t *testing.T) {
	pool := testutil.Pool(t)
	ctx := context.Background()
	tenant := testutil.Tenant(t, pool)

	patients := NewPatientRepository(pool)
	pros := NewCareProfessionalRepository(pool)
	appts := NewAppointmentRepository(pool)

	patient := &models.Patient{TenantID: tenant.ID, FirstName: "Mary", LastName: "Seacole"}
	require.NoError(t, patients.Create(ctx, patient))
	nurse := &models.CareProfessional{TenantID: tenant.ID, FirstName: "Florence", LastName: "Nightingale", Role: "nurse", HourlyRatePence: 1850, Active: true}
	require.NoError(t, pros.Create(ctx, nurse))

	require.NoError(t, pros.Assign(ctx, tenant.ID, nurse.ID, patient.ID))
	assigned, err := patients.ListByCareProfessional(ctx, tenant.ID, nurse.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, patient.ID, assigned[0].ID)

	require.NoError(t, pros.Unassign(ctx, tenant.ID, nurse.ID, patient.ID))
	assigned, err = patients.ListByCareProfessional(ctx, tenant.ID, nurse.ID)
	require.NoError(t, err)
	assert.Empty(t, assigned)

	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	visit := &models.Appointment{TenantID: tenant.ID, PatientID: patient.ID, CareProfessionalID: nurse.ID, StartsAt: start, EndsAt: start.Add(time.Hour)}
	require.NoError(t, appts.Create(ctx, visit))

	clash, err := appts.FindOverlapping(ctx, tenant.ID, nurse.ID, start.Add(30*time.Minute), start.Add(90*time.Minute), nil)
	require.NoError(t, err)
	require.Len(t, clash, 1)

	clash, err = appts.FindOverlapping(ctx, tenant.ID, nurse.ID, start.Add(time.Hour), start.Add(2*time.Hour), nil)
	require.NoError(t, err)
	assert.Empty(t, clash, "back-to-back visits do not overlap")

	clash, err = appts.FindOverlapping(ctx, tenant.ID, nurse.ID, start, start.Add(time.Hour), &visit.ID)
	require.NoError(t, err)
	assert.Empty(t, clash)

	require.NoError(t, appts.UpdateStatus(ctx, tenant.ID, visit.ID, models.AppointmentCancelled))
	clash, err = appts.FindOverlapping(ctx, tenant.ID, nurse.ID, start, start.Add(time.Hour), nil)
	require.NoError(t, err)
	assert.Empty(t, clash, "cancelled visits free the slot")
}

func TestConcurrentBookingsSerialiseOnProfessional(t *testing.T) {
	pool := testutil.Pool(t)
	ctx := context.Background()
	tenant := testutil.Tenant(t, pool)

	patients := NewPatientRepository(pool)
	pros := NewCareProfessionalRepository(pool)
	appts := NewAppointmentRepository(pool)
	tx := database.NewTransactor(pool)

	patient := &models.Patient{TenantID: tenant.ID, FirstName: "Mary", LastName: "Seacole"}
	require.NoError(t, patients.Create(ctx, patient))
	nurse := &models.CareProfessional{TenantID: tenant.ID, FirstName: "Florence", LastName: "Nightingale", Role: "nurse", Active: true}
	require.NoError(t, pros.Create(ctx, nurse))

	start := time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)
	book := func() (bool, error) {
		booked := false
		err := tx.WithTx(ctx, func(ctx context.Context) error {
			if err := appts.LockProfessional(ctx, tenant.ID, nurse.ID); err != nil {
				return err
			}
			clash, err := appts.FindOverlapping(ctx, tenant.ID, nurse.ID, start, start.Add(time.Hour), nil)
			if err != nil || len(clash) > 0 {
				return err
			}
			// Give the other booking time to reach the lock.
			time.Sleep(100 * time.Millisecond)
			booked = true
			return appts.Create(ctx, &models.Appointment{TenantID: tenant.ID, PatientID: patient.ID, CareProfessionalID: nurse.ID, StartsAt: start, EndsAt: start.Add(time.Hour)})
		})
		return booked, err
	}

	var wg sync.WaitGroup
	results := make([]bool, 2)
	errs := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = book()
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.True(t, results[0] != results[1], "exactly one booking wins the slot")

	list, err := appts.List(ctx, tenant.ID, models.AppointmentFilter{CareProfessionalID: &nurse.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, appts.LockProfessional(ctx, tenant.ID, uuid.New()), ErrNotFound)
}

func TestPayrollTransition(t *testing.T) {
	pool := testutil.Pool(t)
	ctx := context.Background()
	tenant := testutil.Tenant(t, pool)

	pros := NewCareProfessionalRepository(pool)
	payroll := NewPayrollRepository(pool)

	carer := &models.CareProfessional{TenantID: tenant.ID, FirstName: "Edith", LastName: "Cavell", Role: "carer", HourlyRatePence: 1200, Active: true}
	require.NoError(t, pros.Create(ctx, carer))
	rec := &models.PayrollRecord{
		TenantID:           tenant.ID,
		CareProfessionalID: carer.ID,
		EmployeeName:       carer.FullName(),
		PeriodStart:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:          time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		RegularHours:       10,
		HourlyRatePence:    1200,
		OvertimeRatePence:  1800,
	}
	require.NoError(t, payroll.Create(ctx, rec))
	ids := []uuid.UUID{rec.ID}

	n, err := payroll.Transition(ctx, tenant.ID, ids, models.PayrollDraft, models.PayrollApproved)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = payroll.Transition(ctx, tenant.ID, ids, models.PayrollApproved, models.PayrollExported)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = payroll.Transition(ctx, tenant.ID, ids, models.PayrollDraft, models.PayrollApproved)
	require.NoError(t, err)
	assert.Zero(t, n)
	got, err := payroll.GetByID(ctx, tenant.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayrollExported, got.Status)
}

func TestCredentialReminders(t *testing.T) {
	pool := testutil.Pool(t)
	ctx := context.Background()
	tenant := testutil.Tenant(t, pool)

	pros := NewCareProfessionalRepository(pool)
	creds := NewCredentialRepository(pool)
	tx := database.NewTransactor(pool)

	carer := &models.CareProfessional{TenantID: tenant.ID, FirstName: "Edith", LastName: "Cavell", Role: "carer", Active: true}
	require.NoError(t, pros.Create(ctx, carer))

	due := &models.Credential{TenantID: tenant.ID, CareProfessionalID: carer.ID, Type: "dbs", ExpiresOn: date(2026, 11, 1)}
	later := &models.Credential{TenantID: tenant.ID, CareProfessionalID: carer.ID, Type: "training", ExpiresOn: date(2027, 6, 1)}
	never := &models.Credential{TenantID: tenant.ID, CareProfessionalID: carer.ID, Type: "right_to_work"}

	err := tx.WithTx(ctx, func(ctx context.Context) error {
		for _, c := range []*models.Credential{due, later, never} {
			if err := creds.Create(ctx, c); err != nil {
				return err
			}
			if err := creds.InsertAudit(ctx, &models.CredentialAudit{
				ID: uuid.New(), TenantID: tenant.ID, CredentialID: c.ID, Action: "create",
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	require.NotNil(t, due.ReminderDate)
	assert.Equal(t, "2026-10-02", due.ReminderDate.Format(time.DateOnly))

	asOf := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	list, err := creds.DueReminders(ctx, asOf)
	require.NoError(t, err)
	ids := map[uuid.UUID]bool{}
	for _, c := range list {
		ids[c.ID] = true
	}
	assert.True(t, ids[due.ID])
	assert.False(t, ids[later.ID])
	assert.False(t, ids[never.ID])

	require.NoError(t, creds.MarkReminderSent(ctx, due.ID))
	list, err = creds.DueReminders(ctx, asOf)
	require.NoError(t, err)
	for _, c := range list {
		assert.NotEqual(t, due.ID, c.ID)
	}

	history, err := creds.ListAudit(ctx, tenant.ID, due.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "create", history[0].Action)
}

func TestCredentialAuditRollsBackWithWrite(t *testing.T) {
	pool := testutil.Pool(t)
	ctx := context.Background()
	tenant := testutil.Tenant(t, pool)

	pros := NewCareProfessionalRepository(pool)
	creds := NewCredentialRepository(pool)
	carer := &models.CareProfessional{TenantID: tenant.ID, FirstName: "Mary", LastName: "Breckinridge", Role: "nurse", Active: true}
	require.NoError(t, pros.Create(ctx, carer))

	c := &models.Credential{TenantID: tenant.ID, CareProfessionalID: carer.ID, Type: "nmc_pin"}
	err := database.NewTransactor(pool).WithTx(ctx, func(ctx context.Context) error {
		if err := creds.Create(ctx, c); err != nil {
			return err
		}
		// The audit row names a tenant that does not exist.
		return creds.InsertAudit(ctx, &models.CredentialAudit{
			ID: uuid.New(), TenantID: uuid.New(), CredentialID: c.ID, Action: "create",
		})
	})
	require.Error(t, err)

	got, err := creds.GetByID(ctx, tenant.ID, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "credential insert is rolled back with the failed audit row")
}

func TestInvoiceSequence(t *testing.T) {
	pool := testutil.Pool(t)
	ctx := context.Background()
	tenant := testutil.Tenant(t, pool)
	other := testutil.Tenant(t, pool)
	repo := NewInvoiceRepository(pool)

	for want := 1; want <= 3; want++ {
		seq, err := repo.NextSequence(ctx, tenant.ID, 2026)
		require.NoError(t, err)
		assert.Equal(t, want, seq)
	}

	seq, err := repo.NextSequence(ctx, tenant.ID, 2027)
	require.NoError(t, err)
	assert.Equal(t, 1, seq, "numbering restarts each year")

	seq, err = repo.NextSequence(ctx, other.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, seq, "numbering is per tenant")
}

func TestDMDCache(t *testing.T) {
	pool := testutil.Pool(t)
	ctx := context.Background()
	repo := NewDMDCacheRepository(pool)
	key := "search:" + uuid.NewString()

	entry, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, entry)

	require.NoError(t, repo.Put(ctx, key, []byte(`{"products":[]}`)))
	require.NoError(t, repo.Put(ctx, key, []byte(`{"products":[{"code":"1"}]}`)))

	entry, err = repo.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.JSONEq(t, `{"products":[{"code":"1"}]}`, string(entry.Payload))
	assert.WithinDuration(t, time.Now(), entry.FetchedAt, time.Minute)

	n, err := repo.Purge(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	entry, err = repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestSchemaRepository(t *testing.T) {
	pool := testutil.Pool(t)
	ctx := context.Background()
	repo := NewSchemaRepository(pool)

	columns, err := repo.ColumnsBySchema(ctx, "public")
	require.NoError(t, err)
	for table, want := range database.ExpectedSchema {
		got, ok := columns[table]
		require.True(t, ok, "table %s missing", table)
		for _, col := range want {
			assert.Contains(t, got, col, "column %s.%s", table, col)
		}
	}

	fks, err := repo.GetForeignKeys(ctx, "public", "appointments")
	require.NoError(t, err)
	targets := map[string]bool{}
	for _, fk := range fks {
		targets[fk.ToTable] = true
	}
	assert.True(t, targets["patients"])
	assert.True(t, targets["care_professionals"])

	pk, err := repo.GetPrimaryKeys(ctx, "public", "patients")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, pk)

	version, err := repo.ServerVersion(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, version)
}
