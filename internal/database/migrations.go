package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func RunMigrations(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	migrations := []string{
		createTenantsTable,
		createUsersTable,
		createPatientsTable,
		createCareProfessionalsTable,
		createAssignmentsTable,
		createClinicalNotesTable,
		createAppointmentsTable,
		createPatientMedicationsTable,
		createDMDCacheTable,
		createCredentialsTable,
		createNotificationsTable,
		createPayrollTable,
		createInvoicesTable,
		preventHardDeleteTenants,
	}

	for i, migration := range migrations {
		log.Debug("running migration", zap.Int("step", i+1), zap.Int("total", len(migrations)))
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Info("all migrations completed successfully", zap.Int("count", len(migrations)))
	return nil
}

// ExpectedSchema lists the tables and columns the application relies on.
// The diagnostics endpoint validates the live database against it.
var ExpectedSchema = map[string][]string{
	"tenants":               {"id", "name", "slug", "status", "contact_email", "created_at", "updated_at"},
	"users":                 {"id", "tenant_id", "email", "password_hash", "name", "role", "created_at", "last_login_at"},
	"patients":              {"id", "tenant_id", "nhs_number", "first_name", "last_name", "date_of_birth", "gender", "phone", "email", "address", "gp_practice_code", "status", "created_at", "updated_at"},
	"care_professionals":    {"id", "tenant_id", "first_name", "last_name", "role", "email", "phone", "registration_number", "hourly_rate_pence", "active", "created_at", "updated_at"},
	"patient_assignments":   {"tenant_id", "patient_id", "care_professional_id", "assigned_at"},
	"clinical_notes":        {"id", "tenant_id", "patient_id", "author_id", "category", "content", "created_at", "updated_at"},
	"appointments":          {"id", "tenant_id", "patient_id", "care_professional_id", "starts_at", "ends_at", "status", "location", "notes", "created_at"},
	"patient_medications":   {"id", "tenant_id", "patient_id", "dmd_code", "name", "dose", "route", "frequency", "start_date", "end_date", "prescriber", "active", "created_at"},
	"dmd_cache":             {"cache_key", "payload", "fetched_at"},
	"credentials":           {"id", "tenant_id", "care_professional_id", "type", "reference", "issued_on", "expires_on", "reminder_date", "reminder_sent", "created_at", "updated_at"},
	"credential_audit":      {"id", "tenant_id", "credential_id", "action", "actor_id", "created_at"},
	"notifications":         {"id", "tenant_id", "kind", "title", "body", "read_at", "created_at"},
	"payroll_records":       {"id", "tenant_id", "care_professional_id", "period_start", "period_end", "regular_hours", "overtime_hours", "hourly_rate_pence", "overtime_rate_pence", "deductions_pence", "gross_pence", "net_pence", "status", "created_at"},
	"invoices":              {"id", "tenant_id", "patient_id", "number", "issue_date", "due_date", "status", "tax_rate_bp", "subtotal_pence", "tax_pence", "total_pence", "created_at"},
	"invoice_lines":         {"id", "invoice_id", "description", "quantity", "unit_price_pence"},

	"invoice_number_counters": {"tenant_id", "year", "last_value"},
}

const createTenantsTable = `
CREATE TABLE IF NOT EXISTS tenants (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'suspended')),
  contact_email TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id UUID REFERENCES tenants(id) ON DELETE CASCADE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'staff' CHECK (role IN ('superadmin', 'admin', 'clinician', 'staff')),
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  last_login_at TIMESTAMPTZ,
  CHECK (role = 'superadmin' OR tenant_id IS NOT NULL)
);

CREATE INDEX IF NOT EXISTS idx_users_tenant_id ON users(tenant_id);
`

const createPatientsTable = `
CREATE TABLE IF NOT EXISTS patients (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  nhs_number TEXT,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  date_of_birth DATE,
  gender TEXT,
  phone TEXT,
  email TEXT,
  address TEXT,
  gp_practice_code TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_patients_tenant_id ON patients(tenant_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_patients_tenant_nhs ON patients(tenant_id, nhs_number) WHERE nhs_number IS NOT NULL;
`

const createCareProfessionalsTable = `
CREATE TABLE IF NOT EXISTS care_professionals (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  role TEXT NOT NULL,
  email TEXT,
  phone TEXT,
  registration_number TEXT,
  hourly_rate_pence BIGINT NOT NULL DEFAULT 0,
  active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_care_professionals_tenant_id ON care_professionals(tenant_id);
`

const createAssignmentsTable = `
CREATE TABLE IF NOT EXISTS patient_assignments (
  tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  patient_id UUID NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
  care_professional_id UUID NOT NULL REFERENCES care_professionals(id) ON DELETE CASCADE,
  assigned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  PRIMARY KEY (patient_id, care_professional_id)
);

CREATE INDEX IF NOT EXISTS idx_patient_assignments_professional ON patient_assignments(care_professional_id);
`

const createClinicalNotesTable = `
CREATE TABLE IF NOT EXISTS clinical_notes (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  patient_id UUID NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
  author_id UUID NOT NULL REFERENCES users(id),
  category TEXT NOT NULL,
  content TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_clinical_notes_patient ON clinical_notes(tenant_id, patient_id, created_at DESC);
`

const createAppointmentsTable = `
CREATE TABLE IF NOT EXISTS appointments (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  patient_id UUID NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
  care_professional_id UUID NOT NULL REFERENCES care_professionals(id) ON DELETE CASCADE,
  starts_at TIMESTAMPTZ NOT NULL,
  ends_at TIMESTAMPTZ NOT NULL,
  status TEXT NOT NULL DEFAULT 'scheduled',
  location TEXT,
  notes TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  CHECK (ends_at > starts_at)
);

CREATE INDEX IF NOT EXISTS idx_appointments_tenant_start ON appointments(tenant_id, starts_at);
CREATE INDEX IF NOT EXISTS idx_appointments_professional ON appointments(care_professional_id, starts_at);
`

const createPatientMedicationsTable = `
CREATE TABLE IF NOT EXISTS patient_medications (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  patient_id UUID NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
  dmd_code TEXT,
  name TEXT NOT NULL,
  dose TEXT,
  route TEXT,
  frequency TEXT,
  start_date DATE NOT NULL DEFAULT CURRENT_DATE,
  end_date DATE,
  prescriber TEXT,
  active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_patient_medications_patient ON patient_medications(tenant_id, patient_id);
`

const createDMDCacheTable = `
CREATE TABLE IF NOT EXISTS dmd_cache (
  cache_key TEXT PRIMARY KEY,
  payload JSONB NOT NULL,
  fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const createCredentialsTable = `
CREATE TABLE IF NOT EXISTS credentials (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  care_professional_id UUID NOT NULL REFERENCES care_professionals(id) ON DELETE CASCADE,
  type TEXT NOT NULL,
  reference TEXT,
  issued_on DATE,
  expires_on DATE,
  reminder_date DATE,
  reminder_sent BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_credentials_professional ON credentials(tenant_id, care_professional_id);
CREATE INDEX IF NOT EXISTS idx_credentials_reminder ON credentials(reminder_date) WHERE reminder_sent = FALSE;

CREATE TABLE IF NOT EXISTS credential_audit (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  credential_id UUID NOT NULL,
  action TEXT NOT NULL,
  actor_id UUID,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const createNotificationsTable = `
CREATE TABLE IF NOT EXISTS notifications (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  kind TEXT NOT NULL,
  title TEXT NOT NULL,
  body TEXT NOT NULL DEFAULT '',
  read_at TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_notifications_tenant ON notifications(tenant_id, created_at DESC);
`

const createPayrollTable = `
CREATE TABLE IF NOT EXISTS payroll_records (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  care_professional_id UUID NOT NULL REFERENCES care_professionals(id) ON DELETE CASCADE,
  period_start DATE NOT NULL,
  period_end DATE NOT NULL,
  regular_hours NUMERIC(8,2) NOT NULL DEFAULT 0,
  overtime_hours NUMERIC(8,2) NOT NULL DEFAULT 0,
  hourly_rate_pence BIGINT NOT NULL,
  overtime_rate_pence BIGINT NOT NULL,
  deductions_pence BIGINT NOT NULL DEFAULT 0,
  gross_pence BIGINT NOT NULL,
  net_pence BIGINT NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  CHECK (period_end >= period_start)
);

CREATE INDEX IF NOT EXISTS idx_payroll_period ON payroll_records(tenant_id, period_start, period_end);
`

const createInvoicesTable = `
CREATE TABLE IF NOT EXISTS invoice_number_counters (
  tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  year INT NOT NULL,
  last_value INT NOT NULL DEFAULT 0,
  PRIMARY KEY (tenant_id, year)
);

CREATE TABLE IF NOT EXISTS invoices (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  patient_id UUID NOT NULL REFERENCES patients(id),
  number TEXT NOT NULL,
  issue_date DATE NOT NULL,
  due_date DATE NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  tax_rate_bp INT NOT NULL DEFAULT 0,
  subtotal_pence BIGINT NOT NULL,
  tax_pence BIGINT NOT NULL,
  total_pence BIGINT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  UNIQUE (tenant_id, number)
);

CREATE TABLE IF NOT EXISTS invoice_lines (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  invoice_id UUID NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
  description TEXT NOT NULL,
  quantity INT NOT NULL CHECK (quantity > 0),
  unit_price_pence BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_invoice_lines_invoice ON invoice_lines(invoice_id);
`

const preventHardDeleteTenants = `
-- Tenants are suspended, never deleted
CREATE OR REPLACE FUNCTION prevent_hard_delete_tenants()
RETURNS trigger AS $$
BEGIN
  RAISE EXCEPTION 'Hard delete of tenants is not allowed. Suspend the tenant instead.';
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS no_tenant_hard_delete ON tenants;

CREATE TRIGGER no_tenant_hard_delete
BEFORE DELETE ON tenants
FOR EACH ROW
EXECUTE FUNCTION prevent_hard_delete_tenants();
`
