package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"complexcare/internal/models"
)

type PayrollStore interface {
	Create(ctx context.Context, p *models.PayrollRecord) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.PayrollRecord, error)
	ListByPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time, status string) ([]models.PayrollRecord, error)
	Transition(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, from, to string) (int64, error)
}

type PayrollService struct {
	payroll       PayrollStore
	professionals CareProfessionalGetter
	tx            Transactor
	log           *zap.Logger
}

func NewPayrollService(payroll PayrollStore, professionals CareProfessionalGetter, tx Transactor, log *zap.Logger) *PayrollService {
	return &PayrollService{payroll: payroll, professionals: professionals, tx: tx, log: log}
}

type PayrollInput struct {
	CareProfessionalID uuid.UUID `json:"care_professional_id"`
	PeriodStart        string    `json:"period_start"`
	PeriodEnd          string    `json:"period_end"`
	RegularHours       float64   `json:"regular_hours"`
	OvertimeHours      float64   `json:"overtime_hours"`
	HourlyRatePence    *int64    `json:"hourly_rate_pence"`
	OvertimeRatePence  *int64    `json:"overtime_rate_pence"`
	DeductionsPence    int64     `json:"deductions_pence"`
}

func parsePeriod(from, to string) (time.Time, time.Time, error) {
	start, err := parseDate("period_start", &from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate("period_end", &to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start == nil || end == nil {
		return time.Time{}, time.Time{}, invalidf("period_start and period_end are required")
	}
	if end.Before(*start) {
		return time.Time{}, time.Time{}, invalidf("period_end must not be before period_start")
	}
	return *start, *end, nil
}

// Create records a draft payroll entry. Rates default to the professional's
// hourly rate, with overtime at time and a half.
func (s *PayrollService) Create(ctx context.Context, actor Actor, in PayrollInput) (*models.PayrollRecord, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins can manage payroll", ErrForbidden)
	}
	start, end, err := parsePeriod(in.PeriodStart, in.PeriodEnd)
	if err != nil {
		return nil, err
	}
	if in.RegularHours < 0 || in.OvertimeHours < 0 || in.DeductionsPence < 0 {
		return nil, invalidf("hours and deductions cannot be negative")
	}

	cp, err := s.professionals.GetByID(ctx, actor.TenantID, in.CareProfessionalID)
	if err != nil {
		return nil, storeErr("get care professional", err)
	}
	if cp == nil {
		return nil, notFound("care professional")
	}

	rate := cp.HourlyRatePence
	if in.HourlyRatePence != nil {
		rate = *in.HourlyRatePence
	}
	overtimeRate := (rate*3 + 1) / 2
	if in.OvertimeRatePence != nil {
		overtimeRate = *in.OvertimeRatePence
	}
	if rate < 0 || overtimeRate < 0 {
		return nil, invalidf("rates cannot be negative")
	}

	p := &models.PayrollRecord{
		TenantID:           actor.TenantID,
		CareProfessionalID: cp.ID,
		EmployeeName:       cp.FullName(),
		PeriodStart:        start,
		PeriodEnd:          end,
		RegularHours:       in.RegularHours,
		OvertimeHours:      in.OvertimeHours,
		HourlyRatePence:    rate,
		OvertimeRatePence:  overtimeRate,
		DeductionsPence:    in.DeductionsPence,
	}
	if err := s.payroll.Create(ctx, p); err != nil {
		return nil, storeErr("create payroll record", err)
	}
	return p, nil
}

func (s *PayrollService) List(ctx context.Context, actor Actor, from, to, status string) ([]models.PayrollRecord, error) {
	start, end, err := parsePeriod(from, to)
	if err != nil {
		return nil, err
	}
	records, err := s.payroll.ListByPeriod(ctx, actor.TenantID, start, end, status)
	if err != nil {
		return nil, storeErr("list payroll", err)
	}
	return records, nil
}

// Approve moves draft records to approved and returns how many moved.
// Records already approved or exported are skipped.
func (s *PayrollService) Approve(ctx context.Context, actor Actor, ids []uuid.UUID) (int64, error) {
	if !actor.IsAdmin() {
		return 0, fmt.Errorf("%w: only admins can approve payroll", ErrForbidden)
	}
	if len(ids) == 0 {
		return 0, invalidf("ids are required")
	}
	n, err := s.payroll.Transition(ctx, actor.TenantID, ids, models.PayrollDraft, models.PayrollApproved)
	if err != nil {
		return 0, storeErr("approve payroll", err)
	}
	return n, nil
}

type PayrollExport struct {
	Provider string           `json:"provider"`
	Count    int              `json:"count"`
	Rows     []map[string]any `json:"rows,omitempty"`
	XLSX     []byte           `json:"-"`
}

// Export formats the period's approved records for provider, as JSON rows or
// an xlsx workbook, and marks them exported in the same transaction.
func (s *PayrollService) Export(ctx context.Context, actor Actor, provider, from, to, format string) (*PayrollExport, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins can export payroll", ErrForbidden)
	}
	provider = strings.ToLower(provider)
	if _, ok := payrollProviders[provider]; !ok {
		return nil, invalidf("unknown payroll provider %q", provider)
	}
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "xlsx" {
		return nil, invalidf("format must be json or xlsx")
	}
	start, end, err := parsePeriod(from, to)
	if err != nil {
		return nil, err
	}

	out := &PayrollExport{Provider: provider}
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		records, err := s.payroll.ListByPeriod(ctx, actor.TenantID, start, end, models.PayrollApproved)
		if err != nil {
			return storeErr("list payroll", err)
		}
		out.Count = len(records)

		if format == "xlsx" {
			out.XLSX, err = PayrollWorkbook(provider, records)
		} else {
			out.Rows, err = FormatPayroll(provider, records)
		}
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, len(records))
		for i := range records {
			ids[i] = records[i].ID
		}
		if len(ids) > 0 {
			if _, err := s.payroll.Transition(ctx, actor.TenantID, ids, models.PayrollApproved, models.PayrollExported); err != nil {
				return storeErr("mark payroll exported", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payroll exported",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("provider", provider),
		zap.String("format", format),
		zap.Int("count", out.Count))
	return out, nil
}
