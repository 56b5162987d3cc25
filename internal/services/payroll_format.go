package services

import (
	"sort"

	"complexcare/internal/models"
)

type payrollField struct {
	name  string
	value func(r *models.PayrollRecord) any
}

var (
	employeeID    = func(r *models.PayrollRecord) any { return r.CareProfessionalID.String() }
	employeeName  = func(r *models.PayrollRecord) any { return r.EmployeeName }
	periodStart   = func(r *models.PayrollRecord) any { return r.PeriodStart.Format(dateLayout) }
	periodEnd     = func(r *models.PayrollRecord) any { return r.PeriodEnd.Format(dateLayout) }
	regularHours  = func(r *models.PayrollRecord) any { return r.RegularHours }
	overtimeHours = func(r *models.PayrollRecord) any { return r.OvertimeHours }
	regularRate   = func(r *models.PayrollRecord) any { return models.PenceToPounds(r.HourlyRatePence) }
	overtimeRate  = func(r *models.PayrollRecord) any { return models.PenceToPounds(r.OvertimeRatePence) }
	grossPay      = func(r *models.PayrollRecord) any { return models.PenceToPounds(r.GrossPence) }
	deductions    = func(r *models.PayrollRecord) any { return models.PenceToPounds(r.DeductionsPence) }
	netPay        = func(r *models.PayrollRecord) any { return models.PenceToPounds(r.NetPence) }
)

// payrollProviders maps each payroll vendor to its import column names.
var payrollProviders = map[string][]payrollField{
	"sage": {
		{"EmployeeReference", employeeID},
		{"EmployeeName", employeeName},
		{"PeriodStartDate", periodStart},
		{"PeriodEndDate", periodEnd},
		{"BasicHours", regularHours},
		{"OvertimeHours", overtimeHours},
		{"BasicRate", regularRate},
		{"OvertimeRate", overtimeRate},
		{"GrossPay", grossPay},
		{"Deductions", deductions},
		{"NetPay", netPay},
	},
	"xero": {
		{"EmployeeID", employeeID},
		{"Name", employeeName},
		{"StartDate", periodStart},
		{"EndDate", periodEnd},
		{"OrdinaryHours", regularHours},
		{"OvertimeHours", overtimeHours},
		{"RatePerUnit", regularRate},
		{"OvertimeRatePerUnit", overtimeRate},
		{"EarningsAmount", grossPay},
		{"DeductionsAmount", deductions},
		{"NetPay", netPay},
	},
	"quickbooks": {
		{"employee_id", employeeID},
		{"employee_name", employeeName},
		{"pay_period_start", periodStart},
		{"pay_period_end", periodEnd},
		{"regular_hours", regularHours},
		{"overtime_hours", overtimeHours},
		{"regular_rate", regularRate},
		{"overtime_rate", overtimeRate},
		{"gross_pay", grossPay},
		{"deductions", deductions},
		{"net_pay", netPay},
	},
	"adp": {
		{"Associate ID", employeeID},
		{"Worker Name", employeeName},
		{"Pay Period Start", periodStart},
		{"Pay Period End", periodEnd},
		{"Regular Hours", regularHours},
		{"Overtime Hours", overtimeHours},
		{"Regular Rate", regularRate},
		{"Overtime Rate", overtimeRate},
		{"Gross Pay", grossPay},
		{"Total Deductions", deductions},
		{"Net Pay", netPay},
	},
}

// PayrollProviders lists the supported vendors in name order.
func PayrollProviders() []string {
	names := make([]string, 0, len(payrollProviders))
	for name := range payrollProviders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatPayroll renders records in provider's field names.
func FormatPayroll(provider string, records []models.PayrollRecord) ([]map[string]any, error) {
	fields, ok := payrollProviders[provider]
	if !ok {
		return nil, invalidf("unknown payroll provider %q", provider)
	}
	out := make([]map[string]any, 0, len(records))
	for i := range records {
		row := make(map[string]any, len(fields))
		for _, f := range fields {
			row[f.name] = f.value(&records[i])
		}
		out = append(out, row)
	}
	return out, nil
}

// PayrollWorkbook renders records as an xlsx sheet in provider's column order.
func PayrollWorkbook(provider string, records []models.PayrollRecord) ([]byte, error) {
	fields, ok := payrollProviders[provider]
	if !ok {
		return nil, invalidf("unknown payroll provider %q", provider)
	}
	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = f.name
	}
	rows := make([][]any, len(records))
	for i := range records {
		row := make([]any, len(fields))
		for j, f := range fields {
			row[j] = f.value(&records[i])
		}
		rows[i] = row
	}
	return writeWorkbook("Payroll", headers, rows)
}
