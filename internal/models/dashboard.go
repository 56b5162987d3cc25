package models

type DashboardSummary struct {
	Patients                int   `json:"patients"`
	ActiveCareProfessionals int   `json:"active_care_professionals"`
	AppointmentsToday       int   `json:"appointments_today"`
	CredentialsExpiringSoon int   `json:"credentials_expiring_soon"`
	UnpaidInvoiceTotalPence int64 `json:"unpaid_invoice_total_pence"`
	UnreadNotifications     int   `json:"unread_notifications"`
}
