package routes

import (
	"github.com/gin-gonic/gin"

	"complexcare/internal/handlers"
	"complexcare/internal/middlewares"
	"complexcare/internal/models"
)

// FinanceRoutes covers payroll and invoicing. Both are restricted to admins.
type FinanceRoutes struct {
	payroll  *handlers.PayrollHandler
	invoices *handlers.InvoiceHandler
}

func NewFinanceRoutes(payroll *handlers.PayrollHandler, invoices *handlers.InvoiceHandler) *FinanceRoutes {
	return &FinanceRoutes{payroll: payroll, invoices: invoices}
}

func (r *FinanceRoutes) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	adminOnly := middlewares.RequireRole(models.RoleAdmin, models.RoleSuperadmin)

	payroll := router.Group("/payroll", g.Tenant()...)
	payroll.Use(adminOnly)
	{
		payroll.POST("", r.payroll.CreatePayroll)
		payroll.GET("", r.payroll.ListPayroll)
		payroll.POST("/approve", r.payroll.ApprovePayroll)
		payroll.GET("/providers", r.payroll.ListProviders)
		payroll.POST("/export/:provider", r.payroll.ExportPayroll)
	}

	invoices := router.Group("/invoices", g.Tenant()...)
	invoices.Use(adminOnly)
	{
		invoices.POST("", r.invoices.CreateInvoice)
		invoices.GET("", r.invoices.ListInvoices)
		invoices.GET("/export", r.invoices.ExportInvoices)
		invoices.GET("/:invoice_id", r.invoices.GetInvoice)
		invoices.POST("/:invoice_id/send", r.invoices.SendInvoice)
		invoices.POST("/:invoice_id/pay", r.invoices.PayInvoice)
		invoices.POST("/:invoice_id/void", r.invoices.VoidInvoice)
	}
}
