package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"complexcare/internal/responses"
	"complexcare/internal/services"
)

type PayrollHandler struct {
	payrollService *services.PayrollService
}

func NewPayrollHandler(payrollService *services.PayrollService) *PayrollHandler {
	return &PayrollHandler{payrollService: payrollService}
}

// CreatePayroll handles POST /api/v1/payroll
func (h *PayrollHandler) CreatePayroll(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in services.PayrollInput
	if !bindJSON(c, &in) {
		return
	}
	record, err := h.payrollService.Create(c.Request.Context(), a, in)
	if err != nil {
		responses.Error(c, err, "Failed to create payroll record")
		return
	}
	responses.Success(c, http.StatusCreated, record, "Payroll record created successfully")
}

// ListPayroll handles GET /api/v1/payroll?from=YYYY-MM-DD&to=YYYY-MM-DD&status=
func (h *PayrollHandler) ListPayroll(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	records, err := h.payrollService.List(c.Request.Context(), a, c.Query("from"), c.Query("to"), c.Query("status"))
	if err != nil {
		responses.Error(c, err, "Failed to retrieve payroll")
		return
	}
	responses.Success(c, http.StatusOK, records, "Payroll retrieved successfully")
}

// ApprovePayroll handles POST /api/v1/payroll/approve
func (h *PayrollHandler) ApprovePayroll(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.payrollService.Approve(c.Request.Context(), a, req.IDs)
	if err != nil {
		responses.Error(c, err, "Failed to approve payroll")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{"approved": n}, "Payroll approved")
}

// ListProviders handles GET /api/v1/payroll/providers
func (h *PayrollHandler) ListProviders(c *gin.Context) {
	responses.Success(c, http.StatusOK, services.PayrollProviders(), "Payroll providers retrieved successfully")
}

// ExportPayroll handles POST /api/v1/payroll/export/:provider?from=&to=&format=json|xlsx
func (h *PayrollHandler) ExportPayroll(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	provider := c.Param("provider")
	export, err := h.payrollService.Export(c.Request.Context(), a, provider, c.Query("from"), c.Query("to"), c.Query("format"))
	if err != nil {
		responses.Error(c, err, "Failed to export payroll")
		return
	}
	if export.XLSX != nil {
		name := fmt.Sprintf("payroll-%s-%s-%s.xlsx", export.Provider, c.Query("from"), c.Query("to"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		c.Data(http.StatusOK, services.XLSXContentType, export.XLSX)
		return
	}
	responses.Success(c, http.StatusOK, export, "Payroll exported")
}
