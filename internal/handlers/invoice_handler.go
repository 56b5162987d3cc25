package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"complexcare/internal/models"
	"complexcare/internal/responses"
	"complexcare/internal/services"
)

type InvoiceHandler struct {
	invoiceService *services.InvoiceService
}

func NewInvoiceHandler(invoiceService *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// CreateInvoice handles POST /api/v1/invoices
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in services.InvoiceInput
	if !bindJSON(c, &in) {
		return
	}
	inv, err := h.invoiceService.Create(c.Request.Context(), a, in)
	if err != nil {
		responses.Error(c, err, "Failed to create invoice")
		return
	}
	responses.Success(c, http.StatusCreated, inv, "Invoice created successfully")
}

// ListInvoices handles GET /api/v1/invoices?patient_id=&status=
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	patientID, ok := queryUUID(c, "patient_id")
	if !ok {
		return
	}
	list, err := h.invoiceService.List(c.Request.Context(), a, patientID, c.Query("status"))
	if err != nil {
		responses.Error(c, err, "Failed to retrieve invoices")
		return
	}
	responses.Success(c, http.StatusOK, list, "Invoices retrieved successfully")
}

// GetInvoice handles GET /api/v1/invoices/:invoice_id
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "invoice_id")
	if !ok {
		return
	}
	inv, err := h.invoiceService.Get(c.Request.Context(), a, id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve invoice")
		return
	}
	responses.Success(c, http.StatusOK, inv, "Invoice retrieved successfully")
}

// SendInvoice handles POST /api/v1/invoices/:invoice_id/send
func (h *InvoiceHandler) SendInvoice(c *gin.Context) {
	h.setStatus(c, models.InvoiceSent, "Invoice sent")
}

// PayInvoice handles POST /api/v1/invoices/:invoice_id/pay
func (h *InvoiceHandler) PayInvoice(c *gin.Context) {
	h.setStatus(c, models.InvoicePaid, "Invoice marked as paid")
}

// VoidInvoice handles POST /api/v1/invoices/:invoice_id/void
func (h *InvoiceHandler) VoidInvoice(c *gin.Context) {
	h.setStatus(c, models.InvoiceVoid, "Invoice voided")
}

func (h *InvoiceHandler) setStatus(c *gin.Context, status, message string) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "invoice_id")
	if !ok {
		return
	}
	inv, err := h.invoiceService.SetStatus(c.Request.Context(), a, id, status)
	if err != nil {
		responses.Error(c, err, "Failed to update invoice")
		return
	}
	responses.Success(c, http.StatusOK, inv, message)
}

// ExportInvoices handles GET /api/v1/invoices/export?status=
func (h *InvoiceHandler) ExportInvoices(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	data, err := h.invoiceService.Workbook(c.Request.Context(), a, c.Query("status"))
	if err != nil {
		responses.Error(c, err, "Failed to export invoices")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	c.Data(http.StatusOK, services.XLSXContentType, data)
}
