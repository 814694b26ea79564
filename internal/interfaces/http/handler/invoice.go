package handler

import (
	ledgerapp "github.com/recoverly/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	ledgerService   *ledgerapp.LedgerService
	interestService *ledgerapp.InterestService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(ledgerService *ledgerapp.LedgerService, interestService *ledgerapp.InterestService) *InvoiceHandler {
	return &InvoiceHandler{
		ledgerService:   ledgerService,
		interestService: interestService,
	}
}

// customerIDQuery parses the optional customer_id query parameter
func customerIDQuery(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("customer_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	var req ledgerapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.ledgerService.CreateInvoice(c.Request.Context(), tenant, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /invoices with optional customer_id and status filters
func (h *InvoiceHandler) List(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	customerID, ok := customerIDQuery(c)
	if !ok {
		h.BadRequest(c, "customer_id must be a UUID")
		return
	}
	filter := ledgerapp.InvoiceListFilter{
		CustomerID: customerID,
		Status:     c.Query("status"),
	}

	resp, err := h.ledgerService.ListInvoices(c.Request.Context(), tenant, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByID handles GET /invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}
	id, err := pathID(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	resp, err := h.ledgerService.GetInvoice(c.Request.Context(), tenant, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}
	id, err := pathID(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req ledgerapp.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.ledgerService.UpdateInvoice(c.Request.Context(), tenant, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}
	id, err := pathID(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.ledgerService.DeleteInvoice(c.Request.Context(), tenant, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ImportRequest wraps the rows of a bulk invoice import
type ImportRequest struct {
	Rows []ledgerapp.ImportInvoiceRow `json:"rows" binding:"required"`
}

// Import handles POST /invoices/import
func (h *InvoiceHandler) Import(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	report, err := h.ledgerService.ImportInvoices(c.Request.Context(), tenant, req.Rows)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Interest handles GET /invoices/interest. It returns the overdue
// interest accrued per invoice as of the optional as_of date, filtered
// by customer_id when given.
func (h *InvoiceHandler) Interest(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	customerID, ok := customerIDQuery(c)
	if !ok {
		h.BadRequest(c, "customer_id must be a UUID")
		return
	}
	at, err := asOf(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.interestService.TenantInterest(c.Request.Context(), tenant, customerID, at)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
