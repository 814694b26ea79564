package handler

import (
	ledgerapp "github.com/recoverly/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// ReceiptHandler handles receipt voucher API endpoints
type ReceiptHandler struct {
	BaseHandler
	ledgerService *ledgerapp.LedgerService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(ledgerService *ledgerapp.LedgerService) *ReceiptHandler {
	return &ReceiptHandler{ledgerService: ledgerService}
}

// Create handles POST /receipts
func (h *ReceiptHandler) Create(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	var req ledgerapp.CreateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.ledgerService.CreateReceipt(c.Request.Context(), tenant, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /receipts with an optional customer_id filter
func (h *ReceiptHandler) List(c *gin.Context) {
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

	resp, err := h.ledgerService.ListReceipts(c.Request.Context(), tenant, ledgerapp.ReceiptListFilter{CustomerID: customerID})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /receipts/:id
func (h *ReceiptHandler) Update(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}
	id, err := pathID(c)
	if err != nil {
		h.BadRequest(c, "Invalid receipt ID")
		return
	}

	var req ledgerapp.UpdateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.ledgerService.UpdateReceipt(c.Request.Context(), tenant, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /receipts/:id
func (h *ReceiptHandler) Delete(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}
	id, err := pathID(c)
	if err != nil {
		h.BadRequest(c, "Invalid receipt ID")
		return
	}

	if err := h.ledgerService.DeleteReceipt(c.Request.Context(), tenant, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
