package handler

import (
	partnerapp "github.com/recoverly/backend/internal/application/partner"
	"github.com/gin-gonic/gin"
)

// CustomerHandler handles customer master API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *partnerapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *partnerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// Create handles POST /customers
func (h *CustomerHandler) Create(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	var req partnerapp.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.customerService.Create(c.Request.Context(), tenant, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /customers
func (h *CustomerHandler) List(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	resp, err := h.customerService.List(c.Request.Context(), tenant)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByID handles GET /customers/:id
func (h *CustomerHandler) GetByID(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}
	id, err := pathID(c)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	resp, err := h.customerService.GetByID(c.Request.Context(), tenant, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}
	id, err := pathID(c)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	var req partnerapp.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.customerService.Update(c.Request.Context(), tenant, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /customers/:id
func (h *CustomerHandler) Delete(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}
	id, err := pathID(c)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	if err := h.customerService.Delete(c.Request.Context(), tenant, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
