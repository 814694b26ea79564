package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/recoverly/backend/internal/domain/shared"
	"github.com/recoverly/backend/internal/interfaces/http/dto"
	"github.com/recoverly/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// asOfQueryLayout is the accepted format of the as_of query parameter
const asOfQueryLayout = "2006-01-02"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// tenantID extracts the tenant resolved by the tenant middleware
func tenantID(c *gin.Context) (uuid.UUID, bool) {
	id := middleware.GetTenantUUID(c)
	return id, id != uuid.Nil
}

// asOf parses the optional as_of query parameter, defaulting to now.
// Reports and interest accruals are computed against this date.
func asOf(c *gin.Context) (time.Time, error) {
	raw := c.Query("as_of")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(asOfQueryLayout, raw)
	if err != nil {
		return time.Time{}, errors.New("as_of must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

// pathID parses the :id path parameter as a UUID
func pathID(c *gin.Context) (uuid.UUID, error) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(req.ID)
}

// Success sends a 200 success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, message, middleware.GetRequestID(c)))
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, message, middleware.GetRequestID(c)))
}

// HandleError converts domain errors to HTTP responses. Unrecognized
// errors are reported as internal faults without leaking their message.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := middleware.GetRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		statusCode := dto.GetHTTPStatus(domainErr.Code)
		c.JSON(statusCode, dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
		return
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}
