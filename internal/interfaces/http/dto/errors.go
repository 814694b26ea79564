package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
)

// Resource error codes
const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeCustomerNotFound = "CUSTOMER_NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeConflict         = "CONCURRENCY_CONFLICT"
	ErrCodeOptimisticLock   = "OPTIMISTIC_LOCK_ERROR"
)

// Auth error codes
const (
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeTenantMismatch = "TENANT_MISMATCH"
)

// Validation error codes raised by the domain layer
const (
	ErrCodeInvalidInput         = "INVALID_INPUT"
	ErrCodeInvalidAmount        = "INVALID_AMOUNT"
	ErrCodeInvalidClientName    = "INVALID_CLIENT_NAME"
	ErrCodeInvalidCreditLimit   = "INVALID_CREDIT_LIMIT"
	ErrCodeInvalidCustomer      = "INVALID_CUSTOMER"
	ErrCodeInvalidInvoiceDate   = "INVALID_INVOICE_DATE"
	ErrCodeInvalidInvoiceNumber = "INVALID_INVOICE_NUMBER"
	ErrCodeInvalidPaymentTerms  = "INVALID_PAYMENT_TERMS"
	ErrCodeInvalidReceiptDate   = "INVALID_RECEIPT_DATE"
	ErrCodeInvalidStatus        = "INVALID_STATUS"
	ErrCodeInvalidVoucherNumber = "INVALID_VOUCHER_NUMBER"
	ErrCodeInvalidVoucherType   = "INVALID_VOUCHER_TYPE"
)

// Business rule error codes
const (
	ErrCodeInvalidState = "INVALID_STATE"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeCustomerNotFound: http.StatusNotFound,
	ErrCodeAlreadyExists:    http.StatusConflict,
	ErrCodeConflict:         http.StatusConflict,
	ErrCodeOptimisticLock:   http.StatusConflict,

	ErrCodeUnauthorized:   http.StatusUnauthorized,
	ErrCodeTenantMismatch: http.StatusForbidden,

	ErrCodeInvalidInput:         http.StatusBadRequest,
	ErrCodeInvalidAmount:        http.StatusBadRequest,
	ErrCodeInvalidClientName:    http.StatusBadRequest,
	ErrCodeInvalidCreditLimit:   http.StatusBadRequest,
	ErrCodeInvalidCustomer:      http.StatusBadRequest,
	ErrCodeInvalidInvoiceDate:   http.StatusBadRequest,
	ErrCodeInvalidInvoiceNumber: http.StatusBadRequest,
	ErrCodeInvalidPaymentTerms:  http.StatusBadRequest,
	ErrCodeInvalidReceiptDate:   http.StatusBadRequest,
	ErrCodeInvalidStatus:        http.StatusBadRequest,
	ErrCodeInvalidVoucherNumber: http.StatusBadRequest,
	ErrCodeInvalidVoucherType:   http.StatusBadRequest,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// Unknown codes map to 422 so new domain rules surface as client errors
// rather than server faults.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
