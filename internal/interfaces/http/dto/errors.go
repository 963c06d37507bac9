package dto

import (
	"net/http"
	"strings"
)

// Codes raised by the HTTP layer itself. Domain codes pass through unchanged.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
)

// Authentication codes
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeAccountInactive    = "ACCOUNT_INACTIVE"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "TOKEN_INVALID"
	ErrCodeTokenRevoked       = "TOKEN_REVOKED"
	ErrCodeTokenMissing       = "TOKEN_MISSING"
)

// Resource codes
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodePendingSaleNotFound = "PENDING_SALE_NOT_FOUND"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeTaxRateNotFound     = "TAX_RATE_NOT_FOUND"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeEmailTaken          = "EMAIL_TAKEN"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeDuplicateProduct    = "DUPLICATE_PRODUCT"
	ErrCodeCartEmpty           = "CART_EMPTY"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeInvalidUser         = "INVALID_USER"
	invalidCodePrefix          = "INVALID_"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRouteNotFound:   http.StatusNotFound,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeTokenMissing:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeAccountInactive:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodePendingSaleNotFound: http.StatusNotFound,
	ErrCodeProductNotFound:     http.StatusNotFound,
	ErrCodeTaxRateNotFound:     http.StatusNotFound,
	ErrCodeUserNotFound:        http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeEmailTaken:          http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeDuplicateProduct:  http.StatusBadRequest,
	ErrCodeCartEmpty:         http.StatusBadRequest,
	ErrCodeInvalidInput:      http.StatusBadRequest,
	ErrCodeInvalidUser:       http.StatusBadRequest,
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code. Unlisted
// INVALID_* codes are field-level input errors (400); anything else unknown
// is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, invalidCodePrefix) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
