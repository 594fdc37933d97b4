// Package errors provides a unified, structured error taxonomy for the
// pipeline.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code.
type ErrorCode string

const (
	// Validation errors (1xxx)
	ErrCodeInvalidInput     ErrorCode = "VAL_1001"
	ErrCodeMissingParameter ErrorCode = "VAL_1002"
	ErrCodeInvalidFormat    ErrorCode = "VAL_1003"
	ErrCodeOutOfRange       ErrorCode = "VAL_1004"

	// Resource errors (2xxx)
	ErrCodeNotFound      ErrorCode = "RES_2001"
	ErrCodeAlreadyExists ErrorCode = "RES_2002"
	ErrCodeConflict      ErrorCode = "RES_2003"

	// Service errors (3xxx)
	ErrCodeInternal          ErrorCode = "SVC_3001"
	ErrCodeStorageError      ErrorCode = "SVC_3002"
	ErrCodeExternalAPI       ErrorCode = "SVC_3003"
	ErrCodeTimeout           ErrorCode = "SVC_3004"
	ErrCodeRateLimitExceeded ErrorCode = "SVC_3005"

	// Scraping / extraction errors (4xxx)
	ErrCodeBlocked           ErrorCode = "SCRAPE_4001"
	ErrCodeExtractionFailed  ErrorCode = "SCRAPE_4002"
	ErrCodeUnsupportedURL    ErrorCode = "SCRAPE_4003"
	ErrCodeCircuitOpen       ErrorCode = "SCRAPE_4004"

	// Signal / intelligence errors (5xxx)
	ErrCodeInsufficientData ErrorCode = "SIGNAL_5001"
	ErrCodeCalculationFailed ErrorCode = "SIGNAL_5002"

	// Arbitrage / currency errors (6xxx)
	ErrCodeCurrencyUnavailable ErrorCode = "FX_6001"
	ErrCodeUnprofitable        ErrorCode = "FX_6002"

	// Alert errors (7xxx)
	ErrCodeUnknownTrigger ErrorCode = "ALERT_7001"
	ErrCodeUnknownChannel ErrorCode = "ALERT_7002"
	ErrCodeDeliveryFailed ErrorCode = "ALERT_7003"
)

// ServiceError represents a structured error with code, message, and HTTP status.
type ServiceError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	HTTPStatus int                    `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Err        error                  `json:"-"`
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// WithDetails adds additional context to the error.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new ServiceError.
func New(code ErrorCode, message string, httpStatus int) *ServiceError {
	return &ServiceError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an existing error with a ServiceError.
func Wrap(code ErrorCode, message string, httpStatus int, err error) *ServiceError {
	return &ServiceError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Validation errors

func InvalidInput(field, reason string) *ServiceError {
	return New(ErrCodeInvalidInput, "invalid input", http.StatusBadRequest).
		WithDetails("field", field).
		WithDetails("reason", reason)
}

func MissingParameter(param string) *ServiceError {
	return New(ErrCodeMissingParameter, "missing required parameter", http.StatusBadRequest).
		WithDetails("parameter", param)
}

func InvalidFormat(field, expected string) *ServiceError {
	return New(ErrCodeInvalidFormat, "invalid format", http.StatusBadRequest).
		WithDetails("field", field).
		WithDetails("expected", expected)
}

func OutOfRange(field string, minValue, maxValue interface{}) *ServiceError {
	return New(ErrCodeOutOfRange, "value out of range", http.StatusBadRequest).
		WithDetails("field", field).
		WithDetails("min", minValue).
		WithDetails("max", maxValue)
}

// Resource errors

func NotFound(resource, id string) *ServiceError {
	return New(ErrCodeNotFound, "resource not found", http.StatusNotFound).
		WithDetails("resource", resource).
		WithDetails("id", id)
}

func AlreadyExists(resource, id string) *ServiceError {
	return New(ErrCodeAlreadyExists, "resource already exists", http.StatusConflict).
		WithDetails("resource", resource).
		WithDetails("id", id)
}

func Conflict(message string) *ServiceError {
	return New(ErrCodeConflict, message, http.StatusConflict)
}

// Service errors

func Internal(message string, err error) *ServiceError {
	return Wrap(ErrCodeInternal, message, http.StatusInternalServerError, err)
}

func StorageError(operation string, err error) *ServiceError {
	return Wrap(ErrCodeStorageError, "storage operation failed", http.StatusInternalServerError, err).
		WithDetails("operation", operation)
}

func ExternalAPIError(service string, err error) *ServiceError {
	return Wrap(ErrCodeExternalAPI, "external API call failed", http.StatusBadGateway, err).
		WithDetails("service", service)
}

func Timeout(operation string) *ServiceError {
	return New(ErrCodeTimeout, "operation timed out", http.StatusGatewayTimeout).
		WithDetails("operation", operation)
}

func RateLimitExceeded(limit int, window string) *ServiceError {
	return New(ErrCodeRateLimitExceeded, "rate limit exceeded", http.StatusTooManyRequests).
		WithDetails("limit", limit).
		WithDetails("window", window)
}

// Scraping / extraction errors

func Blocked(platform, url string) *ServiceError {
	return New(ErrCodeBlocked, "request blocked by anti-bot defenses", http.StatusTooManyRequests).
		WithDetails("platform", platform).
		WithDetails("url", url)
}

func ExtractionFailed(platform, field string, err error) *ServiceError {
	return Wrap(ErrCodeExtractionFailed, "field extraction failed", http.StatusUnprocessableEntity, err).
		WithDetails("platform", platform).
		WithDetails("field", field)
}

func UnsupportedURL(url string) *ServiceError {
	return New(ErrCodeUnsupportedURL, "url is not recognized by any extractor", http.StatusBadRequest).
		WithDetails("url", url)
}

func CircuitOpen(platform string) *ServiceError {
	return New(ErrCodeCircuitOpen, "circuit breaker open for platform", http.StatusServiceUnavailable).
		WithDetails("platform", platform)
}

// Signal / intelligence errors

func InsufficientData(signal string, have, want int) *ServiceError {
	return New(ErrCodeInsufficientData, "insufficient data points for signal", http.StatusUnprocessableEntity).
		WithDetails("signal", signal).
		WithDetails("have", have).
		WithDetails("want", want)
}

func CalculationFailed(signal string, err error) *ServiceError {
	return Wrap(ErrCodeCalculationFailed, "signal calculation failed", http.StatusInternalServerError, err).
		WithDetails("signal", signal)
}

// Arbitrage / currency errors

func CurrencyUnavailable(from, to string, err error) *ServiceError {
	return Wrap(ErrCodeCurrencyUnavailable, "currency conversion unavailable", http.StatusBadGateway, err).
		WithDetails("from", from).
		WithDetails("to", to)
}

func Unprofitable(marginPercent float64) *ServiceError {
	return New(ErrCodeUnprofitable, "opportunity does not clear minimum margin", http.StatusOK).
		WithDetails("margin_percent", marginPercent)
}

// Alert errors

func UnknownTrigger(alertType string) *ServiceError {
	return New(ErrCodeUnknownTrigger, "unknown alert trigger type", http.StatusBadRequest).
		WithDetails("alert_type", alertType)
}

func UnknownChannel(channelType string) *ServiceError {
	return New(ErrCodeUnknownChannel, "unknown notification channel type", http.StatusBadRequest).
		WithDetails("channel_type", channelType)
}

func DeliveryFailed(channelType string, err error) *ServiceError {
	return Wrap(ErrCodeDeliveryFailed, "notification delivery failed", http.StatusBadGateway, err).
		WithDetails("channel_type", channelType)
}

// Helper functions

// IsServiceError checks if an error is a ServiceError.
func IsServiceError(err error) bool {
	var serviceErr *ServiceError
	return errors.As(err, &serviceErr)
}

// GetServiceError extracts a ServiceError from an error chain.
func GetServiceError(err error) *ServiceError {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}
	return nil
}

// GetHTTPStatus returns the HTTP status code for an error.
func GetHTTPStatus(err error) int {
	if serviceErr := GetServiceError(err); serviceErr != nil {
		return serviceErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
