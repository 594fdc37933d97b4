package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestServiceErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := StorageError("create_product", cause)

	if !errors.Is(err, err) {
		t.Fatalf("expected self-identity via errors.Is")
	}
	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Fatalf("expected unwrap to return cause, got %v", unwrapped)
	}
}

func TestGetServiceErrorAndHTTPStatus(t *testing.T) {
	err := Blocked("amazon", "https://www.amazon.com/dp/B000")

	if !IsServiceError(err) {
		t.Fatalf("expected IsServiceError to be true")
	}
	svcErr := GetServiceError(err)
	if svcErr == nil {
		t.Fatalf("expected non-nil ServiceError")
	}
	if svcErr.Code != ErrCodeBlocked {
		t.Fatalf("expected code %s, got %s", ErrCodeBlocked, svcErr.Code)
	}
	if GetHTTPStatus(err) != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", GetHTTPStatus(err))
	}
}

func TestGetHTTPStatusForPlainError(t *testing.T) {
	plain := errors.New("not a service error")
	if GetHTTPStatus(plain) != http.StatusInternalServerError {
		t.Fatalf("expected 500 for plain error")
	}
}

func TestWithDetails(t *testing.T) {
	err := InvalidInput("price", "must be positive").WithDetails("value", -5)
	if err.Details["field"] != "price" {
		t.Fatalf("expected field detail to be preserved")
	}
	if err.Details["value"] != -5 {
		t.Fatalf("expected appended detail to be present")
	}
}

func TestInsufficientData(t *testing.T) {
	err := InsufficientData("demand", 1, 2)
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", err.HTTPStatus)
	}
	if err.Details["have"] != 1 || err.Details["want"] != 2 {
		t.Fatalf("expected have/want details to be recorded")
	}
}
