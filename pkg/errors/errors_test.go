package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "resource not found",
			},
			expected: "NOT_FOUND: resource not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	unwrapped := errors.Unwrap(appErr)
	if unwrapped != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)
	details := map[string]any{
		"field": "gst_columns",
		"error": "must not be empty",
	}

	err = err.WithDetails(details)

	if err.Details["field"] != "gst_columns" {
		t.Errorf("expected field 'gst_columns', got %v", err.Details["field"])
	}
	if err.Details["error"] != "must not be empty" {
		t.Errorf("expected error 'must not be empty', got %v", err.Details["error"])
	}
}

func TestConstructors(t *testing.T) {
	cause := errors.New("server selection error")

	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
		wantMsg    string
	}{
		{"not found", NotFound("Upload"), CodeNotFound, http.StatusNotFound, "Upload not found"},
		{"not found with id", NotFoundWithID("Reconciliation result", "r1"), CodeNotFound, http.StatusNotFound, "Reconciliation result not found"},
		{"validation", Validation("no valid column mappings", nil), CodeValidation, http.StatusUnprocessableEntity, "no valid column mappings"},
		{"invalid input", InvalidInput("gst_file is required"), CodeInvalidInput, http.StatusBadRequest, "gst_file is required"},
		{"internal", Internal("failed to store result", cause), CodeInternal, http.StatusInternalServerError, "failed to store result"},
		{"timeout", Timeout("reconciliation timed out"), CodeTimeout, http.StatusGatewayTimeout, "reconciliation timed out"},
		{"unavailable", Unavailable("MongoDB"), CodeUnavailable, http.StatusServiceUnavailable, "MongoDB is temporarily unavailable"},
		{"too large", TooLarge("upload exceeds 32 MB"), CodeTooLarge, http.StatusRequestEntityTooLarge, "upload exceeds 32 MB"},
		{"conflict", Conflict("request still in progress"), CodeConflict, http.StatusConflict, "request still in progress"},
		{"rate limited", RateLimited(), CodeRateLimited, http.StatusTooManyRequests, "Rate limit exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
			if tt.err.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", tt.err.Message, tt.wantMsg)
			}
		})
	}
}

func TestNotFoundWithID_Details(t *testing.T) {
	err := NotFoundWithID("Upload", "65f1c0de")

	if err.Details["id"] != "65f1c0de" || err.Details["resource"] != "Upload" {
		t.Errorf("details = %v", err.Details)
	}
}

func TestInternal_KeepsCause(t *testing.T) {
	cause := errors.New("write concern timeout")

	if err := Internal("failed to store result", cause); !errors.Is(err, cause) {
		t.Errorf("Internal() should wrap its cause")
	}
}

func TestIsAppError(t *testing.T) {
	appErr := NotFound("Upload")
	regularErr := errors.New("regular error")

	if !IsAppError(appErr) {
		t.Errorf("IsAppError() should return true for AppError")
	}
	if IsAppError(regularErr) {
		t.Errorf("IsAppError() should return false for regular error")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Upload")
	regularErr := errors.New("regular error")

	result := AsAppError(appErr)
	if result != appErr {
		t.Errorf("AsAppError() should return same AppError")
	}

	result = AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should wrap the original error")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	err := NotFoundWithID("Upload", "12345")
	data := err.ToJSON()

	if len(data) == 0 {
		t.Errorf("ToJSON() should return non-empty JSON")
	}

	jsonStr := string(data)
	if !strings.Contains(jsonStr, "NOT_FOUND") {
		t.Errorf("ToJSON() should contain error code")
	}
	if !strings.Contains(jsonStr, "not found") {
		t.Errorf("ToJSON() should contain error message")
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	appErr := NotFoundWithID("Reconciliation result", "abc")
	wrapped := fmt.Errorf("get result: %w", appErr)

	if !IsAppError(wrapped) {
		t.Fatalf("IsAppError() should see an AppError through %%w")
	}
	if got := AsAppError(wrapped); got != appErr {
		t.Errorf("AsAppError() = %v, want the wrapped AppError", got)
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	err := Validation("request validation failed", map[string]any{"partial_threshold": "must be at least 1"})

	if writeErr := WriteError(rec, err); writeErr != nil {
		t.Fatalf("WriteError() returned %v", writeErr)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body ErrorResponse
	if decodeErr := json.NewDecoder(rec.Body).Decode(&body); decodeErr != nil {
		t.Fatalf("decode body: %v", decodeErr)
	}
	if body.Code != CodeValidation {
		t.Errorf("code = %s, want %s", body.Code, CodeValidation)
	}
	if body.Details["partial_threshold"] != "must be at least 1" {
		t.Errorf("details = %v", body.Details)
	}
}

func TestWriteError_PlainErrorHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()

	_ = WriteError(rec, errors.New("mongo: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Errorf("internal cause leaked into response: %s", rec.Body.String())
	}
}
