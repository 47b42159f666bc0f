package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"sales-analytics/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidGranularity, http.StatusBadRequest},
		{CodeInvalidDate, http.StatusBadRequest},
		{CodeInvalidDateRange, http.StatusBadRequest},
		{CodeInvalidLimit, http.StatusBadRequest},
		{CodeInvalidOffset, http.StatusBadRequest},
		{CodeMissingParams, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{CodeRateLimit, http.StatusTooManyRequests},
		{CodeServiceUnavail, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := New(tt.code, "x").StatusCode; got != tt.want {
				t.Errorf("status for %s = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := InternalWrap(cause, "query failed")

	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}
	if err.Error() != "INTERNAL_ERROR: query failed (caused by: connection refused)" {
		t.Errorf("unexpected Error(): %q", err.Error())
	}
}

func TestWriteError_AppError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, discardLogger(), Invalid(CodeInvalidLimit, "limit", "limit must be between 1 and 100"), "req-1")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q", ct)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["success"] != false {
		t.Error("expected success=false")
	}
	errBody := body["error"].(map[string]any)
	if errBody["code"] != "INVALID_LIMIT" {
		t.Errorf("code = %v", errBody["code"])
	}
	if errBody["field"] != "limit" {
		t.Errorf("field = %v", errBody["field"])
	}
	if errBody["request_id"] != "req-1" {
		t.Errorf("request_id = %v", errBody["request_id"])
	}
}

func TestWriteError_PlainErrorHidesDetail(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, discardLogger(), fmt.Errorf("pq: password authentication failed"), "")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	var body ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != CodeInternal {
		t.Errorf("code = %s, want INTERNAL_ERROR", body.Error.Code)
	}
	if body.Error.Message != "An unexpected error occurred" {
		t.Errorf("message leaked detail: %q", body.Error.Message)
	}
}

func TestWriteError_DoesNotMutateShared(t *testing.T) {
	shared := NotFound("Route not found")
	WriteError(httptest.NewRecorder(), discardLogger(), shared, "abc")

	if shared.RequestID != "" {
		t.Error("WriteError should not stamp the request id on the caller's error")
	}
}

func TestWriteSuccessWithMeta(t *testing.T) {
	w := httptest.NewRecorder()
	limit := 5
	WriteSuccessWithMeta(w, []int{1, 2}, &models.Meta{Total: 2, Limit: &limit, Period: &models.Period{Start: "2024-01-01", End: ""}})

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["success"] != true {
		t.Error("expected success=true")
	}
	meta := body["meta"].(map[string]any)
	if meta["total"] != float64(2) || meta["limit"] != float64(5) {
		t.Errorf("unexpected meta: %v", meta)
	}
	if _, ok := meta["offset"]; ok {
		t.Error("offset should be omitted when unset")
	}
	period := meta["period"].(map[string]any)
	if period["start"] != "2024-01-01" || period["end"] != "" {
		t.Errorf("unexpected period: %v", period)
	}
}

func TestWriteSuccess_NoMeta(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"status": "ok"})

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body["meta"]; ok {
		t.Error("meta should be omitted")
	}
}

func TestWriteError_WrappedAppError(t *testing.T) {
	w := httptest.NewRecorder()
	err := fmt.Errorf("timeseries report: %w", ServiceUnavailable("Database is unreachable"))
	WriteError(w, discardLogger(), err, "")

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}

	var body ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != CodeServiceUnavail {
		t.Errorf("code = %s", body.Error.Code)
	}
}
