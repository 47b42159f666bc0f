package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"
)

type ErrorCode string

const (
	CodeInternal           ErrorCode = "INTERNAL_ERROR"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeMethodNotAllowed   ErrorCode = "METHOD_NOT_ALLOWED"
	CodeRateLimit          ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeServiceUnavail     ErrorCode = "SERVICE_UNAVAILABLE"
	CodeInvalidGranularity ErrorCode = "INVALID_GRANULARITY"
	CodeInvalidDate        ErrorCode = "INVALID_DATE"
	CodeInvalidDateRange   ErrorCode = "INVALID_DATE_RANGE"
	CodeInvalidLimit       ErrorCode = "INVALID_LIMIT"
	CodeInvalidOffset      ErrorCode = "INVALID_OFFSET"
	CodeMissingParams      ErrorCode = "MISSING_PARAMS"
)

type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Field      string    `json:"field,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
	RequestID  string    `json:"request_id,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getStatusCode(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getStatusCode(code),
		Cause:      err,
	}
}

// Invalid builds a 400 error attributed to a single query parameter.
func Invalid(code ErrorCode, field, message string) *AppError {
	e := New(code, message)
	e.Field = field
	return e
}

func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

func InternalWrap(err error, message string) *AppError {
	return Wrap(err, CodeInternal, message)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

func MethodNotAllowed(message string) *AppError {
	return New(CodeMethodNotAllowed, message)
}

func RateLimit(message string) *AppError {
	return New(CodeRateLimit, message)
}

func ServiceUnavailable(message string) *AppError {
	return New(CodeServiceUnavail, message)
}

var statusByCode = map[ErrorCode]int{
	CodeInvalidGranularity: http.StatusBadRequest,
	CodeInvalidDate:        http.StatusBadRequest,
	CodeInvalidDateRange:   http.StatusBadRequest,
	CodeInvalidLimit:       http.StatusBadRequest,
	CodeInvalidOffset:      http.StatusBadRequest,
	CodeMissingParams:      http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeMethodNotAllowed:   http.StatusMethodNotAllowed,
	CodeRateLimit:          http.StatusTooManyRequests,
	CodeServiceUnavail:     http.StatusServiceUnavailable,
}

func getStatusCode(code ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *AppError `json:"error"`
}

// WriteError renders err as the failure envelope. An *AppError anywhere in
// the chain is used as is; anything else is reported as INTERNAL_ERROR and
// its text never reaches the client.
func WriteError(w http.ResponseWriter, logger *slog.Logger, err error, requestID string) {
	var appErr *AppError
	if target := (*AppError)(nil); stderrors.As(err, &target) {
		copied := *target
		appErr = &copied
	} else {
		appErr = InternalWrap(err, "An unexpected error occurred")
	}
	appErr.RequestID = requestID

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	if encodeErr := json.NewEncoder(w).Encode(ErrorResponse{Success: false, Error: appErr}); encodeErr != nil {
		logger.Error("failed to encode error response",
			"encode_error", encodeErr,
			"original_error", err,
			"request_id", requestID,
		)
		return
	}

	logErrorResponse(logger, appErr)
}

func logErrorResponse(logger *slog.Logger, appErr *AppError) {
	level := slog.LevelError
	if appErr.StatusCode < http.StatusInternalServerError {
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("error_code", string(appErr.Code)),
		slog.String("error_message", appErr.Message),
		slog.Int("status_code", appErr.StatusCode),
		slog.String("request_id", appErr.RequestID),
	}
	if appErr.Field != "" {
		attrs = append(attrs, slog.String("field", appErr.Field))
	}
	if appErr.Cause != nil {
		attrs = append(attrs, slog.String("cause", appErr.Cause.Error()))
	}

	logger.LogAttrs(context.Background(), level, "request failed", attrs...)
}
