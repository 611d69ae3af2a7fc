// Package errors carries typed application errors from the catalog and the
// remote recipe service out to the HTTP layers and the CLI.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode is the stable, machine-readable kind of an AppError
type ErrorCode string

const (
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS"

	CodeInternal            ErrorCode = "INTERNAL_ERROR"
	CodeServiceUnavailable  ErrorCode = "SERVICE_UNAVAILABLE"
	CodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	CodeInvalidCatalog      ErrorCode = "INVALID_CATALOG"

	CodeRecipeNotFound ErrorCode = "RECIPE_NOT_FOUND"
	CodeMealNotFound   ErrorCode = "MEAL_NOT_FOUND"
)

// codeInfo is the HTTP status and default user-facing message of a code.
type codeInfo struct {
	status  int
	message string
}

var codes = map[ErrorCode]codeInfo{
	CodeBadRequest:          {http.StatusBadRequest, "Bad request"},
	CodeNotFound:            {http.StatusNotFound, "Resource not found"},
	CodeValidationFailed:    {http.StatusBadRequest, "Validation failed"},
	CodeTooManyRequests:     {http.StatusTooManyRequests, "Too many requests"},
	CodeInternal:            {http.StatusInternalServerError, "An unexpected error occurred"},
	CodeServiceUnavailable:  {http.StatusServiceUnavailable, "Service unavailable"},
	CodeUpstreamUnavailable: {http.StatusBadGateway, "Failed to load recipes. Please try again later."},
	CodeInvalidCatalog:      {http.StatusInternalServerError, "Recipe catalog is invalid"},
	CodeRecipeNotFound:      {http.StatusNotFound, "Recipe not found"},
	CodeMealNotFound:        {http.StatusNotFound, "Recipe not found"},
}

// HTTPStatus maps the code to a response status; unknown codes are 500.
func (c ErrorCode) HTTPStatus() int {
	if info, ok := codes[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// AppError is an error with a code, a user-facing message and optional
// developer details.
type AppError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Details  string                 `json:"details,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Cause    error                  `json:"-"`
}

func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Details != "" {
		b.WriteString(" (")
		b.WriteString(e.Details)
		b.WriteString(")")
	}
	return b.String()
}

func (e *AppError) Unwrap() error { return e.Cause }

// StatusCode returns the HTTP status for the error
func (e *AppError) StatusCode() int { return e.Code.HTTPStatus() }

// WithMetadata attaches a key to the error's metadata
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{}, 1)
	}
	e.Metadata[key] = value
	return e
}

// WithCause records the underlying error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates an error; an empty message uses the code's default.
func NewAppError(code ErrorCode, message, details string) *AppError {
	if message == "" {
		message = codes[code].message
	}
	return &AppError{Code: code, Message: message, Details: details}
}

// NewValidationError reports bad request input
func NewValidationError(details string) *AppError {
	return NewAppError(CodeValidationFailed, "", details)
}

// NewNotFoundError reports a missing resource such as a route
func NewNotFoundError(resource string) *AppError {
	if resource == "" {
		return NewAppError(CodeNotFound, "", "")
	}
	return NewAppError(CodeNotFound, strings.ToUpper(resource[:1])+resource[1:]+" not found", "")
}

// NewInternalError reports an unexpected failure
func NewInternalError(message string) *AppError {
	return NewAppError(CodeInternal, message, "")
}

// NewUpstreamError reports a failed call to an external recipe source.
// The message is the one shown to users for every upstream failure.
func NewUpstreamError(service string, cause error) *AppError {
	return NewAppError(CodeUpstreamUnavailable, "", "failed to communicate with "+service).
		WithCause(cause).
		WithMetadata("service", service)
}

// NewInvalidCatalogError reports a catalog that failed to load or validate
func NewInvalidCatalogError(source string, cause error) *AppError {
	return NewAppError(CodeInvalidCatalog, "", "failed to load catalog from "+source).
		WithCause(cause).
		WithMetadata("source", source)
}

// NewRecipeNotFoundError reports an unknown static catalog id
func NewRecipeNotFoundError(recipeID string) *AppError {
	return NewAppError(CodeRecipeNotFound, "", fmt.Sprintf("no recipe with id %q", recipeID)).
		WithMetadata("recipe_id", recipeID)
}

// NewMealNotFoundError reports an unknown remote meal id
func NewMealNotFoundError(mealID string) *AppError {
	return NewAppError(CodeMealNotFound, "", fmt.Sprintf("no meal with id %q", mealID)).
		WithMetadata("meal_id", mealID)
}

// Wrap returns the AppError in err's chain, or an internal error with
// message wrapping err. Wrap(nil) is nil.
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}

// Is reports whether err's chain holds an AppError with code
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}

// GetCode returns the code of the AppError in err's chain, or CodeInternal
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ValidationError is one failed field of a catalog record or request
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Tag     string      `json:"tag"`
	Message string      `json:"message"`
}

// ValidationErrors collects every failed field
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(v))
	for i, e := range v {
		messages[i] = e.Message
	}
	return strings.Join(messages, "; ")
}

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails is the body of ErrorResponse
type ErrorDetails struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// ToErrorResponse renders err for an API client
func ToErrorResponse(err *AppError, requestID string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetails{
		Code:      err.Code,
		Message:   err.Message,
		Details:   err.Details,
		Metadata:  err.Metadata,
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}}
}
