package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"fiscora/internal/core"
	applog "fiscora/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a new builder with 200 OK as the default status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body. A nil body writes none.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

type errorBody struct {
	Error string `json:"error"`
}

// validationBody is the 422 payload: one message per failed field.
type validationBody struct {
	Valid  bool             `json:"valid"`
	Errors core.FieldErrors `json:"errors"`
}

// ErrorResponse creates a standard {"error": message} response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// ValidationError creates the 422 response listing each invalid field.
func ValidationError(errs core.ValidationErrors) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusUnprocessableEntity).
		Body(validationBody{Valid: false, Errors: errs.Fields()})
}

// ErrorFor maps a service error onto its response. Only unexpected errors
// are logged; their text never reaches the client.
func ErrorFor(ctx context.Context, err error) *JSONResponseBuilder {
	var ve core.ValidationErrors
	switch {
	case errors.As(err, &ve):
		return ValidationError(ve)
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError("not found")
	case errors.Is(err, core.ErrUnauthorized):
		return ErrorResponse(http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, core.ErrInvalidMonth), errors.Is(err, core.ErrInvalidYear):
		return BadRequestError(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		applog.FromContext(ctx).WarnContext(ctx, "Request timed out", applog.FieldError, err.Error())
		return ErrorResponse(http.StatusGatewayTimeout, "upstream timeout")
	}
	applog.FromContext(ctx).ErrorContext(ctx, "Request failed", applog.FieldError, err.Error())
	return InternalServerError("internal error")
}
