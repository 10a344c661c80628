// Package apierror defines the JSON error envelopes returned by every
// endpoint. Handlers never serialize raw errors: internal messages (SQL,
// driver, panic traces) stay out of responses.
package apierror

// APIError carries a single human-readable message, FastAPI-style
// ({"detail": ...}), which the mostrador frontend expects.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError adds a per-field breakdown for 422 responses.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
