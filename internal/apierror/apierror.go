// Package apierror provides the error bodies returned by the API.
// Every 4xx/5xx response goes through it so internal details (DB errors,
// stack traces) never reach the client.
package apierror

// Messages shared by several handlers.
const (
	MsgInternal   = "Eroare internă a serverului"
	MsgValidation = "Eroare de validare"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Internal is the 500 body; the request id lets the cashier quote the failure.
func Internal(requestID string) *APIError {
	return &APIError{Detail: MsgInternal, RequestID: requestID}
}

// ValidationError wraps per-field validation failures.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: MsgValidation, Fields: fields}
}
