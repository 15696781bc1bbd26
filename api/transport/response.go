package transport

import (
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/fastygo/taskboard/domain"
)

const internalErrorMessage = "internal error"

// Envelope is the standard wrapper for error payloads and service endpoints such as /health.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// ErrorMeta accompanies every error envelope.
type ErrorMeta struct {
	RequestID string            `json:"request_id,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// HealthReport is the payload of /health.
type HealthReport struct {
	Timestamp time.Time       `json:"timestamp"`
	Services  map[string]bool `json:"services"`
	LastCheck time.Time       `json:"last_check"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// StatusOf maps err to its HTTP status and error code. Errors that are not domain errors
// are internal. Duplicates are reported as 400, like other validation failures.
func StatusOf(err error) (int, domain.ErrorCode) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, domain.ErrCodeUnauthorized
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, domain.ErrCodeForbidden
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, domain.ErrCodeInvalid
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusBadRequest, domain.ErrCodeConflict
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, domain.ErrCodeNotFound
	default:
		return http.StatusInternalServerError, domain.ErrCodeInternal
	}
}

// ErrorFrom builds the status and envelope answering err. Internal details and wrapped
// causes are masked.
func ErrorFrom(err error, requestID string) (int, Envelope) {
	status, code := StatusOf(err)
	message := internalErrorMessage
	if status != http.StatusInternalServerError {
		message = domain.MessageOf(err)
	}
	meta := ErrorMeta{RequestID: requestID, Fields: domain.FieldsOf(err)}
	return status, NewError(string(code), message, meta)
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := sonic.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
