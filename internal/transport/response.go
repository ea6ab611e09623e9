// Package transport implements the HTTP surface of the runtime: routing,
// authentication, request context construction, and response encoding.
package transport

import (
	"encoding/json"
	"net/http"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/observability"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// statusForCode maps error envelope codes to HTTP status codes.
var statusForCode = map[string]int{
	model.ErrBadRequest:           http.StatusBadRequest,
	model.ErrUnauthorized:         http.StatusUnauthorized,
	model.ErrForbidden:            http.StatusForbidden,
	model.ErrNotFound:             http.StatusNotFound,
	model.ErrResourceNotFound:     http.StatusNotFound,
	model.ErrRecordNotFound:       http.StatusNotFound,
	model.ErrConflict:             http.StatusConflict,
	model.ErrValidationError:      http.StatusUnprocessableEntity,
	model.ErrUnsupportedAggregate: http.StatusBadRequest,
	model.ErrWizardNotFound:       http.StatusNotFound,
	model.ErrWizardNotActive:      http.StatusConflict,
	model.ErrWizardStepOrder:      http.StatusUnprocessableEntity,
	model.ErrConfigUnavailable:    http.StatusServiceUnavailable,
	model.ErrInternalError:        http.StatusInternalServerError,
}

// errorResponse wraps an error envelope in the standard {"error": ...} shape.
type errorResponse struct {
	Error *model.ErrorEnvelope `json:"error"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// WriteError writes an error response. If err is an *model.ErrorEnvelope the
// mapped status and envelope are used; anything else becomes a generic 500.
// The trace id (or, failing that, the correlation id) is stamped onto the
// envelope so clients can quote it in bug reports.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	ee, ok := err.(*model.ErrorEnvelope)
	if !ok {
		ee = model.NewInternalError()
	}

	if ee.TraceID == "" {
		ee.TraceID = observability.TraceIDFromContext(r.Context())
	}
	if ee.TraceID == "" {
		ee.TraceID = CorrelationIDFrom(r.Context())
	}

	status, ok := statusForCode[ee.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	WriteJSON(w, status, errorResponse{Error: ee})
}
