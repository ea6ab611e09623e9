package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

func TestWriteError_statusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{model.NewBadRequestError("x"), http.StatusBadRequest},
		{model.NewUnauthorizedError("x"), http.StatusUnauthorized},
		{model.NewForbiddenError("x"), http.StatusForbidden},
		{model.NewNotFoundError("x"), http.StatusNotFound},
		{model.NewResourceNotFoundError("x"), http.StatusNotFound},
		{model.NewRecordNotFoundError("x", "y"), http.StatusNotFound},
		{model.NewWizardNotFoundError("x"), http.StatusNotFound},
		{model.NewConflictError("x"), http.StatusConflict},
		{model.NewWizardNotActiveError("x", "cancelled"), http.StatusConflict},
		{model.NewValidationError(nil), http.StatusUnprocessableEntity},
		{model.NewWizardStepOrderError("x"), http.StatusUnprocessableEntity},
		{model.NewUnsupportedAggregateError("median"), http.StatusBadRequest},
		{model.NewConfigUnavailableError(), http.StatusServiceUnavailable},
		{model.NewInternalError(), http.StatusInternalServerError},
	}

	for _, c := range cases {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/x", nil)
		WriteError(w, r, c.err)
		if w.Code != c.want {
			envErr := c.err.(*model.ErrorEnvelope)
			t.Errorf("%s: status = %d, want %d", envErr.Code, w.Code, c.want)
		}
	}
}

func TestWriteError_opaqueErrorBecomesInternal(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/x", nil)

	WriteError(w, r, errors.New("database exploded"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body struct {
		Error model.ErrorEnvelope `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body unmarshal: %v", err)
	}
	if body.Error.Code != model.ErrInternalError {
		t.Errorf("code = %s, want INTERNAL_ERROR", body.Error.Code)
	}
	if body.Error.Message == "database exploded" {
		t.Error("internal error detail leaked to the client")
	}
}

func TestWriteError_traceIDFallsBackToCorrelationID(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/x", nil)
	r = r.WithContext(context.WithValue(r.Context(), correlationIDKey{}, "corr-42"))

	WriteError(w, r, model.NewNotFoundError("x"))

	var body struct {
		Error model.ErrorEnvelope `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body unmarshal: %v", err)
	}
	if body.Error.TraceID != "corr-42" {
		t.Errorf("trace_id = %q, want corr-42", body.Error.TraceID)
	}
}

func TestWriteJSON_headers(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSON(w, http.StatusCreated, map[string]string{"ok": "yes"})

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}
