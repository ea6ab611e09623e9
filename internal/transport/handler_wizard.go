package transport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/observability"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/wizard"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// wizardStepRequest is the body of advance, back, submit, and cancel calls.
// Version enables optimistic concurrency: zero means "don't check".
type wizardStepRequest struct {
	Values  model.Record `json:"values"`
	Version int          `json:"version"`
}

// wizardSubmitResponse pairs the written record with the final session state.
type wizardSubmitResponse struct {
	Record   model.Record         `json:"record"`
	Instance model.WizardInstance `json:"instance"`
}

type wizardHandlers struct {
	engine  *wizard.Engine
	metrics *observability.Metrics
}

func (h *wizardHandlers) start(w http.ResponseWriter, r *http.Request) {
	rctx := model.MustRequestContext(r.Context())
	pageID := chi.URLParam(r, "pageID")
	componentID := chi.URLParam(r, "componentID")

	inst, err := h.engine.Start(r.Context(), rctx, pageID, componentID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	h.metrics.RecordWizardStart(pageID)
	WriteJSON(w, http.StatusCreated, inst)
}

func (h *wizardHandlers) get(w http.ResponseWriter, r *http.Request) {
	rctx := model.MustRequestContext(r.Context())
	inst, err := h.engine.Get(r.Context(), rctx, chi.URLParam(r, "instanceID"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, inst)
}

func (h *wizardHandlers) advance(w http.ResponseWriter, r *http.Request) {
	rctx := model.MustRequestContext(r.Context())
	req, err := decodeStepRequest(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	inst, err := h.engine.Advance(r.Context(), rctx, chi.URLParam(r, "instanceID"), req.Values, req.Version)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	h.metrics.RecordWizardAdvance(inst.PageID, "forward")
	WriteJSON(w, http.StatusOK, inst)
}

func (h *wizardHandlers) back(w http.ResponseWriter, r *http.Request) {
	rctx := model.MustRequestContext(r.Context())
	req, err := decodeStepRequest(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	inst, err := h.engine.Back(r.Context(), rctx, chi.URLParam(r, "instanceID"), req.Values, req.Version)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	h.metrics.RecordWizardAdvance(inst.PageID, "back")
	WriteJSON(w, http.StatusOK, inst)
}

func (h *wizardHandlers) submit(w http.ResponseWriter, r *http.Request) {
	rctx := model.MustRequestContext(r.Context())
	req, err := decodeStepRequest(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	record, inst, err := h.engine.Submit(r.Context(), rctx, chi.URLParam(r, "instanceID"), req.Values, req.Version)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	h.metrics.RecordWizardCompletion(inst.PageID, inst.Status)
	WriteJSON(w, http.StatusOK, wizardSubmitResponse{Record: record, Instance: inst})
}

func (h *wizardHandlers) cancel(w http.ResponseWriter, r *http.Request) {
	rctx := model.MustRequestContext(r.Context())
	req, err := decodeStepRequest(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	inst, err := h.engine.Cancel(r.Context(), rctx, chi.URLParam(r, "instanceID"), req.Version)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	h.metrics.RecordWizardCompletion(inst.PageID, inst.Status)
	WriteJSON(w, http.StatusOK, inst)
}

// decodeStepRequest parses the request body, tolerating an empty body for
// calls that carry no values.
func decodeStepRequest(r *http.Request) (wizardStepRequest, error) {
	var req wizardStepRequest
	if r.Body == nil || r.ContentLength == 0 {
		return req, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, model.NewBadRequestError("request body must be valid JSON")
	}
	return req, nil
}
