package transport

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/appconfig"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/permission"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/render"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/store"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// resourceHandlers serves the raw record API underneath the page layer. Every
// operation re-checks the caller's role against the resource's permission
// block.
type resourceHandlers struct {
	registry *appconfig.Registry
	gate     *permission.Gate
	records  store.Store
	data     *render.DataProvider
}

// authorize resolves the resource and checks the action. Unknown resources
// are reported as such before any permission verdict.
func (h *resourceHandlers) authorize(r *http.Request, action string) (string, error) {
	rctx := model.MustRequestContext(r.Context())
	resource := chi.URLParam(r, "resource")

	if _, ok := h.registry.GetResource(resource); !ok {
		return "", model.NewResourceNotFoundError(resource)
	}
	if !h.gate.Can(rctx.Role, resource, action) {
		return "", model.NewForbiddenError(
			fmt.Sprintf("role %q cannot %s %q records", rctx.Role, action, resource),
		)
	}
	return resource, nil
}

func (h *resourceHandlers) list(w http.ResponseWriter, r *http.Request) {
	resource, err := h.authorize(r, "view")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	params, err := listParamsFromQuery(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	result, err := h.records.GetList(r.Context(), resource, params)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func (h *resourceHandlers) getOne(w http.ResponseWriter, r *http.Request) {
	resource, err := h.authorize(r, "view")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	record, err := h.records.GetOne(r.Context(), resource, chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, record)
}

func (h *resourceHandlers) create(w http.ResponseWriter, r *http.Request) {
	resource, err := h.authorize(r, "create")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var data model.Record
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&data); err != nil {
		WriteError(w, r, model.NewBadRequestError("request body must be a JSON object"))
		return
	}
	record, err := h.records.Create(r.Context(), resource, data)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, record)
}

func (h *resourceHandlers) update(w http.ResponseWriter, r *http.Request) {
	resource, err := h.authorize(r, "edit")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var data model.Record
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&data); err != nil {
		WriteError(w, r, model.NewBadRequestError("request body must be a JSON object"))
		return
	}
	record, err := h.records.Update(r.Context(), resource, chi.URLParam(r, "id"), data)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, record)
}

func (h *resourceHandlers) delete(w http.ResponseWriter, r *http.Request) {
	resource, err := h.authorize(r, "delete")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	record, err := h.records.Delete(r.Context(), resource, chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, record)
}

// aggregateResponse is the payload of the aggregate endpoint. Value is null
// when the reduction has no numeric result (min/max over an empty set).
type aggregateResponse struct {
	Field string `json:"field"`
	Fn    string `json:"fn"`
	Value any    `json:"value"`
}

func (h *resourceHandlers) aggregate(w http.ResponseWriter, r *http.Request) {
	resource, err := h.authorize(r, "view")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	q := r.URL.Query()
	params := store.AggregateParams{
		Field: q.Get("field"),
		Fn:    q.Get("fn"),
	}
	if raw := q.Get("filter"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params.Filter); err != nil {
			WriteError(w, r, model.NewBadRequestError("filter must be a JSON object"))
			return
		}
	}

	value, err := h.records.Aggregate(r.Context(), resource, params)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	resp := aggregateResponse{Field: params.Field, Fn: params.Fn}
	if !math.IsInf(value, 0) && !math.IsNaN(value) {
		resp.Value = value
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (h *resourceHandlers) options(w http.ResponseWriter, r *http.Request) {
	rctx := model.MustRequestContext(r.Context())
	resource := chi.URLParam(r, "resource")
	if _, ok := h.registry.GetResource(resource); !ok {
		WriteError(w, r, model.NewResourceNotFoundError(resource))
		return
	}

	q := r.URL.Query()
	ref := model.ReferenceDef{
		Resource:     resource,
		DisplayField: q.Get("display_field"),
		ValueField:   q.Get("value_field"),
	}
	if ref.DisplayField == "" {
		WriteError(w, r, model.NewBadRequestError("display_field is required"))
		return
	}
	if ref.ValueField == "" {
		ref.ValueField = "id"
	}

	opts, err := h.data.Options(r.Context(), rctx, ref)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, opts)
}
