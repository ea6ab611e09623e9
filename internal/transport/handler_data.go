package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/render"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/store"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// maxBodyBytes caps request bodies on write endpoints.
const maxBodyBytes = 1 << 20

func handleComponentData(data *render.DataProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())
		pageID := chi.URLParam(r, "pageID")
		componentID := chi.URLParam(r, "componentID")

		params, err := listParamsFromQuery(r)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		payload, err := data.ComponentData(r.Context(), rctx, pageID, componentID, params)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, payload)
	}
}

func handleComponentSubmit(data *render.DataProvider, idem IdempotencyStore, idemTTL time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())
		pageID := chi.URLParam(r, "pageID")
		componentID := chi.URLParam(r, "componentID")

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			WriteError(w, r, model.NewBadRequestError("could not read request body"))
			return
		}

		var idemKey, inputHash string
		if idem != nil {
			if key := r.Header.Get("X-Idempotency-Key"); key != "" {
				idemKey = FormatIdempotencyKey(pageID, componentID, key)
				inputHash = hashInput(body)
				cached, found, err := idem.Check(r.Context(), idemKey, inputHash)
				if err != nil {
					WriteError(w, r, err)
					return
				}
				if found {
					w.Header().Set("X-Idempotency-Replayed", "true")
					w.Header().Set("Content-Type", "application/json; charset=utf-8")
					w.WriteHeader(cached.Status)
					w.Write(cached.Body)
					return
				}
			}
		}

		var payload render.SubmitPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			WriteError(w, r, model.NewBadRequestError("request body must be valid JSON"))
			return
		}

		record, err := data.Submit(r.Context(), rctx, pageID, componentID, payload)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		if idemKey != "" {
			if encoded, err := json.Marshal(record); err == nil {
				idem.Store(r.Context(), idemKey, inputHash,
					CachedResponse{Status: http.StatusOK, Body: encoded}, idemTTL)
			}
		}
		WriteJSON(w, http.StatusOK, record)
	}
}

// listParamsFromQuery parses the filter/search/sort/pagination tuple from
// query parameters. The filter parameter holds a JSON object; q holds a text
// search (the consumer decides which fields it scans); sort and order select
// ordering; page and perPage select a slice. Absent parameters stay nil so
// the unfiltered fast path is preserved.
func listParamsFromQuery(r *http.Request) (store.ListParams, error) {
	q := r.URL.Query()
	var params store.ListParams

	if raw := q.Get("filter"); raw != "" {
		var filter map[string]any
		if err := json.Unmarshal([]byte(raw), &filter); err != nil {
			return store.ListParams{}, model.NewBadRequestError("filter must be a JSON object")
		}
		params.Filter = filter
	}

	if query := strings.TrimSpace(q.Get("q")); query != "" {
		params.Search = &store.Search{Query: query}
	}

	if field := q.Get("sort"); field != "" {
		order := q.Get("order")
		if order == "" {
			order = "ASC"
		}
		params.Sort = &store.Sort{Field: field, Order: order}
	}

	if q.Get("page") != "" || q.Get("perPage") != "" {
		params.Pagination = &store.Pagination{
			Page:    queryInt(r, "page", 1),
			PerPage: queryInt(r, "perPage", 10),
		}
	}

	return params, nil
}

// queryInt extracts an integer query param with a default.
func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
