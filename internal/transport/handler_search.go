package transport

import (
	"net/http"
	"time"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/observability"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/search"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

func handleSearch(provider *search.Provider, metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())
		query := r.URL.Query().Get("q")

		start := time.Now()
		resp, err := provider.Search(r.Context(), rctx, query)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		metrics.RecordSearch(time.Since(start), len(resp.Sources))
		WriteJSON(w, http.StatusOK, resp)
	}
}
