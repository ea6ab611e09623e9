package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/render"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

func handleGetApp(pages *render.PageProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, pages.App())
	}
}

func handleGetNavigation(pages *render.PageProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())
		WriteJSON(w, http.StatusOK, pages.Navigation(rctx))
	}
}

func handleGetPage(pages *render.PageProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())
		pageID := chi.URLParam(r, "pageID")

		desc, err := pages.GetPage(r.Context(), rctx, pageID)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, desc)
	}
}

func handleGetComponent(pages *render.PageProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())
		pageID := chi.URLParam(r, "pageID")
		componentID := chi.URLParam(r, "componentID")

		desc, err := pages.GetComponent(r.Context(), rctx, pageID, componentID)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, desc)
	}
}
