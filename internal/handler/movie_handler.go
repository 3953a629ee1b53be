package handler

import (
	"net/http"

	"go-watchlist/internal/service"
)

type MovieHandler struct {
	movies *service.MovieService
}

func NewMovieHandler(movies *service.MovieService) *MovieHandler {
	return &MovieHandler{movies: movies}
}

func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}

	query := r.URL.Query()
	results, err := h.movies.Search(r.Context(), query.Get("query"), parseIntOrDefault(query.Get("page"), 1))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, results, nil)
}
