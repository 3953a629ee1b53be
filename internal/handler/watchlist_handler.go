package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-watchlist/internal/model"
	"go-watchlist/internal/service"
)

type WatchlistHandler struct {
	watchlist *service.WatchlistService
}

func NewWatchlistHandler(watchlist *service.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{watchlist: watchlist}
}

func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	values := r.URL.Query()
	query := model.WatchlistQuery{
		Page:      parseIntOrDefault(values.Get("page"), 1),
		Limit:     parseIntOrDefault(values.Get("limit"), 0),
		Status:    strings.TrimSpace(values.Get("status")),
		MediaType: strings.TrimSpace(values.Get("mediaType")),
		Genres:    splitList(values.Get("genres")),
		SortBy:    strings.TrimSpace(values.Get("sortBy")),
		SortOrder: strings.TrimSpace(values.Get("sortOrder")),
	}

	entries, meta, err := h.watchlist.List(r.Context(), identity, query)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, entries, meta)
}

func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	defer r.Body.Close()

	var payload model.AddEntryRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	entry, err := h.watchlist.Add(r.Context(), identity, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, entry, nil)
}

func (h *WatchlistHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	defer r.Body.Close()

	var payload model.UpdateEntryRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	entry, err := h.watchlist.Update(r.Context(), identity, chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, entry, nil)
}

func (h *WatchlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	resp, err := h.watchlist.Remove(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp, nil)
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
