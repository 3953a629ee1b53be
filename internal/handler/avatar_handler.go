package handler

import (
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"go-watchlist/internal/service"
	"go-watchlist/pkg/apierror"
)

type AvatarHandler struct {
	avatars *service.AvatarService
}

func NewAvatarHandler(avatars *service.AvatarService) *AvatarHandler {
	return &AvatarHandler{avatars: avatars}
}

func (h *AvatarHandler) Serve(w http.ResponseWriter, r *http.Request) {
	file, err := h.avatars.Open(chi.URLParam(r, "file"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, r, apierror.NotFound("AVATAR_NOT_FOUND", "Avatar not found"))
			return
		}
		writeError(w, r, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if info.IsDir() {
		writeError(w, r, apierror.NotFound("AVATAR_NOT_FOUND", "Avatar not found"))
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=300")
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}
