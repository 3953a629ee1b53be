package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-watchlist/internal/model"
	"go-watchlist/internal/service"
	"go-watchlist/pkg/apierror"
)

const avatarFormField = "avatar"

type AuthHandler struct {
	auth          *service.AuthService
	passwords     *service.PasswordService
	avatars       *service.AvatarService
	maxAvatarSize int64
}

func NewAuthHandler(auth *service.AuthService, passwords *service.PasswordService, avatars *service.AvatarService, maxAvatarSize int64) *AuthHandler {
	return &AuthHandler{auth: auth, passwords: passwords, avatars: avatars, maxAvatarSize: maxAvatarSize}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.auth.Login(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp, nil)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RegisterRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.auth.Register(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp, nil)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.ForgotPasswordRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.passwords.ForgotPassword(r.Context(), payload.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp, nil)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.ResetPasswordRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.passwords.ResetPassword(r.Context(), chi.URLParam(r, "resetToken"), payload.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp, nil)
}

func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RefreshRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.auth.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp, nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	user, err := h.auth.Me(r.Context(), identity)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *AuthHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	// Multipart framing adds a little on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxAvatarSize+64*1024)
	defer r.Body.Close()

	file, header, err := r.FormFile(avatarFormField)
	if err != nil {
		if isPayloadTooLarge(err) {
			writeError(w, r, apierror.New("PAYLOAD_TOO_LARGE", "avatar exceeds the maximum size", "", http.StatusRequestEntityTooLarge))
			return
		}
		writeError(w, r, apierror.New("BAD_REQUEST", "multipart field 'avatar' is required", avatarFormField, http.StatusBadRequest))
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	if header.Size > h.maxAvatarSize {
		writeError(w, r, apierror.New("PAYLOAD_TOO_LARGE", "avatar exceeds the maximum size", "", http.StatusRequestEntityTooLarge))
		return
	}

	user, err := h.avatars.Upload(r.Context(), identity, file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}
