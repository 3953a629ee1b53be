package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-watchlist/internal/mailer"
	"go-watchlist/internal/middleware"
	"go-watchlist/internal/model"
	"go-watchlist/internal/service"
	"go-watchlist/internal/storage"
	"go-watchlist/internal/testutil"
	"go-watchlist/internal/token"
	"go-watchlist/pkg/apierror"
)

const testUserID = "3f8d3c55-8d2a-4f0e-9d57-3b1f0a8e6c11"

type outbox struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (o *outbox) Send(_ context.Context, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, msg)
	return nil
}

type stubSearcher struct {
	results []model.SearchResult
	err     error
}

func (s stubSearcher) SearchMulti(context.Context, string, int) ([]model.SearchResult, error) {
	return s.results, s.err
}

type testEnv struct {
	router http.Handler
	users  *testutil.MemoryUsers
	mail   *outbox
}

// newTestEnv mounts the handlers behind a stub gate that trusts
// testUserID, so these tests exercise handlers rather than tokens.
func newTestEnv(t *testing.T, searcher stubSearcher) *testEnv {
	t.Helper()

	users := testutil.NewMemoryUsers()
	entries := testutil.NewMemoryWatchlist()
	mail := &outbox{}

	issuer, err := token.NewIssuer(token.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)

	authService, err := service.NewAuthService(users, issuer, bcrypt.MinCost)
	require.NoError(t, err)
	passwordService := service.NewPasswordService(users, mail, service.PasswordConfig{
		BcryptCost: bcrypt.MinCost,
		ResetTTL:   time.Hour,
		ClientURL:  "http://localhost:5173",
	})
	files, err := storage.New(t.TempDir())
	require.NoError(t, err)
	avatarService := service.NewAvatarService(users, files, 64)

	authHandler := NewAuthHandler(authService, passwordService, avatarService, 1<<20)
	watchlistHandler := NewWatchlistHandler(service.NewWatchlistService(entries))
	movieHandler := NewMovieHandler(service.NewMovieService(searcher, nil, time.Minute))
	avatarHandler := NewAvatarHandler(avatarService)

	stubGate := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(middleware.AuthHeader) == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := middleware.WithIdentity(r.Context(), model.Identity{UserID: testUserID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	r := chi.NewRouter()
	r.Use(stubGate)
	r.Post("/api/users/", authHandler.Login)
	r.Post("/api/users/register", authHandler.Register)
	r.Post("/api/users/forgot-password", authHandler.ForgotPassword)
	r.Post("/api/users/reset-password/{resetToken}", authHandler.ResetPassword)
	r.Post("/api/users/refresh-token", authHandler.RefreshToken)
	r.Get("/api/users/me", authHandler.Me)
	r.Put("/api/users/me/avatar", authHandler.UploadAvatar)
	r.Get("/api/movies/search", movieHandler.Search)
	r.Get("/api/movies/list", watchlistHandler.List)
	r.Post("/api/movies/list", watchlistHandler.Add)
	r.Put("/api/movies/list/{id}", watchlistHandler.Update)
	r.Delete("/api/movies/list/{id}", watchlistHandler.Delete)
	r.Get("/avatars/{file}", avatarHandler.Serve)

	return &testEnv{router: r, users: users, mail: mail}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set(middleware.AuthHeader, "trusted")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seedUser(t *testing.T) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = e.users.Create(context.Background(), model.User{ID: testUserID, Name: "A", Email: "a@x.com", PasswordHash: string(hash)})
	require.NoError(t, err)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) model.APIResponse {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *model.APIError `json:"error"`
		Meta    *model.Meta     `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}
	return model.APIResponse{Success: envelope.Success, Error: envelope.Error, Meta: envelope.Meta}
}

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrUserNotFound, http.StatusBadRequest, "USER_NOT_FOUND"},
		{model.ErrUserAlreadyExists, http.StatusBadRequest, "USER_EXISTS"},
		{model.ErrInvalidCredentials, http.StatusBadRequest, "INVALID_CREDENTIALS"},
		{model.ErrInvalidOrExpiredToken, http.StatusBadRequest, "INVALID_RESET_TOKEN"},
		{model.ErrEntryNotFound, http.StatusNotFound, "ENTRY_NOT_FOUND"},
		{model.ErrAlreadyListed, http.StatusBadRequest, "ALREADY_LISTED"},
		{model.ErrInvalidInput, http.StatusBadRequest, "VALIDATION_ERROR"},
		{apierror.Forbidden("INVALID_REFRESH_TOKEN", "Invalid refresh token"), http.StatusForbidden, "INVALID_REFRESH_TOKEN"},
		{apierror.Upstream("Movie search failed", errors.New("dial tcp")), http.StatusInternalServerError, "UPSTREAM_ERROR"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			body := decodeEnvelope(t, rec, nil)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotContains(t, rec.Body.String(), "dial tcp")
		})
	}

	t.Run("wrapped sentinel", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.Join(errors.New("ctx"), model.ErrEntryNotFound))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("validation fields are copied", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), apierror.Validation(apierror.FieldError{Field: "email", Message: "Please include a valid email"}))
		body := decodeEnvelope(t, rec, nil)
		require.Len(t, body.Error.Fields, 1)
		assert.Equal(t, "email", body.Error.Fields[0].Field)
	})
}

func TestAuthHandler(t *testing.T) {
	t.Run("invalid JSON", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{})
		rec := env.do(t, http.MethodPost, "/api/users/", "{", false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "BAD_REQUEST", decodeEnvelope(t, rec, nil).Error.Code)
	})

	t.Run("register then login", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{})

		rec := env.do(t, http.MethodPost, "/api/users/register", model.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"}, false)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var registered model.AuthResponse
		decodeEnvelope(t, rec, &registered)
		assert.Equal(t, "a@x.com", registered.User.Email)
		assert.NotEmpty(t, registered.AccessToken)
		assert.NotEmpty(t, registered.RefreshToken)

		rec = env.do(t, http.MethodPost, "/api/users/", model.LoginRequest{Email: "a@x.com", Password: "secret1"}, false)
		require.Equal(t, http.StatusOK, rec.Code)
		var loggedIn model.AuthResponse
		decodeEnvelope(t, rec, &loggedIn)
		assert.Equal(t, registered.User.ID, loggedIn.User.ID)
		assert.NotContains(t, rec.Body.String(), "password")

		rec = env.do(t, http.MethodPost, "/api/users/refresh-token", model.RefreshRequest{RefreshToken: loggedIn.RefreshToken}, false)
		require.Equal(t, http.StatusOK, rec.Code)
		var refreshed model.AccessTokenResponse
		decodeEnvelope(t, rec, &refreshed)
		assert.NotEmpty(t, refreshed.AccessToken)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{})
		env.seedUser(t)

		rec := env.do(t, http.MethodPost, "/api/users/register", model.RegisterRequest{Name: "B", Email: "A@x.com", Password: "secret1"}, false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "USER_EXISTS", decodeEnvelope(t, rec, nil).Error.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{})
		env.seedUser(t)

		rec := env.do(t, http.MethodPost, "/api/users/", model.LoginRequest{Email: "a@x.com", Password: "nope123"}, false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeEnvelope(t, rec, nil)
		assert.Equal(t, "INVALID_CREDENTIALS", body.Error.Code)
		assert.Equal(t, "Invalid Credentials", body.Error.Message)
	})

	t.Run("refresh without token", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{})
		rec := env.do(t, http.MethodPost, "/api/users/refresh-token", model.RefreshRequest{}, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "NO_REFRESH_TOKEN", decodeEnvelope(t, rec, nil).Error.Code)
	})

	t.Run("refresh with empty body", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{})
		rec := env.do(t, http.MethodPost, "/api/users/refresh-token", "", false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "NO_REFRESH_TOKEN", decodeEnvelope(t, rec, nil).Error.Code)
	})

	t.Run("empty login body is a validation error", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{})
		rec := env.do(t, http.MethodPost, "/api/users/", "", false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, rec, nil).Error.Code)
	})

	t.Run("refresh with garbage", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{})
		rec := env.do(t, http.MethodPost, "/api/users/refresh-token", model.RefreshRequest{RefreshToken: "garbage"}, false)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "INVALID_REFRESH_TOKEN", decodeEnvelope(t, rec, nil).Error.Code)
	})

	t.Run("me", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{})
		env.seedUser(t)

		rec := env.do(t, http.MethodGet, "/api/users/me", nil, true)
		require.Equal(t, http.StatusOK, rec.Code)
		var user model.PublicUser
		decodeEnvelope(t, rec, &user)
		assert.Equal(t, testUserID, user.ID)
	})

	t.Run("me without identity", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{})
		rec := env.do(t, http.MethodGet, "/api/users/me", nil, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestPasswordResetHandlers(t *testing.T) {
	t.Run("unknown email", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{})
		rec := env.do(t, http.MethodPost, "/api/users/forgot-password", model.ForgotPasswordRequest{Email: "nobody@x.com"}, false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "USER_NOT_FOUND", decodeEnvelope(t, rec, nil).Error.Code)
	})

	t.Run("mail failure", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{})
		env.seedUser(t)
		env.mail.err = errors.New("smtp: 535 auth failed")

		rec := env.do(t, http.MethodPost, "/api/users/forgot-password", model.ForgotPasswordRequest{Email: "a@x.com"}, false)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "535")
	})

	t.Run("request and consume", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{})
		env.seedUser(t)

		rec := env.do(t, http.MethodPost, "/api/users/forgot-password", model.ForgotPasswordRequest{Email: "a@x.com"}, false)
		require.Equal(t, http.StatusOK, rec.Code)
		var msg model.MessageResponse
		decodeEnvelope(t, rec, &msg)
		assert.Equal(t, "Password reset email sent", msg.Msg)

		require.Len(t, env.mail.sent, 1)
		_, plain, found := strings.Cut(env.mail.sent[0].Body, "/reset-password/")
		require.True(t, found)
		plain = strings.Fields(plain)[0]

		rec = env.do(t, http.MethodPost, "/api/users/reset-password/"+plain, model.ResetPasswordRequest{Password: "newpass1"}, false)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = env.do(t, http.MethodPost, "/api/users/reset-password/"+plain, model.ResetPasswordRequest{Password: "newpass2"}, false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_RESET_TOKEN", decodeEnvelope(t, rec, nil).Error.Code)

		rec = env.do(t, http.MethodPost, "/api/users/", model.LoginRequest{Email: "a@x.com", Password: "newpass1"}, false)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestWatchlistHandler(t *testing.T) {
	env := newTestEnv(t, stubSearcher{})
	entry := model.AddEntryRequest{TMDBID: 603, Title: "The Matrix", MediaType: "movie", Year: "1999", Genres: []string{"Action"}}

	rec := env.do(t, http.MethodPost, "/api/movies/list", entry, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created model.WatchlistEntry
	decodeEnvelope(t, rec, &created)
	assert.Equal(t, model.StatusPlanToWatch, created.Status)
	assert.Equal(t, testUserID, created.UserID)

	rec = env.do(t, http.MethodPost, "/api/movies/list", entry, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ALREADY_LISTED", decodeEnvelope(t, rec, nil).Error.Code)

	rec = env.do(t, http.MethodPost, "/api/movies/list", model.AddEntryRequest{Title: "x"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, rec, nil).Error.Code)

	rec = env.do(t, http.MethodGet, "/api/movies/list?genres=Drama,+Action&limit=5", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []model.WatchlistEntry
	body := decodeEnvelope(t, rec, &listed)
	require.Len(t, listed, 1)
	require.NotNil(t, body.Meta)
	assert.Equal(t, 1, body.Meta.Total)
	assert.Equal(t, 5, body.Meta.Limit)

	rec = env.do(t, http.MethodGet, "/api/movies/list?status=bogus", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/movies/list/"+created.ID, map[string]any{"status": "watching", "notes": "rewatch"}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.WatchlistEntry
	decodeEnvelope(t, rec, &updated)
	assert.Equal(t, "watching", updated.Status)
	assert.Equal(t, "rewatch", updated.Notes)

	rec = env.do(t, http.MethodPut, "/api/movies/list/"+created.ID, map[string]any{"status": "dropped"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/movies/list/"+created.ID, nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var msg model.MessageResponse
	decodeEnvelope(t, rec, &msg)
	assert.Equal(t, "Entry removed from watchlist", msg.Msg)

	rec = env.do(t, http.MethodDelete, "/api/movies/list/"+created.ID, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/movies/list/not-a-uuid", map[string]any{"notes": "x"}, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMovieHandler(t *testing.T) {
	t.Run("blank query", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{})
		rec := env.do(t, http.MethodGet, "/api/movies/search?query=+", nil, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("results", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{results: []model.SearchResult{{TMDBID: 603, MediaType: "movie", Title: "The Matrix"}}})
		rec := env.do(t, http.MethodGet, "/api/movies/search?query=matrix", nil, true)
		require.Equal(t, http.StatusOK, rec.Code)
		var results []model.SearchResult
		decodeEnvelope(t, rec, &results)
		require.Len(t, results, 1)
		assert.Equal(t, "The Matrix", results[0].Title)
	})

	t.Run("upstream failure", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{err: errors.New("tmdb: status 503")})
		rec := env.do(t, http.MethodGet, "/api/movies/search?query=matrix", nil, true)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "503")
	})
}

func avatarRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/users/me/avatar", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set(middleware.AuthHeader, "trusted")
	return req
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadAvatar(t *testing.T) {
	t.Run("stores and serves", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{})
		env.seedUser(t)

		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, avatarRequest(t, "avatar", "me.png", pngBytes(t, 200, 100)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var user model.PublicUser
		decodeEnvelope(t, rec, &user)
		assert.Equal(t, "/avatars/"+testUserID+".jpg", user.Avatar)

		rec = httptest.NewRecorder()
		env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, user.Avatar, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
		_, format, err := image.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
	})

	t.Run("rejects non-images", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{})
		env.seedUser(t)

		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, avatarRequest(t, "avatar", "notes.txt", []byte("plain text, not an image")))
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("missing field", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{})
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, avatarRequest(t, "picture", "me.png", pngBytes(t, 4, 4)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too large", func(t *testing.T) {
		env := newTestEnv(t, stubSearcher{})
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, avatarRequest(t, "avatar", "big.png", bytes.Repeat([]byte{0x89}, 2<<20)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestAvatarHandler_NotFound(t *testing.T) {
	env := newTestEnv(t, stubSearcher{})

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/avatars/missing.jpg", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/avatars/..", nil))
	assert.GreaterOrEqual(t, rec.Code, 400)
}

func TestDocsHandler(t *testing.T) {
	specPath := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(specPath, []byte("openapi: 3.0.3\n"), 0o644))
	docs := NewDocsHandler(specPath)

	t.Run("serves the spec", func(t *testing.T) {
		rec := httptest.NewRecorder()
		docs.OpenAPI(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
		assert.Equal(t, "openapi: 3.0.3\n", rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("Last-Modified"))
	})

	t.Run("not modified", func(t *testing.T) {
		info, err := os.Stat(specPath)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
		req.Header.Set("If-Modified-Since", info.ModTime().UTC().Add(time.Second).Format(http.TimeFormat))
		rec := httptest.NewRecorder()
		docs.OpenAPI(rec, req)
		assert.Equal(t, http.StatusNotModified, rec.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewDocsHandler(filepath.Join(t.TempDir(), "missing.yaml")).OpenAPI(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "DOCS_NOT_FOUND", decodeEnvelope(t, rec, nil).Error.Code)
	})

	t.Run("not configured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewDocsHandler(" ").OpenAPI(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "DOCS_NOT_CONFIGURED", decodeEnvelope(t, rec, nil).Error.Code)
	})

	t.Run("swagger page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		docs.SwaggerUI(rec, httptest.NewRequest(http.MethodGet, "/swagger", nil))
		assert.Contains(t, rec.Body.String(), "Watchlist API Docs")
		assert.Contains(t, rec.Body.String(), "/openapi.yaml")
		assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	})
}

type stubPinger struct{ err error }

func (p stubPinger) Health(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(stubPinger{}).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	NewHealthHandler(stubPinger{err: errors.New("down")}).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestParseIntOrDefault(t *testing.T) {
	assert.Equal(t, 3, parseIntOrDefault(" 3 ", 1))
	assert.Equal(t, 1, parseIntOrDefault("", 1))
	assert.Equal(t, 1, parseIntOrDefault("abc", 1))
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(" "))
	assert.Equal(t, []string{"Drama", "Action"}, splitList("Drama, ,Action"))
}
