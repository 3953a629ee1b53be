package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"go-watchlist/internal/model"
	"go-watchlist/internal/token"
)

// AuthHeader carries the access token on protected requests.
const AuthHeader = "x-auth-token"

type tokenValidator interface {
	VerifyAccess(tokenString string) (*token.Claims, error)
}

type contextKey string

const identityContextKey contextKey = "identity"

type AuthMiddleware struct {
	validator tokenValidator
}

func NewAuthMiddleware(validator tokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// RequireAuth rejects requests without a valid access token before they
// reach next.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(AuthHeader))
		if raw == "" {
			writeJSONError(w, http.StatusUnauthorized, "NO_TOKEN", "No token, authorization denied")
			return
		}

		claims, err := m.validator.VerifyAccess(raw)
		if err != nil {
			slog.DebugContext(r.Context(), "access token rejected", "request_id", RequestIDFromContext(r.Context()), "error", err)
			writeJSONError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Token is not valid")
			return
		}

		ctx := WithIdentity(r.Context(), model.Identity{UserID: claims.User.ID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	return identity, ok
}
