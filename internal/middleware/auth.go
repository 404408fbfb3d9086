package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go-employee-api/internal/model"
)

type authenticator interface {
	Authenticate(ctx context.Context, token string) (model.AuthUser, error)
}

type contextKey string

const authUserContextKey contextKey = "auth_user"

type AuthMiddleware struct {
	auth authenticator
}

func NewAuthMiddleware(auth authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// RequireAuth admits requests carrying a valid bearer token of an existing
// user and attaches that user to the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		token := ""
		if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
			token = strings.TrimSpace(header[7:])
		}

		user, err := m.auth.Authenticate(r.Context(), token)
		if err != nil {
			writeAuthError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), authUserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserFromContext(ctx context.Context) (model.AuthUser, bool) {
	user, ok := ctx.Value(authUserContextKey).(model.AuthUser)
	return user, ok
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrMissingToken):
		writeJSONError(w, http.StatusUnauthorized, "MISSING_TOKEN", "Access denied. No token provided.")
	case errors.Is(err, model.ErrUserNotFound):
		writeJSONError(w, http.StatusUnauthorized, "USER_NOT_FOUND", "Invalid token. User not found.")
	case errors.Is(err, model.ErrInvalidToken):
		writeJSONError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token.")
	default:
		slog.Error("authentication failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
