package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-employee-api/internal/model"
)

type stubAuthenticator map[string]error

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (model.AuthUser, error) {
	if token == "" {
		return model.AuthUser{}, model.ErrMissingToken
	}
	if err, ok := s[token]; ok {
		return model.AuthUser{}, err
	}
	return model.AuthUser{ID: "u-1", Username: "alice", Email: "alice@example.com"}, nil
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	stub := stubAuthenticator{
		"forged": model.ErrInvalidToken,
		"ghost":  model.ErrUserNotFound,
		"broken": errors.New("database down"),
	}

	var seen model.AuthUser
	handler := NewAuthMiddleware(stub).RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		require.True(t, ok)
		seen = user
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"no header", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"empty bearer", "Bearer   ", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"invalid token", "Bearer forged", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"deleted user", "Bearer ghost", http.StatusUnauthorized, "USER_NOT_FOUND"},
		{"store failure", "Bearer broken", http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"valid token", "bearer good", http.StatusNoContent, ""},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/emp/employees", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, tc.status, rec.Code, tc.name)
		if tc.code == "" {
			continue
		}

		var body model.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), tc.name)
		assert.False(t, body.Status, tc.name)
		assert.Equal(t, tc.code, body.Code, tc.name)
	}

	assert.Equal(t, "alice", seen.Username)
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestUploadSandbox(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	UploadSandbox(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/a.svg", nil))
	assert.Equal(t, "default-src 'none'; style-src 'unsafe-inline'; sandbox", rec.Header().Get("Content-Security-Policy"))
}

func TestRecoveryWritesEnvelope(t *testing.T) {
	t.Parallel()

	handler := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":false,"code":"INTERNAL_ERROR","message":"Internal server error"}`, rec.Body.String())
}
