package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-employee-api/internal/model"
	"go-employee-api/pkg/apierror"
)

func TestWriteError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "wrapped sentinel",
			err:    fmt.Errorf("update: %w", model.ErrEmployeeNotFound),
			status: http.StatusNotFound,
			body:   `{"status":false,"code":"NOT_FOUND","message":"Employee not found"}`,
		},
		{
			name:   "duplicate email",
			err:    model.ErrDuplicateEmail,
			status: http.StatusBadRequest,
			body:   `{"status":false,"code":"DUPLICATE_EMAIL","message":"Employee with this email already exists"}`,
		},
		{
			name:   "validation errors pass through",
			err:    apierror.Validation([]apierror.FieldError{{Field: "email", Message: "Please provide a valid email", Location: "body"}}),
			status: http.StatusBadRequest,
			body:   `{"status":false,"code":"VALIDATION_FAILED","message":"Validation failed","errors":[{"field":"email","message":"Please provide a valid email","location":"body"}]}`,
		},
		{
			name:   "unclassified",
			err:    errors.New("connection reset by peer"),
			status: http.StatusInternalServerError,
			body:   `{"status":false,"code":"INTERNAL_ERROR","message":"Internal server error"}`,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			writeError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.body, rec.Body.String())
		})
	}
}

func TestDecodeFields(t *testing.T) {
	t.Parallel()

	t.Run("json scalars become strings", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"salary":1234.50,"first_name":"Ada","email":null,"active":true}`))
		req.Header.Set("Content-Type", "application/json")

		fields, err := decodeFields(httptest.NewRecorder(), req)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"salary": "1234.50", "first_name": "Ada", "active": "true"}, fields)
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/", http.NoBody)

		fields, err := decodeFields(httptest.NewRecorder(), req)
		require.NoError(t, err)
		assert.Empty(t, fields)
	})

	t.Run("nested values are rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"first_name":{"$gt":""}}`))
		req.Header.Set("Content-Type", "application/json")

		_, err := decodeFields(httptest.NewRecorder(), req)
		require.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("urlencoded", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("department=Sales&department=Ops&position=Rep"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")

		fields, err := decodeFields(httptest.NewRecorder(), req)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"department": "Sales", "position": "Rep"}, fields)
	})
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "5MB", formatSize(5<<20))
	assert.Equal(t, "64KB", formatSize(64<<10))
	assert.Equal(t, "1500 bytes", formatSize(1500))
}
