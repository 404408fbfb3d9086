package app

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-employee-api/internal/config"
)

type apiClient struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func newTestApp(t *testing.T) *apiClient {
	t.Helper()

	dir := t.TempDir()
	docs := filepath.Join(dir, "openapi.yaml")
	require.NoError(t, os.WriteFile(docs, []byte("openapi: 3.0.3\n"), 0o644))

	cfg := &config.Config{
		ServerPort:       "0",
		RequestTimeout:   10 * time.Second,
		APIPrefix:        "/api/v1",
		DBDriver:         config.DriverSQLite,
		SQLitePath:       filepath.Join(dir, "employees.db"),
		JWTSecret:        "test-secret",
		JWTTTL:           time.Hour,
		BcryptCost:       4,
		CORSOrigins:      []string{"*"},
		AuthRateLimitRPM: 1000,
		UploadBackend:    config.UploadBackendLocal,
		UploadDir:        filepath.Join(dir, "uploads"),
		MaxUploadSize:    64 << 10,
		ThumbnailRoot:    filepath.Join(dir, "thumbs"),
		DocsPath:         docs,
	}
	require.NoError(t, cfg.Validate())

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	server := httptest.NewServer(a.Handler())
	t.Cleanup(server.Close)

	return &apiClient{t: t, server: server}
}

func (c *apiClient) do(method string, path string, contentType string, body io.Reader) (*http.Response, []byte) {
	c.t.Helper()

	req, err := http.NewRequest(method, c.server.URL+path, body)
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, raw
}

func (c *apiClient) json(method string, path string, payload any) (*http.Response, map[string]any) {
	c.t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(c.t, err)
		body = bytes.NewReader(encoded)
	}

	resp, raw := c.do(method, path, "application/json", body)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(c.t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func (c *apiClient) signupAndLogin() {
	c.t.Helper()

	resp, body := c.json(http.MethodPost, "/api/v1/user/signup", map[string]string{
		"username": "jdoe",
		"email":    "JDoe@Example.com",
		"password": "secret123",
	})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode, body)
	require.NotEmpty(c.t, body["user_id"])

	resp, body = c.json(http.MethodPost, "/api/v1/user/login", map[string]string{
		"email":    "jdoe@example.com",
		"password": "secret123",
	})
	require.Equal(c.t, http.StatusOK, resp.StatusCode, body)
	c.token = body["jwt_token"].(string)
}

func employeePayload(email string) map[string]any {
	return map[string]any{
		"first_name":      "Ada",
		"last_name":       "Lovelace",
		"email":           email,
		"position":        "Engineer",
		"salary":          85000.5,
		"date_of_joining": "2024-01-15",
		"department":      "Research",
	}
}

func pngImage(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 300, 200))
	for x := 0; x < 300; x++ {
		for y := 0; y < 200; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartBody(t *testing.T, fields map[string]string, fileField string, contentType string, content []byte) (string, *bytes.Buffer) {
	t.Helper()
	return multipartFile(t, fields, fileField, "me.png", contentType, content)
}

func multipartFile(t *testing.T, fields map[string]string, fileField string, filename string, contentType string, content []byte) (string, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+filename+`"`)
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return mw.FormDataContentType(), &buf
}

func TestSignupAndLogin(t *testing.T) {
	c := newTestApp(t)
	c.signupAndLogin()
	require.NotEmpty(t, c.token)

	resp, body := c.json(http.MethodPost, "/api/v1/user/signup", map[string]string{
		"username": "JDOE",
		"email":    "other@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "DUPLICATE_USER", body["code"])
	assert.Equal(t, false, body["status"])

	resp, body = c.json(http.MethodPost, "/api/v1/user/login", map[string]string{
		"email":    "jdoe@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", body["code"])
	assert.Equal(t, "Invalid Username and password", body["message"])

	resp, body = c.json(http.MethodPost, "/api/v1/user/signup", map[string]string{
		"username": "x",
		"email":    "not-an-email",
		"password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])
	assert.Len(t, body["errors"], 3)
}

func TestSignupRejectsOverlongPassword(t *testing.T) {
	c := newTestApp(t)

	resp, body := c.json(http.MethodPost, "/api/v1/user/signup", map[string]string{
		"username": "longpass",
		"email":    "longpass@example.com",
		"password": strings.Repeat("p", 100),
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])
	errs, ok := body["errors"].([]any)
	require.True(t, ok, body)
	require.Len(t, errs, 1)
	assert.Equal(t, "password", errs[0].(map[string]any)["field"])
}

func TestLoginAcceptsUrlencoded(t *testing.T) {
	c := newTestApp(t)
	c.signupAndLogin()

	resp, raw := c.do(http.MethodPost, "/api/v1/user/login", "application/x-www-form-urlencoded",
		strings.NewReader("email=jdoe&password=secret123"))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), "jwt_token")
}

func TestEmployeeRoutesRequireToken(t *testing.T) {
	c := newTestApp(t)

	resp, body := c.json(http.MethodGet, "/api/v1/emp/employees", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", body["code"])

	c.token = "garbage"
	resp, body = c.json(http.MethodGet, "/api/v1/emp/employees", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", body["code"])
}

func TestEmployeeLifecycle(t *testing.T) {
	c := newTestApp(t)
	c.signupAndLogin()

	resp, body := c.json(http.MethodPost, "/api/v1/emp/employees", employeePayload("ada@example.com"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "Employee created successfully.", body["message"])
	id := body["employee_id"].(string)

	resp, body = c.json(http.MethodPost, "/api/v1/emp/employees", employeePayload("ADA@example.com"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "DUPLICATE_EMAIL", body["code"])

	resp, body = c.json(http.MethodGet, "/api/v1/emp/employees/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, body["employee_id"])
	assert.Equal(t, 85000.5, body["salary"])
	assert.Equal(t, "2024-01-15", body["date_of_joining"])
	assert.Nil(t, body["profile_picture"])

	resp, body = c.json(http.MethodPut, "/api/v1/emp/employees/"+id, map[string]any{"position": "Lead Engineer"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Employee details updated successfully.", body["message"])

	resp, raw := c.do(http.MethodGet, "/api/v1/emp/employees/search?position=lead", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found []map[string]any
	require.NoError(t, json.Unmarshal(raw, &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Lead Engineer", found[0]["position"])

	resp, raw = c.do(http.MethodGet, "/api/v1/emp/employees/search?department=sales", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(raw))

	resp, _ = c.do(http.MethodDelete, "/api/v1/emp/employees?eid="+id, "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = c.json(http.MethodGet, "/api/v1/emp/employees/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Employee not found", body["message"])
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestEmployeeChangesAreLoggedOnce(t *testing.T) {
	var logs lockedBuffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	c := newTestApp(t)
	c.signupAndLogin()

	resp, body := c.json(http.MethodPost, "/api/v1/emp/employees", employeePayload("once@example.com"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	id := body["employee_id"].(string)

	resp, _ = c.json(http.MethodPut, "/api/v1/emp/employees/"+id, map[string]any{"position": "Lead"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = c.do(http.MethodDelete, "/api/v1/emp/employees?eid="+id, "", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	out := logs.String()
	for _, msg := range []string{"employee created", "employee updated", "employee deleted"} {
		assert.Equal(t, 1, strings.Count(out, `"msg":"`+msg+`"`), msg)
	}
	assert.Contains(t, out, `"actor_id":"`)
}

func TestEmployeeIdentifierErrors(t *testing.T) {
	c := newTestApp(t)
	c.signupAndLogin()

	resp, body := c.json(http.MethodDelete, "/api/v1/emp/employees", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MISSING_ID", body["code"])

	resp, body = c.json(http.MethodDelete, "/api/v1/emp/employees?eid=123", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MALFORMED_ID", body["code"])

	resp, body = c.json(http.MethodGet, "/api/v1/emp/employees/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MALFORMED_ID", body["code"])

	resp, body = c.json(http.MethodPut, "/api/v1/emp/employees/6f1c2a7e-9b1d-4a55-8d2e-2f0a3c1b9e77", map[string]any{"position": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestEmployeeWithProfilePicture(t *testing.T) {
	c := newTestApp(t)
	c.signupAndLogin()

	fields := map[string]string{
		"first_name":      "Grace",
		"last_name":       "Hopper",
		"email":           "grace@example.com",
		"position":        "Admiral",
		"salary":          "120000",
		"date_of_joining": "2023-06-01",
		"department":      "Navy",
	}
	contentType, buf := multipartBody(t, fields, "profile_picture", "image/png", pngImage(t))
	resp, raw := c.do(http.MethodPost, "/api/v1/emp/employees", contentType, buf)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var created map[string]any
	require.NoError(t, json.Unmarshal(raw, &created))
	id := created["employee_id"].(string)

	_, body := c.json(http.MethodGet, "/api/v1/emp/employees/"+id, nil)
	pictureURL, ok := body["profile_picture"].(string)
	require.True(t, ok, body)
	require.True(t, strings.HasPrefix(pictureURL, "/uploads/profile_picture-"))

	c.token = ""
	resp, raw = c.do(http.MethodGet, pictureURL, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, pngImage(t), raw)

	resp, raw = c.do(http.MethodGet, pictureURL+"/thumbnail?size=64", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	thumb, _, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 64, thumb.Bounds().Dx())
}

func TestUploadedSVGIsSandboxed(t *testing.T) {
	c := newTestApp(t)
	c.signupAndLogin()

	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(document.domain)</script></svg>`)
	contentType, buf := multipartFile(t, map[string]string{
		"first_name":      "Mallory",
		"last_name":       "Svg",
		"email":           "mallory@example.com",
		"position":        "Designer",
		"salary":          "1000",
		"date_of_joining": "2023-06-01",
		"department":      "Design",
	}, "profile_picture", "avatar.svg", "image/svg+xml", svg)
	resp, raw := c.do(http.MethodPost, "/api/v1/emp/employees", contentType, buf)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var created map[string]any
	require.NoError(t, json.Unmarshal(raw, &created))
	_, body := c.json(http.MethodGet, "/api/v1/emp/employees/"+created["employee_id"].(string), nil)
	pictureURL, ok := body["profile_picture"].(string)
	require.True(t, ok, body)
	require.True(t, strings.HasSuffix(pictureURL, ".svg"), pictureURL)

	c.token = ""
	resp, raw = c.do(http.MethodGet, pictureURL, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, svg, raw)
	assert.Equal(t, "default-src 'none'; style-src 'unsafe-inline'; sandbox", resp.Header.Get("Content-Security-Policy"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), "attachment"), resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestEmployeeUploadRejections(t *testing.T) {
	c := newTestApp(t)
	c.signupAndLogin()

	fields := map[string]string{"first_name": "Grace"}

	contentType, buf := multipartBody(t, fields, "profile_picture", "application/pdf", []byte("%PDF-1.4"))
	resp, raw := c.do(http.MethodPost, "/api/v1/emp/employees", contentType, buf)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(raw), "INVALID_FILE_TYPE")

	contentType, buf = multipartBody(t, fields, "avatar", "image/png", pngImage(t))
	resp, raw = c.do(http.MethodPost, "/api/v1/emp/employees", contentType, buf)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(raw), "UNEXPECTED_FILE")

	contentType, buf = multipartBody(t, fields, "profile_picture", "image/png", bytes.Repeat([]byte{1}, 65<<10))
	resp, raw = c.do(http.MethodPost, "/api/v1/emp/employees", contentType, buf)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(raw), "File size too large. Maximum size is 64KB.")

	// Validation fails after the picture is stored; the file must not stay.
	contentType, buf = multipartBody(t, fields, "profile_picture", "image/png", pngImage(t))
	resp, raw = c.do(http.MethodPost, "/api/v1/emp/employees", contentType, buf)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(raw), "VALIDATION_FAILED")
}

func TestSystemRoutes(t *testing.T) {
	c := newTestApp(t)

	resp, body := c.json(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["status"])
	assert.Equal(t, "Server is running", body["message"])

	resp, body = c.json(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "endpoints")

	resp, body = c.json(http.MethodGet, "/api/v1/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Endpoint not found", body["message"])

	resp, raw := c.do(http.MethodGet, "/openapi.yaml", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "openapi")

	resp, _ = c.do(http.MethodGet, "/uploads/missing.png", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}
