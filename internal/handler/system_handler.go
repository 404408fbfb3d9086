package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go-employee-api/internal/model"
)

type pinger interface {
	Health(ctx context.Context) error
}

const healthTimeout = 2 * time.Second

type SystemHandler struct {
	db        pinger
	apiPrefix string
}

func NewSystemHandler(db pinger, apiPrefix string) *SystemHandler {
	return &SystemHandler{db: db, apiPrefix: apiPrefix}
}

func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.db.Health(ctx); err != nil {
		slog.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, model.HealthResponse{
			Status:    false,
			Message:   "Database unavailable",
			Timestamp: now,
			Database:  "down",
		})
		return
	}

	writeJSON(w, http.StatusOK, model.HealthResponse{
		Status:    true,
		Message:   "Server is running",
		Timestamp: now,
		Database:  "up",
	})
}

type welcomeResponse struct {
	Status    bool                         `json:"status"`
	Message   string                       `json:"message"`
	Endpoints map[string]map[string]string `json:"endpoints"`
}

func (h *SystemHandler) Root(w http.ResponseWriter, _ *http.Request) {
	p := h.apiPrefix
	writeJSON(w, http.StatusOK, welcomeResponse{
		Status:  true,
		Message: "Welcome to the Employee Directory API",
		Endpoints: map[string]map[string]string{
			"user": {
				"signup": "POST " + p + "/user/signup",
				"login":  "POST " + p + "/user/login",
			},
			"employee": {
				"getAll":  "GET " + p + "/emp/employees",
				"search":  "GET " + p + "/emp/employees/search?department=xxx&position=xxx",
				"create":  "POST " + p + "/emp/employees",
				"getById": "GET " + p + "/emp/employees/{eid}",
				"update":  "PUT " + p + "/emp/employees/{eid}",
				"delete":  "DELETE " + p + "/emp/employees?eid=xxx",
			},
			"uploads": {
				"picture":   "GET /uploads/{name}",
				"thumbnail": "GET /uploads/{name}/thumbnail?size=128",
			},
		},
	})
}

// NotFound answers unknown routes with the error envelope.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, model.ErrorResponse{
		Status:  false,
		Code:    "NOT_FOUND",
		Message: "Endpoint not found",
	})
}

func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, model.ErrorResponse{
		Status:  false,
		Code:    "METHOD_NOT_ALLOWED",
		Message: "Method not allowed",
	})
}
