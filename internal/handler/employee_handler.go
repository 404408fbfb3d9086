package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-employee-api/internal/middleware"
	"go-employee-api/internal/model"
	"go-employee-api/internal/service"
	"go-employee-api/internal/upload"
	"go-employee-api/internal/validation"
	"go-employee-api/pkg/apierror"
)

type EmployeeHandler struct {
	service *service.EmployeeService
	uploads *upload.Handler
}

func NewEmployeeHandler(service *service.EmployeeService, uploads *upload.Handler) *EmployeeHandler {
	return &EmployeeHandler{service: service, uploads: uploads}
}

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.NewEmployeeList(items))
}

func (h *EmployeeHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	items, err := h.service.Search(r.Context(), model.EmployeeFilter{
		Department: strings.TrimSpace(query.Get("department")),
		Position:   strings.TrimSpace(query.Get("position")),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.NewEmployeeList(items))
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, file, err := h.readForm(w, r)
	if err != nil {
		h.writeFormError(w, err)
		return
	}
	defer file.Release(r.Context())

	employee, err := validation.ParseEmployeeCreate(fields)
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), employee, file)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("employee created", "employee_id", created.ID, "has_picture", created.ProfilePicture != "", "actor_id", actorID(r))
	writeJSON(w, http.StatusCreated, model.EmployeeCreatedResponse{
		Message:    "Employee created successfully.",
		EmployeeID: created.ID,
	})
}

func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "eid"))
	if err := validation.ValidateEmployeeID(id, "eid", validation.LocationParams); err != nil {
		writeError(w, err)
		return
	}

	employee, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.NewEmployeeResponse(employee))
}

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "eid"))
	if err := validation.ValidateEmployeeID(id, "eid", validation.LocationParams); err != nil {
		writeError(w, err)
		return
	}

	fields, file, err := h.readForm(w, r)
	if err != nil {
		h.writeFormError(w, err)
		return
	}
	defer file.Release(r.Context())

	patch, err := validation.ParseEmployeeUpdate(fields)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Update(r.Context(), id, patch, file); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("employee updated", "employee_id", id, "actor_id", actorID(r))
	writeMessage(w, http.StatusOK, "Employee details updated successfully.")
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("eid"))
	if id == "" {
		writeError(w, model.ErrMissingID)
		return
	}
	if err := validation.ValidateEmployeeID(id, "eid", validation.LocationQuery); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("employee deleted", "employee_id", id, "actor_id", actorID(r))
	w.WriteHeader(http.StatusNoContent)
}

func actorID(r *http.Request) string {
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		return user.ID
	}
	return ""
}

// readForm accepts multipart, JSON and urlencoded bodies. Only multipart
// bodies can carry a picture.
func (h *EmployeeHandler) readForm(w http.ResponseWriter, r *http.Request) (model.EmployeeFields, *upload.File, error) {
	if mediaType(r) == "multipart/form-data" {
		form, err := h.uploads.ReadMultipart(w, r)
		if err != nil {
			return nil, nil, err
		}
		return model.EmployeeFields(form.Fields), form.File, nil
	}

	fields, err := decodeFields(w, r)
	if err != nil {
		return nil, nil, err
	}
	return model.EmployeeFields(fields), nil, nil
}

func (h *EmployeeHandler) writeFormError(w http.ResponseWriter, err error) {
	if errors.Is(err, model.ErrFileTooLarge) {
		writeError(w, apierror.New(
			"FILE_TOO_LARGE",
			fmt.Sprintf("File size too large. Maximum size is %s.", formatSize(h.uploads.MaxSize())),
			"",
			http.StatusBadRequest,
		))
		return
	}
	writeError(w, err)
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
