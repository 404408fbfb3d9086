package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-employee-api/internal/model"
	"go-employee-api/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.MessageResponse{Message: message})
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{model.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid Username and password"},
	{model.ErrMissingToken, http.StatusUnauthorized, "MISSING_TOKEN", "Access denied. No token provided."},
	{model.ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token."},
	{model.ErrUserNotFound, http.StatusUnauthorized, "USER_NOT_FOUND", "Invalid token. User not found."},
	{model.ErrDuplicateUser, http.StatusBadRequest, "DUPLICATE_USER", "User with this email or username already exists"},
	{model.ErrDuplicateEmail, http.StatusBadRequest, "DUPLICATE_EMAIL", "Employee with this email already exists"},
	{model.ErrEmployeeNotFound, http.StatusNotFound, "NOT_FOUND", "Employee not found"},
	{model.ErrMissingID, http.StatusBadRequest, "MISSING_ID", "Employee ID is required"},
	{model.ErrMalformedID, http.StatusBadRequest, "MALFORMED_ID", "Invalid employee ID format"},
	{model.ErrInvalidFileType, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only image files are allowed!"},
	{model.ErrFileTooLarge, http.StatusBadRequest, "FILE_TOO_LARGE", "File size too large."},
	{model.ErrUnexpectedFile, http.StatusBadRequest, "UNEXPECTED_FILE", "Unexpected file field. Only one profile_picture is allowed."},
	{model.ErrFileNotFound, http.StatusNotFound, "NOT_FOUND", "File not found"},
	{model.ErrInvalidInput, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid request body"},
}

func writeError(w http.ResponseWriter, err error) {
	body := model.ErrorResponse{Status: false}
	status := http.StatusInternalServerError

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Errors = apiErr.Errors
		writeJSON(w, status, body)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			body.Code = m.code
			body.Message = m.message
			writeJSON(w, m.status, body)
			return
		}
	}

	// Unclassified errors stay in the log; the client gets a generic body.
	slog.Error("unhandled error in writeError", "error", err)
	body.Code = "INTERNAL_ERROR"
	body.Message = "Internal server error"
	writeJSON(w, status, body)
}
