package handler

import (
	"net/http"

	"go-employee-api/internal/model"
	"go-employee-api/internal/service"
	"go-employee-api/internal/validation"
)

type UserHandler struct {
	users *service.UserService
	auth  *service.AuthService
}

func NewUserHandler(users *service.UserService, auth *service.AuthService) *UserHandler {
	return &UserHandler{users: users, auth: auth}
}

func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := validation.ValidateSignup(model.SignupRequest{
		Username: fields["username"],
		Email:    fields["email"],
		Password: fields["password"],
	})
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Signup(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.SignupResponse{
		Message: "User created successfully.",
		UserID:  user.ID,
	})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := validation.ValidateLogin(model.LoginRequest{
		Email:    fields["email"],
		Username: fields["username"],
		Password: fields["password"],
	})
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.LoginResponse{
		Message:  "Login successful.",
		JWTToken: token,
	})
}
