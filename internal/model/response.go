package model

import (
	"encoding/json"

	"go-employee-api/pkg/apierror"
)

// ErrorResponse is the failure envelope of every endpoint.
type ErrorResponse struct {
	Status  bool                  `json:"status"`
	Code    string                `json:"code"`
	Message string                `json:"message"`
	Errors  []apierror.FieldError `json:"errors,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type SignupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type LoginResponse struct {
	Message  string `json:"message"`
	JWTToken string `json:"jwt_token"`
}

type EmployeeCreatedResponse struct {
	Message    string `json:"message"`
	EmployeeID string `json:"employee_id"`
}

type EmployeeResponse struct {
	EmployeeID     string      `json:"employee_id"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	Email          string      `json:"email"`
	Position       string      `json:"position"`
	Salary         json.Number `json:"salary"`
	DateOfJoining  string      `json:"date_of_joining"`
	Department     string      `json:"department"`
	ProfilePicture *string     `json:"profile_picture"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		EmployeeID:     e.ID,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		Email:          e.Email,
		Position:       e.Position,
		Salary:         json.Number(e.Salary.String()),
		DateOfJoining:  e.DateOfJoining.UTC().Format(DateLayout),
		Department:     e.Department,
		ProfilePicture: ProfilePictureURL(e.ProfilePicture),
	}
}

func NewEmployeeList(items []Employee) []EmployeeResponse {
	out := make([]EmployeeResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewEmployeeResponse(item))
	}
	return out
}

type HealthResponse struct {
	Status    bool   `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database,omitempty"`
}
