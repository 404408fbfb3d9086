package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("user with this email or username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token related errors
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")

	// Employee related errors
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrDuplicateEmail   = errors.New("employee with this email already exists")
	ErrMalformedID      = errors.New("malformed employee id")
	ErrMissingID        = errors.New("employee id is required")

	// Upload related errors
	ErrInvalidFileType = errors.New("only image files are allowed")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnexpectedFile  = errors.New("unexpected file field")
	ErrFileNotFound    = errors.New("file not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
