package apierror

import "fmt"

// FieldError describes one violated rule of a request field.
type FieldError struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

type APIError struct {
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Details    string       `json:"details,omitempty"`
	Errors     []FieldError `json:"errors,omitempty"`
	HTTPStatus int          `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	if len(e.Errors) > 0 {
		return fmt.Sprintf("%s: %s (%d field errors)", e.Code, e.Message, len(e.Errors))
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// Validation builds the 400 error carrying every violated field rule.
func Validation(errs []FieldError) *APIError {
	return &APIError{
		Code:       "VALIDATION_FAILED",
		Message:    "Validation failed",
		Errors:     errs,
		HTTPStatus: 400,
	}
}
