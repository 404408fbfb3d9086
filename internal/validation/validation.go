// Package validation checks request input against declarative field rules
// before any store is touched.
package validation

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-employee-api/internal/model"
	"go-employee-api/pkg/apierror"
)

const (
	LocationBody   = "body"
	LocationParams = "params"
	LocationQuery  = "query"
)

// check pairs a validator tag with the message reported when it fails.
type check struct {
	tag     string
	message string
}

// rule lists the checks of one field in evaluation order. Only the first
// failing check of a field is reported.
type rule struct {
	field  string
	checks []check
}

const (
	// maxPasswordBytes is the longest input bcrypt hashes.
	maxPasswordBytes    = 72
	salaryIntegerDigits = 16
)

var errSalaryTooLarge = errors.New("salary too large")

var validate *validator.Validate

func init() {
	validate = newValidator()
}

func newValidator() *validator.Validate {
	v := validator.New()
	must(v.RegisterValidation("decimal", isDecimal))
	must(v.RegisterValidation("nonnegative", isNonNegative))
	must(v.RegisterValidation("isodate", isISODate))
	must(v.RegisterValidation("salarymax", isSalaryInRange))
	must(v.RegisterValidation("identifier", isIdentifier))
	must(v.RegisterValidation("username", isUsername))
	must(v.RegisterValidation("passwordlen", isPasswordLength))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

var signupRules = []rule{
	{field: "username", checks: []check{
		{"required", "Username is required"},
		{"min=3,max=30", "Username must be between 3 and 30 characters"},
		{"username", "Username cannot contain spaces or @"},
	}},
	{field: "email", checks: []check{
		{"required,email", "Please provide a valid email"},
		{"max=254", "Email cannot exceed 254 characters"},
	}},
	{field: "password", checks: []check{
		{"min=6", "Password must be at least 6 characters long"},
		{"passwordlen", "Password cannot exceed 72 bytes"},
	}},
}

var loginRules = []rule{
	{field: "email", checks: []check{
		{"required,identifier", "Please provide a valid email"},
	}},
	{field: "password", checks: []check{
		{"required", "Password is required"},
	}},
}

var employeeRules = []rule{
	{field: "first_name", checks: []check{
		{"required", "First name is required"},
		{"max=50", "First name cannot exceed 50 characters"},
	}},
	{field: "last_name", checks: []check{
		{"required", "Last name is required"},
		{"max=50", "Last name cannot exceed 50 characters"},
	}},
	{field: "email", checks: []check{
		{"required,email", "Please provide a valid email"},
		{"max=254", "Email cannot exceed 254 characters"},
	}},
	{field: "position", checks: []check{
		{"required", "Position is required"},
		{"max=100", "Position cannot exceed 100 characters"},
	}},
	{field: "salary", checks: []check{
		{"required,decimal", "Salary must be a number"},
		{"nonnegative", "Salary cannot be negative"},
		{"salarymax", "Salary cannot exceed 9999999999999999.99"},
	}},
	{field: "date_of_joining", checks: []check{
		{"required,isodate", "Please provide a valid date for date_of_joining"},
	}},
	{field: "department", checks: []check{
		{"required", "Department is required"},
		{"max=100", "Department cannot exceed 100 characters"},
	}},
}

// apply runs rules over values. With partial set, absent fields are skipped;
// a present field must still pass every check.
func apply(rules []rule, values map[string]string, partial bool) []apierror.FieldError {
	var errs []apierror.FieldError
	for _, r := range rules {
		value, ok := values[r.field]
		if !ok && partial {
			continue
		}

		for _, c := range r.checks {
			if err := validate.Var(value, c.tag); err != nil {
				errs = append(errs, apierror.FieldError{Field: r.field, Message: c.message, Location: LocationBody})
				break
			}
		}
	}
	return errs
}

func ValidateSignup(req model.SignupRequest) (model.SignupRequest, error) {
	out := model.SignupRequest{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	}

	errs := apply(signupRules, map[string]string{
		"username": out.Username,
		"email":    out.Email,
		"password": out.Password,
	}, false)
	if len(errs) > 0 {
		return model.SignupRequest{}, apierror.Validation(errs)
	}

	out.Email = NormalizeEmail(out.Email)
	return out, nil
}

// ValidateLogin accepts an email or a username in the email field. The
// username field is used only when email is empty.
func ValidateLogin(req model.LoginRequest) (model.LoginRequest, error) {
	identifier := strings.TrimSpace(req.Email)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Username)
	}

	errs := apply(loginRules, map[string]string{
		"email":    identifier,
		"password": req.Password,
	}, false)
	if len(errs) > 0 {
		return model.LoginRequest{}, apierror.Validation(errs)
	}

	if validate.Var(identifier, "email") == nil {
		identifier = NormalizeEmail(identifier)
	}
	return model.LoginRequest{Email: identifier, Password: req.Password}, nil
}

// ParseEmployeeCreate validates a full employee field set and converts it.
// The returned employee has no id or timestamps yet.
func ParseEmployeeCreate(fields model.EmployeeFields) (model.Employee, error) {
	values := trimmed(fields)
	if errs := apply(employeeRules, values, false); len(errs) > 0 {
		return model.Employee{}, apierror.Validation(errs)
	}

	salary, _ := parseSalary(values["salary"])
	joined, _ := ParseDate(values["date_of_joining"])

	return model.Employee{
		FirstName:     values["first_name"],
		LastName:      values["last_name"],
		Email:         NormalizeEmail(values["email"]),
		Position:      values["position"],
		Department:    values["department"],
		Salary:        salary,
		DateOfJoining: joined,
	}, nil
}

// ParseEmployeeUpdate validates the fields present in a partial update.
func ParseEmployeeUpdate(fields model.EmployeeFields) (model.EmployeePatch, error) {
	values := trimmed(fields)
	if errs := apply(employeeRules, values, true); len(errs) > 0 {
		return model.EmployeePatch{}, apierror.Validation(errs)
	}

	var patch model.EmployeePatch
	if v, ok := values["first_name"]; ok {
		patch.FirstName = &v
	}
	if v, ok := values["last_name"]; ok {
		patch.LastName = &v
	}
	if v, ok := values["email"]; ok {
		email := NormalizeEmail(v)
		patch.Email = &email
	}
	if v, ok := values["position"]; ok {
		patch.Position = &v
	}
	if v, ok := values["department"]; ok {
		patch.Department = &v
	}
	if v, ok := values["salary"]; ok {
		salary, _ := parseSalary(v)
		patch.Salary = &salary
	}
	if v, ok := values["date_of_joining"]; ok {
		joined, _ := ParseDate(v)
		patch.DateOfJoining = &joined
	}

	return patch, nil
}

// ValidateEmployeeID rejects ids that are not UUIDs. field and location name
// where the id came from.
func ValidateEmployeeID(id string, field string, location string) error {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		e := apierror.New("MALFORMED_ID", "Invalid employee ID format", "", http.StatusBadRequest)
		e.Errors = []apierror.FieldError{{Field: field, Message: "Invalid employee ID format", Location: location}}
		return e
	}
	return nil
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 date-time and returns the
// calendar date at midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		t, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, err
		}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// NormalizeEmail lowercases an address and canonicalizes gmail addresses by
// dropping dots and +tags from the local part.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return email
	}

	local, domain := email[:at], email[at+1:]
	if domain == "googlemail.com" {
		domain = "gmail.com"
	}
	if domain == "gmail.com" {
		if plus := strings.Index(local, "+"); plus >= 0 {
			local = local[:plus]
		}
		local = strings.ReplaceAll(local, ".", "")
	}
	return local + "@" + domain
}

func trimmed(fields model.EmployeeFields) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = strings.TrimSpace(v)
	}
	return out
}

// parseSalary rounds to cents, the precision salaries are stored with, and
// rejects values with more than 16 integer digits. Magnitude is checked
// before rounding.
func parseSalary(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}

	magnitude := d.NumDigits() + int(d.Exponent())
	switch {
	case magnitude > salaryIntegerDigits:
		return decimal.Decimal{}, errSalaryTooLarge
	case magnitude < -2:
		return decimal.Zero, nil
	}

	d = d.Round(2)
	if d.NumDigits()+int(d.Exponent()) > salaryIntegerDigits {
		return decimal.Decimal{}, errSalaryTooLarge
	}
	return d, nil
}

func isDecimal(fl validator.FieldLevel) bool {
	_, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
	return err == nil
}

func isSalaryInRange(fl validator.FieldLevel) bool {
	_, err := parseSalary(fl.Field().String())
	return err == nil
}

func isNonNegative(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
	return err == nil && !d.IsNegative()
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

// isIdentifier accepts an email address or anything signup would take as a
// username.
func isIdentifier(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if validate.Var(value, "email") == nil {
		return true
	}
	n := len([]rune(value))
	return n >= 3 && n <= 30 && validUsernameChars(value)
}

func isUsername(fl validator.FieldLevel) bool {
	return validUsernameChars(fl.Field().String())
}

func validUsernameChars(value string) bool {
	return !strings.ContainsFunc(value, func(r rune) bool {
		return r == '@' || unicode.IsSpace(r)
	})
}

// isPasswordLength counts bytes, not runes.
func isPasswordLength(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= maxPasswordBytes
}
