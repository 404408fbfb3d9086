package model

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// EmployeeFields is the raw, not yet validated field set of an employee
// write. Absent fields are not in the map.
type EmployeeFields map[string]string

func (f EmployeeFields) Lookup(field string) (string, bool) {
	v, ok := f[field]
	return v, ok
}
