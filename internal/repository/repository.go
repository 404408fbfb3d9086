package repository

import (
	"context"
	"strings"

	"go-employee-api/internal/model"
)

// CredentialStore persists user accounts.
type CredentialStore interface {
	Create(ctx context.Context, u model.User) error
	FindByID(ctx context.Context, id string) (model.User, error)
	// FindByIdentifier matches the identifier against email or username.
	// An email match wins when both could match.
	FindByIdentifier(ctx context.Context, identifier string) (model.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (bool, error)
}

// EmployeeStore persists employee records.
type EmployeeStore interface {
	Create(ctx context.Context, e model.Employee) error
	FindByID(ctx context.Context, id string) (model.Employee, error)
	// ExistsByEmail reports whether another employee than excludeID uses email.
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	// List returns matching employees, newest first.
	List(ctx context.Context, filter model.EmployeeFilter) ([]model.Employee, error)
	Update(ctx context.Context, id string, patch model.EmployeePatch) error
	Delete(ctx context.Context, id string) error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lower-cased LIKE pattern matching value as a
// literal substring.
func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(value))) + "%"
}
