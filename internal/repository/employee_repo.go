package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"go-employee-api/internal/model"
)

type EmployeeRepository struct {
	pool *pgxpool.Pool
}

func NewEmployeeRepository(pool *pgxpool.Pool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

const employeeColumns = `id::text, first_name, last_name, email, position, department,
	salary::text, date_of_joining, COALESCE(profile_picture, ''), created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (model.Employee, error) {
	var (
		e      model.Employee
		salary string
	)
	if err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Position, &e.Department,
		&salary, &e.DateOfJoining, &e.ProfilePicture, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return model.Employee{}, err
	}

	parsed, err := decimal.NewFromString(salary)
	if err != nil {
		return model.Employee{}, fmt.Errorf("parse salary %q: %w", salary, err)
	}
	e.Salary = parsed

	return e, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, e model.Employee) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO employees
		 (id, first_name, last_name, email, position, department, salary, date_of_joining,
		  profile_picture, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::date, NULLIF($9, ''), $10, $11)`,
		e.ID, e.FirstName, e.LastName, e.Email, e.Position, e.Department,
		e.Salary.String(), e.DateOfJoining.Format(model.DateLayout),
		e.ProfilePicture, e.CreatedAt, e.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (model.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Employee{}, model.ErrEmployeeNotFound
	}

	e, err := scanEmployee(r.pool.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Employee{}, model.ErrEmployeeNotFound
	}
	if err != nil {
		return model.Employee{}, fmt.Errorf("find employee by id: %w", err)
	}
	return e, nil
}

func (r *EmployeeRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	var exists bool
	var err error
	if excludeID == "" {
		err = r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM employees WHERE email = $1)`, email).Scan(&exists)
	} else {
		err = r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM employees WHERE email = $1 AND id::text <> $2)`, email, excludeID).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("check employee email: %w", err)
	}
	return exists, nil
}

func (r *EmployeeRepository) List(ctx context.Context, filter model.EmployeeFilter) ([]model.Employee, error) {
	conditions := []string{}
	args := []any{}

	if department := strings.TrimSpace(filter.Department); department != "" {
		args = append(args, containsPattern(department))
		conditions = append(conditions, "lower(department) LIKE $"+strconv.Itoa(len(args))+` ESCAPE '\'`)
	}
	if position := strings.TrimSpace(filter.Position); position != "" {
		args = append(args, containsPattern(position))
		conditions = append(conditions, "lower(position) LIKE $"+strconv.Itoa(len(args))+` ESCAPE '\'`)
	}

	query := `SELECT ` + employeeColumns + ` FROM employees`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	items := make([]model.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *EmployeeRepository) Update(ctx context.Context, id string, patch model.EmployeePatch) error {
	sets := []string{}
	args := []any{id}
	add := func(column string, cast string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args))+cast)
	}

	if patch.FirstName != nil {
		add("first_name", "", *patch.FirstName)
	}
	if patch.LastName != nil {
		add("last_name", "", *patch.LastName)
	}
	if patch.Email != nil {
		add("email", "", *patch.Email)
	}
	if patch.Position != nil {
		add("position", "", *patch.Position)
	}
	if patch.Department != nil {
		add("department", "", *patch.Department)
	}
	if patch.Salary != nil {
		add("salary", "::numeric", patch.Salary.String())
	}
	if patch.DateOfJoining != nil {
		add("date_of_joining", "::date", patch.DateOfJoining.Format(model.DateLayout))
	}
	if patch.ProfilePicture != nil {
		add("profile_picture", "", *patch.ProfilePicture)
	}
	add("updated_at", "", time.Now().UTC())

	tag, err := r.pool.Exec(ctx,
		`UPDATE employees SET `+strings.Join(sets, ", ")+` WHERE id::text = $1`, args...)
	if isUniqueViolation(err) {
		return model.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEmployeeNotFound
	}
	return nil
}
