package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"go-employee-api/internal/database"
	"go-employee-api/internal/model"
)

// GormEmployeeRepository is the EmployeeStore of the embedded SQLite backend.
type GormEmployeeRepository struct {
	db *gorm.DB
}

func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

func (r *GormEmployeeRepository) Create(ctx context.Context, e model.Employee) error {
	err := r.db.WithContext(ctx).Create(&e).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

func (r *GormEmployeeRepository) FindByID(ctx context.Context, id string) (model.Employee, error) {
	var e model.Employee
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Employee{}, model.ErrEmployeeNotFound
	}
	if err != nil {
		return model.Employee{}, fmt.Errorf("find employee by id: %w", err)
	}
	return e, nil
}

func (r *GormEmployeeRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Employee{}).Where("email = ?", email)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check employee email: %w", err)
	}
	return count > 0, nil
}

func (r *GormEmployeeRepository) List(ctx context.Context, filter model.EmployeeFilter) ([]model.Employee, error) {
	q := r.db.WithContext(ctx).Model(&model.Employee{})
	if department := strings.TrimSpace(filter.Department); department != "" {
		q = q.Where(database.LowerFunc+`(department) LIKE ? ESCAPE '\'`, containsPattern(department))
	}
	if position := strings.TrimSpace(filter.Position); position != "" {
		q = q.Where(database.LowerFunc+`(position) LIKE ? ESCAPE '\'`, containsPattern(position))
	}

	items := make([]model.Employee, 0)
	if err := q.Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return items, nil
}

func (r *GormEmployeeRepository) Update(ctx context.Context, id string, patch model.EmployeePatch) error {
	cols := patch.Columns()
	cols["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).Model(&model.Employee{}).Where("id = ?", id).Updates(cols)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return model.ErrDuplicateEmail
	}
	if res.Error != nil {
		return fmt.Errorf("update employee: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrEmployeeNotFound
	}
	return nil
}

func (r *GormEmployeeRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Employee{})
	if res.Error != nil {
		return fmt.Errorf("delete employee: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrEmployeeNotFound
	}
	return nil
}
