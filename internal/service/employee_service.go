package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"go-employee-api/internal/model"
	"go-employee-api/internal/repository"
	"go-employee-api/internal/upload"
)

type EmployeeService struct {
	employees repository.EmployeeStore
	pictures  *PictureService
}

func NewEmployeeService(employees repository.EmployeeStore, pictures *PictureService) *EmployeeService {
	return &EmployeeService{employees: employees, pictures: pictures}
}

func (s *EmployeeService) List(ctx context.Context) ([]model.Employee, error) {
	return s.employees.List(ctx, model.EmployeeFilter{})
}

// Search matches department and position as case-insensitive substrings.
// Without filters it lists everything.
func (s *EmployeeService) Search(ctx context.Context, filter model.EmployeeFilter) ([]model.Employee, error) {
	if filter.IsEmpty() {
		return s.List(ctx)
	}
	return s.employees.List(ctx, filter)
}

func (s *EmployeeService) Get(ctx context.Context, id string) (model.Employee, error) {
	return s.employees.FindByID(ctx, id)
}

// Create persists a validated employee. The picture, when given, is
// committed only once the record exists.
func (s *EmployeeService) Create(ctx context.Context, e model.Employee, picture *upload.File) (model.Employee, error) {
	exists, err := s.employees.ExistsByEmail(ctx, e.Email, "")
	if err != nil {
		return model.Employee{}, err
	}
	if exists {
		return model.Employee{}, model.ErrDuplicateEmail
	}

	now := time.Now().UTC()
	e.ID = uuid.NewString()
	e.ProfilePicture = picture.Reference()
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := s.employees.Create(ctx, e); err != nil {
		return model.Employee{}, err
	}

	picture.Commit()
	return e, nil
}

// Update applies a partial change. A new picture replaces the previous one,
// which is removed after the record is updated.
func (s *EmployeeService) Update(ctx context.Context, id string, patch model.EmployeePatch, picture *upload.File) error {
	current, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if patch.Email != nil && *patch.Email != current.Email {
		exists, err := s.employees.ExistsByEmail(ctx, *patch.Email, id)
		if err != nil {
			return err
		}
		if exists {
			return model.ErrDuplicateEmail
		}
	}

	if ref := picture.Reference(); ref != "" {
		patch.ProfilePicture = &ref
	}

	if patch.IsEmpty() {
		return nil
	}

	if err := s.employees.Update(ctx, id, patch); err != nil {
		return err
	}
	picture.Commit()

	if patch.ProfilePicture != nil && current.ProfilePicture != "" && current.ProfilePicture != *patch.ProfilePicture {
		s.discardPicture(ctx, id, current.ProfilePicture)
	}
	return nil
}

func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	current, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.employees.Delete(ctx, id); err != nil {
		return err
	}

	if current.ProfilePicture != "" {
		s.discardPicture(ctx, id, current.ProfilePicture)
	}
	return nil
}

// discardPicture removes a picture no record refers to anymore. Failures
// leave an orphaned file and are only logged.
func (s *EmployeeService) discardPicture(ctx context.Context, id string, ref string) {
	if s.pictures == nil {
		return
	}
	if err := s.pictures.Remove(ctx, ref); err != nil {
		slog.Warn("failed to remove profile picture", "employee_id", id, "ref", ref, "error", err)
	}
}
