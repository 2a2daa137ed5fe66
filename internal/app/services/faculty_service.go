package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/pkg/apperrors"
)

// FacultyService defines the interface for faculty and role lookups
type FacultyService interface {
	GetAllFaculties(ctx context.Context) ([]*models.Faculty, error)
	GetFacultyByID(ctx context.Context, id int64) (*models.Faculty, error)
	GetRoles(ctx context.Context) ([]models.RoleDefinition, error)
}

// facultyServiceImpl implements the FacultyService interface
type facultyServiceImpl struct {
	facultyRepo FacultyStore
	roleRepo    RoleStore
}

// NewFacultyService creates a new faculty service instance
func NewFacultyService(facultyRepo FacultyStore, roleRepo RoleStore) FacultyService {
	return &facultyServiceImpl{
		facultyRepo: facultyRepo,
		roleRepo:    roleRepo,
	}
}

// GetAllFaculties retrieves all faculties
func (s *facultyServiceImpl) GetAllFaculties(ctx context.Context) ([]*models.Faculty, error) {
	faculties, err := s.facultyRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get faculties: %w", err)
	}
	return faculties, nil
}

// GetFacultyByID retrieves a faculty by ID
func (s *facultyServiceImpl) GetFacultyByID(ctx context.Context, id int64) (*models.Faculty, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("id", "Invalid faculty ID")
	}

	faculty, err := s.facultyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrFacultyNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrFacultyNotFound, "Faculty not found")
		}
		return nil, fmt.Errorf("failed to get faculty: %w", err)
	}
	return faculty, nil
}

// GetRoles returns the stored role definitions, or the built-in ones when none are stored
func (s *facultyServiceImpl) GetRoles(ctx context.Context) ([]models.RoleDefinition, error) {
	roles, err := s.roleRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}
	if len(roles) == 0 {
		return models.BuiltinRoles(), nil
	}
	return roles, nil
}
