package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/app/repositories"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/helpers"
	"github.com/yigit/uniportal/internal/pkg/validation"
)

// DepartmentService handles department-related operations
type DepartmentService struct {
	store  repositories.Store
	logger zerolog.Logger
}

// NewDepartmentService creates a new department service instance
func NewDepartmentService(store repositories.Store, logger zerolog.Logger) *DepartmentService {
	return &DepartmentService{store: store, logger: logger}
}

// buildDepartment validates department data before database operations
func buildDepartment(name, code, description string) (*models.Department, error) {
	department := &models.Department{
		Name:        strings.TrimSpace(name),
		Code:        strings.ToUpper(strings.TrimSpace(code)),
		Description: helpers.NullableString(description),
	}

	if department.Name == "" {
		return nil, apperrors.NewValidationError("name cannot be empty")
	}

	// Department code should be alphanumeric and uppercase
	if !validation.CompiledPatterns.DepartmentCode.MatchString(department.Code) {
		return nil, apperrors.NewValidationError("code must be 2-10 alphanumeric characters").
			WithDetails(map[string]interface{}{"code": code})
	}
	return department, nil
}

// CreateDepartment creates a new department
func (s *DepartmentService) CreateDepartment(ctx context.Context, req *dto.CreateDepartmentRequest) (*models.Department, error) {
	department, err := buildDepartment(req.Name, req.Code, req.Description)
	if err != nil {
		return nil, err
	}

	if err := s.store.Departments().Create(ctx, department); err != nil {
		if errors.Is(err, apperrors.ErrDepartmentAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating department: %w", err)
	}
	s.logger.Info().Str("code", department.Code).Msg("Department created")
	return department, nil
}

// GetDepartment resolves ref as a department ID, or failing that as a department code
func (s *DepartmentService) GetDepartment(ctx context.Context, ref string) (*models.Department, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		return s.store.Departments().GetByID(ctx, id)
	}
	code := strings.ToUpper(ref)
	if !validation.CompiledPatterns.DepartmentCode.MatchString(code) {
		return nil, apperrors.NewValidationError("department reference must be an ID or a department code").
			WithDetails(map[string]interface{}{"department": ref})
	}
	return s.store.Departments().GetByCode(ctx, code)
}

// GetAllDepartments retrieves all departments
func (s *DepartmentService) GetAllDepartments(ctx context.Context) ([]*models.Department, error) {
	departments, err := s.store.Departments().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving departments: %w", err)
	}
	return departments, nil
}

// UpdateDepartment updates an existing department
func (s *DepartmentService) UpdateDepartment(ctx context.Context, id uuid.UUID, req *dto.UpdateDepartmentRequest) (*models.Department, error) {
	department, err := buildDepartment(req.Name, req.Code, req.Description)
	if err != nil {
		return nil, err
	}
	department.ID = id

	if err := s.store.Departments().Update(ctx, department); err != nil {
		return nil, err
	}
	return department, nil
}

// DeleteDepartment deletes a department that no student or course refers to
func (s *DepartmentService) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Departments().Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("departmentID", id.String()).Msg("Department deleted")
	return nil
}
