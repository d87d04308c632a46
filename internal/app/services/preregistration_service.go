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

// PreRegistrationService manages administrator pre-approvals
type PreRegistrationService struct {
	store  repositories.Store
	logger zerolog.Logger
}

// NewPreRegistrationService creates a new PreRegistrationService
func NewPreRegistrationService(store repositories.Store, logger zerolog.Logger) *PreRegistrationService {
	return &PreRegistrationService{store: store, logger: logger}
}

// Create pre-approves a person for a role
func (s *PreRegistrationService) Create(ctx context.Context, req *dto.CreatePreRegistrationRequest) (*models.PreRegistration, error) {
	role, err := parseRegistrantRole(req.Role)
	if err != nil {
		return nil, err
	}
	pre := &models.PreRegistration{
		Email:     helpers.NormalizeEmail(req.Email),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     helpers.NullableString(req.Phone),
		Role:      role,
	}
	if !validation.IsEmail(pre.Email) {
		return nil, apperrors.NewValidationError("invalid email format")
	}
	if pre.FirstName == "" || pre.LastName == "" {
		return nil, apperrors.NewValidationError("first and last name are required")
	}

	if err := s.store.PreRegistrations().Create(ctx, pre); err != nil {
		if errors.Is(err, apperrors.ErrPreRegistrationExists) {
			return nil, apperrors.NewCustomError(apperrors.ErrPreRegistrationExists,
				fmt.Sprintf("%s is already pre-registered", pre.Email))
		}
		return nil, fmt.Errorf("error creating pre-registration: %w", err)
	}

	s.logger.Info().Str("preRegistrationID", pre.ID.String()).Str("role", role.String()).Msg("Pre-registration created")
	return pre, nil
}

// List returns pre-registrations matching filter
func (s *PreRegistrationService) List(ctx context.Context, filter *dto.PreRegistrationFilter) ([]*models.PreRegistration, error) {
	var f repositories.PreRegistrationFilter
	if filter != nil {
		if filter.Role != "" {
			role, err := parseRegistrantRole(filter.Role)
			if err != nil {
				return nil, err
			}
			f.Role = &role
		}
		f.Registered = filter.Registered
	}
	list, err := s.store.PreRegistrations().List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("error listing pre-registrations: %w", err)
	}
	return list, nil
}

// Delete removes a pre-registration that has not been used yet and has no student record waiting on it
func (s *PreRegistrationService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		pre, err := tx.PreRegistrations().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if pre.IsRegistered() {
			return apperrors.NewConflictError("pre-registration has already been used to register an account")
		}
		if _, err := tx.Students().GetByID(ctx, id); err == nil {
			return apperrors.NewConflictError("a student record was created for this pre-registration")
		} else if !errors.Is(err, apperrors.ErrStudentNotFound) {
			return fmt.Errorf("error checking student records: %w", err)
		}
		return tx.PreRegistrations().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info().Str("preRegistrationID", id.String()).Msg("Pre-registration deleted")
	return nil
}
