package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/app/repositories"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/helpers"
	"github.com/yigit/uniportal/internal/pkg/metrics"
	"github.com/yigit/uniportal/internal/pkg/validation"
)

// Eligibility messages shown to registrants
const (
	msgEligible          = "You are eligible to register as a %s"
	msgNotPreRegistered  = "No pre-registration was found for this email and role. Please contact the administration office."
	msgAlreadyRegistered = "This email has already been used to register an account. Please log in instead."
)

// EligibilityService checks administrator pre-approval. It never writes.
type EligibilityService struct {
	store   repositories.Store
	metrics *metrics.Metrics
	logger  zerolog.Logger
	timeout time.Duration
}

// NewEligibilityService creates a new EligibilityService
func NewEligibilityService(store repositories.Store, m *metrics.Metrics, timeout time.Duration, logger zerolog.Logger) *EligibilityService {
	return &EligibilityService{
		store:   store,
		metrics: m,
		logger:  logger,
		timeout: timeout,
	}
}

// parseRegistrantRole accepts only the roles that need a pre-registration
func parseRegistrantRole(role string) (models.Role, error) {
	r, ok := models.ParseRole(role)
	if !ok || !r.RequiresPreRegistration() {
		return "", apperrors.NewValidationError("role must be one of: student, professor").
			WithDetails(map[string]interface{}{"role": role})
	}
	return r, nil
}

// findPreRegistration returns the unconsumed pre-registration of email for role.
// It fails with ErrNotEligible, ErrAlreadyRegistered or ErrLookupFailed.
func findPreRegistration(ctx context.Context, repo repositories.PreRegistrationRepository, email string, role models.Role) (*models.PreRegistration, error) {
	pre, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrPreRegistrationNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrNotEligible, msgNotPreRegistered)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrLookupFailed, backendErr("find pre-registration", err))
	}
	if pre.Role != role {
		return nil, apperrors.NewCustomError(apperrors.ErrNotEligible, msgNotPreRegistered)
	}
	if pre.IsRegistered() {
		return nil, apperrors.NewCustomError(apperrors.ErrAlreadyRegistered, msgAlreadyRegistered)
	}
	return pre, nil
}

// Check reports whether email may self-register as role and, if so, which name is on file
func (s *EligibilityService) Check(ctx context.Context, email, role string) (*dto.EligibilityResponse, error) {
	r, err := parseRegistrantRole(role)
	if err != nil {
		return nil, err
	}
	email = helpers.NormalizeEmail(email)
	if !validation.IsEmail(email) {
		return nil, apperrors.NewValidationError("invalid email format")
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	pre, err := findPreRegistration(ctx, s.store.PreRegistrations(), email, r)
	switch {
	case err == nil:
		s.metrics.ObserveEligibility(r.String(), true)
		return &dto.EligibilityResponse{
			Eligible: true,
			Message:  fmt.Sprintf(msgEligible, r),
			RequiredName: &dto.RequiredName{
				FirstName: pre.FirstName,
				LastName:  pre.LastName,
			},
		}, nil
	case errors.Is(err, apperrors.ErrNotEligible), errors.Is(err, apperrors.ErrAlreadyRegistered):
		s.metrics.ObserveEligibility(r.String(), false)
		msg, _, _ := apperrors.MessageOf(err)
		return &dto.EligibilityResponse{Eligible: false, Message: msg}, nil
	default:
		s.logger.Error().Err(err).Str("role", r.String()).Msg("Eligibility lookup failed")
		return nil, err
	}
}
