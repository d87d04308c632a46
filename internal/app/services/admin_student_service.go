package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

// AdminStudentService creates student records on behalf of administrators.
// The student may not have an account yet; the record is keyed by the
// pre-registration id until the student self-registers.
type AdminStudentService struct {
	store   repositories.Store
	ids     *StudentIDGenerator
	metrics *metrics.Metrics
	logger  zerolog.Logger
	timeout time.Duration
}

// NewAdminStudentService creates a new AdminStudentService
func NewAdminStudentService(store repositories.Store, ids *StudentIDGenerator, m *metrics.Metrics, timeout time.Duration, logger zerolog.Logger) *AdminStudentService {
	return &AdminStudentService{
		store:   store,
		ids:     ids,
		metrics: m,
		logger:  logger,
		timeout: timeout,
	}
}

func validateAdminStudent(req *dto.AdminCreateStudentRequest) error {
	fields := map[string]interface{}{}
	if strings.TrimSpace(req.FirstName) == "" {
		fields["firstName"] = "first name is required"
	}
	if strings.TrimSpace(req.LastName) == "" {
		fields["lastName"] = "last name is required"
	}
	if !validation.IsEmail(helpers.NormalizeEmail(req.Email)) {
		fields["email"] = "a valid email is required"
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("student data is invalid").WithDetails(fields)
	}
	return nil
}

// CreateStudent reuses or creates the student's pre-registration and inserts the student record
func (s *AdminStudentService) CreateStudent(ctx context.Context, req *dto.AdminCreateStudentRequest) (*dto.AdminCreateStudentResponse, error) {
	if err := validateAdminStudent(req); err != nil {
		return nil, err
	}
	details := &StudentDetails{
		DepartmentCode: strings.ToUpper(strings.TrimSpace(req.Department)),
		Batch:          strings.TrimSpace(req.Batch),
		Semester:       req.Semester,
	}
	if err := validateStudentDetails(details); err != nil {
		return nil, err
	}
	email := helpers.NormalizeEmail(req.Email)

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var (
		resp  *dto.AdminCreateStudentResponse
		fresh bool
	)
	// A pre-registration created here is discarded with the transaction when the insert fails;
	// one that already existed is left untouched.
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		pre, created, err := s.preRegistrationFor(ctx, tx, req, email)
		if err != nil {
			return err
		}
		fresh = created

		student, err := s.insertStudent(ctx, tx, pre, details, helpers.NullableString(req.AcademicYear))
		if err != nil {
			return err
		}

		resp = &dto.AdminCreateStudentResponse{
			StudentID:       student.StudentID,
			Student:         student,
			PreRegistration: pre,
		}
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("email", email).Bool("freshPreRegistration", fresh).Msg("Admin student creation failed")
		return nil, backendErr("create student", err)
	}

	s.logger.Info().
		Str("studentID", resp.StudentID).
		Str("preRegistrationID", resp.PreRegistration.ID.String()).
		Msg("Student record created by administrator")
	return resp, nil
}

// preRegistrationFor returns the existing pre-registration of email or a new one.
// fresh reports whether it was created by this call.
func (s *AdminStudentService) preRegistrationFor(ctx context.Context, tx repositories.Store, req *dto.AdminCreateStudentRequest, email string) (*models.PreRegistration, bool, error) {
	pre, err := tx.PreRegistrations().GetByEmail(ctx, email)
	if err == nil {
		if pre.Role != models.RoleStudent {
			return nil, false, apperrors.NewConflictError(fmt.Sprintf("%s is pre-registered as %s", email, pre.Role))
		}
		return pre, false, nil
	}
	if !errors.Is(err, apperrors.ErrPreRegistrationNotFound) {
		return nil, false, fmt.Errorf("error looking up pre-registration: %w", err)
	}

	pre = &models.PreRegistration{
		Email:     email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     helpers.NullableString(req.Phone),
		Role:      models.RoleStudent,
	}
	if err := tx.PreRegistrations().Create(ctx, pre); err != nil {
		return nil, false, fmt.Errorf("error creating pre-registration: %w", err)
	}
	return pre, true, nil
}

func (s *AdminStudentService) insertStudent(ctx context.Context, tx repositories.Store, pre *models.PreRegistration, details *StudentDetails, academicYear *string) (*models.Student, error) {
	dept, err := tx.Departments().GetByCode(ctx, details.DepartmentCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrDepartmentNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrDepartmentNotFound,
				fmt.Sprintf("department %q not found", details.DepartmentCode))
		}
		return nil, fmt.Errorf("error resolving department: %w", err)
	}

	studentID, attempts, err := s.ids.Generate(ctx, tx.Students(), dept.Code, details.Batch)
	s.metrics.ObserveStudentIDAttempts(attempts)
	if err != nil {
		return nil, err
	}

	// Once the person has registered the record belongs to their profile
	key := pre.ID
	if pre.IdentityID != nil {
		key = *pre.IdentityID
	}

	student := &models.Student{
		ID:           key,
		StudentID:    studentID,
		DepartmentID: dept.ID,
		Batch:        details.Batch,
		Semester:     details.Semester,
		AcademicYear: academicYear,
		Status:       models.StudentStatusActive,
		Department:   dept,
	}
	if err := tx.Students().Create(ctx, student); err != nil {
		return nil, fmt.Errorf("error creating student record: %w", err)
	}
	return student, nil
}
