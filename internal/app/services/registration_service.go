package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/app/repositories"
	"github.com/yigit/uniportal/internal/identity"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/helpers"
	"github.com/yigit/uniportal/internal/pkg/metrics"
	"github.com/yigit/uniportal/internal/pkg/validation"
)

// RegistrationState is a step of the registration state machine
type RegistrationState string

const (
	StateStart           RegistrationState = "START"
	StateValidated       RegistrationState = "VALIDATED"
	StateEligible        RegistrationState = "ELIGIBLE"
	StateIdentityCreated RegistrationState = "IDENTITY_CREATED"
	StateProfileCreated  RegistrationState = "PROFILE_CREATED"
	StateDone            RegistrationState = "DONE"
	StateRollingBack     RegistrationState = "ROLLING_BACK"
	StateFailed          RegistrationState = "FAILED"
)

// Registrant is a validated registration request
type Registrant struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     *string
	Role      models.Role
}

// StudentDetails is the academic part of a student registration
type StudentDetails struct {
	DepartmentCode string
	Batch          string
	Semester       int
}

// RegistrationResult describes the accounts created by a registration
type RegistrationResult struct {
	Profile *models.Profile
	Student *models.Student
}

// RegistrationService reconciles the identity provider with the relational store
// so that a registration either creates every record or leaves nothing behind.
type RegistrationService struct {
	store    repositories.Store
	identity identity.Provider
	ids      *StudentIDGenerator
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	timeout  time.Duration
	now      func() time.Time
}

// NewRegistrationService creates a new RegistrationService
func NewRegistrationService(
	store repositories.Store,
	provider identity.Provider,
	ids *StudentIDGenerator,
	m *metrics.Metrics,
	timeout time.Duration,
	logger zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		store:    store,
		identity: provider,
		ids:      ids,
		metrics:  m,
		logger:   logger,
		timeout:  timeout,
		now:      time.Now,
	}
}

// registration tracks one attempt through the state machine
type registration struct {
	state  RegistrationState
	role   models.Role
	logger zerolog.Logger
}

func (r *registration) advance(to RegistrationState) {
	r.state = to
	r.logger.Debug().Str("state", string(to)).Msg("Registration advanced")
}

// Register handles self-registration of students, professors and admins.
// callerRole is the role of the authenticated session, empty for anonymous callers.
func (s *RegistrationService) Register(ctx context.Context, req *dto.RegisterRequest, callerRole models.Role) (*dto.RegisterResponse, error) {
	res, err := s.run(ctx, registrantFromRequest(req.FirstName, req.LastName, req.Email, req.Password, req.Phone), req.Role, callerRole, nil)
	if err != nil {
		return nil, err
	}
	return &dto.RegisterResponse{User: dto.RegisteredUser{
		ID:    res.Profile.ID,
		Email: res.Profile.Email,
		Role:  res.Profile.Role,
	}}, nil
}

// RegisterStudent registers a student together with the student record
func (s *RegistrationService) RegisterStudent(ctx context.Context, req *dto.StudentRegisterRequest) (*dto.StudentRegisterResponse, error) {
	details := &StudentDetails{
		DepartmentCode: strings.ToUpper(strings.TrimSpace(req.Department)),
		Batch:          strings.TrimSpace(req.Batch),
		Semester:       req.Semester,
	}
	res, err := s.run(ctx, registrantFromRequest(req.FirstName, req.LastName, req.Email, req.Password, req.Phone), string(models.RoleStudent), "", details)
	if err != nil {
		return nil, err
	}
	return &dto.StudentRegisterResponse{ID: res.Student.ID, StudentID: res.Student.StudentID}, nil
}

func registrantFromRequest(firstName, lastName, email, password, phone string) Registrant {
	return Registrant{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     helpers.NormalizeEmail(email),
		Password:  password,
		Phone:     helpers.NullableString(phone),
	}
}

func validateRegistrant(r *Registrant, role string) error {
	parsed, ok := models.ParseRole(role)
	if !ok {
		return apperrors.NewValidationError("role must be one of: student, professor, admin").
			WithDetails(map[string]interface{}{"role": role})
	}
	r.Role = parsed

	fields := validation.Fields{}
	fields.Check(validation.IsPersonName(r.FirstName), "firstName", "first name is required")
	fields.Check(validation.IsPersonName(r.LastName), "lastName", "last name is required")
	fields.Check(validation.IsEmail(r.Email), "email", "a valid email is required")
	fields.Check(len(r.Password) >= validation.PasswordMinLength, "password",
		fmt.Sprintf("password must be at least %d characters", validation.PasswordMinLength))
	if !fields.Empty() {
		return apperrors.NewValidationError("registration data is invalid").WithDetails(fields)
	}
	return nil
}

func validateStudentDetails(d *StudentDetails) error {
	if d.Semester == 0 {
		d.Semester = validation.MinSemester
	}
	fields := validation.Fields{}
	fields.Check(validation.CompiledPatterns.DepartmentCode.MatchString(d.DepartmentCode), "department",
		"department code must be 2-10 upper-case letters or digits")
	fields.Check(validation.CompiledPatterns.Batch.MatchString(d.Batch), "batch", "batch must be 2-4 digits")
	fields.Check(validation.IsSemester(d.Semester), "semester", "semester must be between 1 and 12")
	if !fields.Empty() {
		return apperrors.NewValidationError("student data is invalid").WithDetails(fields)
	}
	return nil
}

// run drives one registration through the state machine
func (s *RegistrationService) run(ctx context.Context, r Registrant, role string, callerRole models.Role, student *StudentDetails) (*RegistrationResult, error) {
	reg := &registration{
		state:  StateStart,
		logger: s.logger.With().Str("email", r.Email).Str("role", role).Logger(),
	}

	res, err := s.execute(ctx, reg, &r, role, callerRole, student)
	if err != nil {
		reached := reg.state
		reg.advance(StateFailed)
		s.metrics.ObserveRegistration(string(reg.role), string(StateFailed))
		reg.logger.Warn().Err(err).Str("reached", string(reached)).Msg("Registration failed")
		return nil, err
	}

	reg.advance(StateDone)
	s.metrics.ObserveRegistration(string(reg.role), string(StateDone))
	reg.logger.Info().Str("profileID", res.Profile.ID.String()).Msg("Registration completed")
	return res, nil
}

func (s *RegistrationService) execute(ctx context.Context, reg *registration, r *Registrant, role string, callerRole models.Role, student *StudentDetails) (*RegistrationResult, error) {
	if err := validateRegistrant(r, role); err != nil {
		return nil, err
	}
	reg.role = r.Role
	if student != nil {
		if err := validateStudentDetails(student); err != nil {
			return nil, err
		}
	}
	reg.advance(StateValidated)

	pre, err := s.checkEligibility(ctx, r, callerRole)
	if err != nil {
		return nil, err
	}
	reg.advance(StateEligible)

	idCtx, cancel := withTimeout(ctx, s.timeout)
	account, err := s.identity.CreateAccount(idCtx, r.Email, r.Password)
	cancel()
	if err != nil {
		return nil, backendErr("create identity account", err)
	}
	reg.advance(StateIdentityCreated)

	comp := NewCompensator(reg.logger, s.metrics)
	comp.Add("identity.delete", func(ctx context.Context) error {
		return s.identity.DeleteAccount(ctx, account.ID)
	})

	res, err := s.persist(ctx, reg, r, account, pre, student)
	if err != nil {
		reg.advance(StateRollingBack)
		return nil, comp.Run(ctx, err)
	}
	return res, nil
}

// checkEligibility re-runs the pre-registration check; admins may only be registered by admins
func (s *RegistrationService) checkEligibility(ctx context.Context, r *Registrant, callerRole models.Role) (*models.PreRegistration, error) {
	if !r.Role.RequiresPreRegistration() {
		if callerRole != models.RoleAdmin {
			return nil, apperrors.NewCustomError(apperrors.ErrNotEligible, "only an administrator can register another administrator")
		}
		return nil, nil
	}

	lookupCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	pre, err := findPreRegistration(lookupCtx, s.store.PreRegistrations(), r.Email, r.Role)
	if err != nil {
		return nil, err
	}
	if !helpers.NamesMatch(pre.FirstName, r.FirstName) || !helpers.NamesMatch(pre.LastName, r.LastName) {
		return nil, apperrors.NewCustomError(apperrors.ErrNameMismatch,
			"the name you entered does not match the name on file").
			WithDetails(map[string]interface{}{
				"requiredName": dto.RequiredName{FirstName: pre.FirstName, LastName: pre.LastName},
			})
	}
	return pre, nil
}

// persist writes the profile and the role records in one transaction
func (s *RegistrationService) persist(
	ctx context.Context,
	reg *registration,
	r *Registrant,
	account *identity.Account,
	pre *models.PreRegistration,
	details *StudentDetails,
) (*RegistrationResult, error) {
	txCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	res := &RegistrationResult{}
	err := s.store.WithTx(txCtx, func(tx repositories.Store) error {
		profile := &models.Profile{
			ID:        account.ID,
			Email:     r.Email,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Phone:     r.Phone,
			Role:      r.Role,
			IsActive:  true,
		}
		if err := tx.Profiles().Create(txCtx, profile); err != nil {
			return fmt.Errorf("error creating profile: %w", err)
		}
		res.Profile = profile
		reg.advance(StateProfileCreated)

		if pre != nil {
			if err := tx.PreRegistrations().MarkRegistered(txCtx, pre.ID, account.ID, s.now().UTC()); err != nil {
				return fmt.Errorf("error linking pre-registration: %w", err)
			}
		}

		switch r.Role {
		case models.RoleProfessor:
			if err := tx.Professors().Create(txCtx, &models.Professor{ID: account.ID}); err != nil {
				return fmt.Errorf("error creating professor record: %w", err)
			}
		case models.RoleStudent:
			student, err := s.attachStudent(txCtx, tx, account.ID, pre, details)
			if err != nil {
				return err
			}
			res.Student = student
		}
		return nil
	})
	if err != nil {
		return nil, backendErr("persist registration", err)
	}
	return res, nil
}

// checkPlaceholder compares submitted academic details with an admin-created record. Department and
// batch fix the student ID, so a difference is a conflict; the record's semester wins over the submitted one.
func (s *RegistrationService) checkPlaceholder(ctx context.Context, tx repositories.Store, placeholder *models.Student, details *StudentDetails) error {
	if details == nil {
		return nil
	}
	dept, err := tx.Departments().GetByID(ctx, placeholder.DepartmentID)
	if err != nil {
		return fmt.Errorf("error resolving department of student record: %w", err)
	}
	if dept.Code != details.DepartmentCode || placeholder.Batch != details.Batch {
		return apperrors.NewCustomError(apperrors.ErrConflict, fmt.Sprintf(
			"a student record already exists for this email in department %s, batch %s", dept.Code, placeholder.Batch)).
			WithDetails(map[string]interface{}{
				"department": dept.Code,
				"batch":      placeholder.Batch,
				"studentId":  placeholder.StudentID,
			})
	}
	if placeholder.Semester != details.Semester {
		s.logger.Warn().
			Str("studentID", placeholder.StudentID).
			Int("recordSemester", placeholder.Semester).
			Int("submittedSemester", details.Semester).
			Msg("Submitted semester differs from student record, keeping record")
	}
	return nil
}

// attachStudent relinks an admin-created placeholder record or creates a new student record
func (s *RegistrationService) attachStudent(
	ctx context.Context,
	tx repositories.Store,
	profileID uuid.UUID,
	pre *models.PreRegistration,
	details *StudentDetails,
) (*models.Student, error) {
	if pre != nil {
		placeholder, err := tx.Students().GetByID(ctx, pre.ID)
		switch {
		case err == nil:
			if err := s.checkPlaceholder(ctx, tx, placeholder, details); err != nil {
				return nil, err
			}
			if err := tx.Students().Rekey(ctx, pre.ID, profileID); err != nil {
				return nil, fmt.Errorf("error relinking student record: %w", err)
			}
			placeholder.ID = profileID
			s.logger.Info().
				Str("studentID", placeholder.StudentID).
				Str("profileID", profileID.String()).
				Msg("Linked existing student record to new profile")
			return placeholder, nil
		case !errors.Is(err, apperrors.ErrStudentNotFound):
			return nil, fmt.Errorf("error looking up student record: %w", err)
		}
	}

	// Plain /register for a student: the academic record is completed later
	if details == nil {
		return nil, nil
	}

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

	student := &models.Student{
		ID:           profileID,
		StudentID:    studentID,
		DepartmentID: dept.ID,
		Batch:        details.Batch,
		Semester:     details.Semester,
		Status:       models.StudentStatusActive,
	}
	if err := tx.Students().Create(ctx, student); err != nil {
		if errors.Is(err, apperrors.ErrStudentIDTaken) {
			return nil, apperrors.NewCustomError(apperrors.ErrStudentIDTaken,
				"generated student ID was taken concurrently, please retry")
		}
		return nil, fmt.Errorf("error creating student record: %w", err)
	}
	return student, nil
}
