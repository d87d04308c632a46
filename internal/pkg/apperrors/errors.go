package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")

	// Rate limiting
	ErrRateLimited = errors.New("rate limit exceeded")
)

// Registration errors
var (
	ErrNotEligible           = errors.New("not eligible to register")
	ErrNameMismatch          = errors.New("name does not match pre-registration")
	ErrDuplicateAccount      = errors.New("an account with this email already exists")
	ErrAlreadyRegistered     = errors.New("pre-registration already consumed")
	ErrIDGenerationExhausted = errors.New("could not generate a unique student ID")
)

// Reference data errors
var (
	ErrDepartmentNotFound      = errors.New("department not found")
	ErrDepartmentAlreadyExists = errors.New("department with this code already exists")
	ErrDepartmentHasRelations  = errors.New("department has associated students or courses and cannot be deleted")

	ErrProfessorNotFound = errors.New("professor not found")

	ErrCourseNotFound   = errors.New("course not found")
	ErrDuplicateCourse  = errors.New("course with this code already exists")
	ErrStudentNotFound  = errors.New("student not found")
	ErrStudentIDTaken   = errors.New("student ID already exists")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrIdentityNotFound = errors.New("identity account not found")

	ErrPreRegistrationNotFound = errors.New("pre-registration not found")
	ErrPreRegistrationExists   = errors.New("pre-registration for this email already exists")
)

// Backend errors
var (
	// ErrBackendUnavailable marks transient failures of the relational store or the
	// identity provider. Clients may retry.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrLookupFailed is returned when the eligibility lookup cannot reach the store.
	ErrLookupFailed = errors.New("eligibility lookup failed")
)

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewValidationError creates a validation error carrying a client-facing message
func NewValidationError(message string) *CustomError {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// Is returns whether err matches target or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// MessageOf returns the client-facing message of err if it carries one.
func MessageOf(err error) (string, map[string]interface{}, bool) {
	var custom *CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message, custom.Details, true
	}
	return "", nil, false
}
