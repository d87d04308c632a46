package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/uniportal/internal/app/models"
)

// Constraint names declared by the schema migrations
const (
	ConstraintPreRegistrationEmail = "pre_registrations_email_key"
	ConstraintProfileEmail         = "profiles_email_key"
	ConstraintStudentID            = "students_student_id_key"
	ConstraintDepartmentCode       = "departments_code_key"
	ConstraintCourseCode           = "courses_course_code_key"
	ConstraintCourseDepartment     = "courses_department_id_fkey"
	ConstraintCourseProfessor      = "courses_professor_id_fkey"
	ConstraintStudentDepartment    = "students_department_id_fkey"
)

// PreRegistrationFilter narrows ListPreRegistrations; nil fields are ignored
type PreRegistrationFilter struct {
	Role       *models.Role
	Registered *bool
}

// PreRegistrationRepository stores administrator pre-approvals
type PreRegistrationRepository interface {
	Create(ctx context.Context, p *models.PreRegistration) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PreRegistration, error)
	// GetByEmail matches case-insensitively
	GetByEmail(ctx context.Context, email string) (*models.PreRegistration, error)
	List(ctx context.Context, filter PreRegistrationFilter) ([]*models.PreRegistration, error)
	// MarkRegistered links the identity; it fails with ErrAlreadyRegistered if the record was consumed before
	MarkRegistered(ctx context.Context, id, identityID uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProfileRepository stores application profiles
type ProfileRepository interface {
	Create(ctx context.Context, p *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// StudentRepository stores student records
type StudentRepository interface {
	Create(ctx context.Context, s *models.Student) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error)
	// StudentIDsWithPrefix returns every student_id starting with prefix
	StudentIDsWithPrefix(ctx context.Context, prefix string) (map[string]struct{}, error)
	// Rekey moves a placeholder record from oldID to newID
	Rekey(ctx context.Context, oldID, newID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DepartmentRepository stores departments
type DepartmentRepository interface {
	Create(ctx context.Context, d *models.Department) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Department, error)
	// GetByCode matches the upper-cased code
	GetByCode(ctx context.Context, code string) (*models.Department, error)
	List(ctx context.Context) ([]*models.Department, error)
	Update(ctx context.Context, d *models.Department) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProfessorRepository stores professor records
type ProfessorRepository interface {
	Create(ctx context.Context, p *models.Professor) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Professor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CourseRepository stores courses
type CourseRepository interface {
	Create(ctx context.Context, c *models.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	List(ctx context.Context, departmentID *uuid.UUID) ([]*models.Course, error)
	Update(ctx context.Context, c *models.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Store gives access to every repository and to transactions spanning them
type Store interface {
	PreRegistrations() PreRegistrationRepository
	Profiles() ProfileRepository
	Students() StudentRepository
	Departments() DepartmentRepository
	Professors() ProfessorRepository
	Courses() CourseRepository

	// WithTx runs fn against a Store bound to one transaction. Nothing fn wrote
	// is kept if it returns an error. Calls on an already transactional Store
	// join the running transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
