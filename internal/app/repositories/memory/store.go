// Package memory is an in-process implementation of repositories.Store.
// It enforces the same uniqueness and reference rules as the Postgres schema.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/repositories"
)

// Operation names accepted by FailOn
const (
	OpPreRegistrationCreate = "pre_registrations.create"
	OpPreRegistrationGet    = "pre_registrations.get"
	OpPreRegistrationMark   = "pre_registrations.mark_registered"
	OpPreRegistrationDelete = "pre_registrations.delete"
	OpProfileCreate         = "profiles.create"
	OpProfileGet            = "profiles.get"
	OpProfileDelete         = "profiles.delete"
	OpStudentCreate         = "students.create"
	OpStudentGet            = "students.get"
	OpStudentIDs            = "students.ids_with_prefix"
	OpStudentRekey          = "students.rekey"
	OpStudentDelete         = "students.delete"
	OpDepartmentWrite       = "departments.write"
	OpDepartmentGet         = "departments.get"
	OpProfessorCreate       = "professors.create"
	OpProfessorGet          = "professors.get"
	OpProfessorDelete       = "professors.delete"
	OpCourseWrite           = "courses.write"
	OpCourseGet             = "courses.get"
	OpPing                  = "ping"
)

type state struct {
	preRegistrations map[uuid.UUID]models.PreRegistration
	profiles         map[uuid.UUID]models.Profile
	students         map[uuid.UUID]models.Student
	departments      map[uuid.UUID]models.Department
	professors       map[uuid.UUID]models.Professor
	courses          map[uuid.UUID]models.Course
}

func newState() *state {
	return &state{
		preRegistrations: make(map[uuid.UUID]models.PreRegistration),
		profiles:         make(map[uuid.UUID]models.Profile),
		students:         make(map[uuid.UUID]models.Student),
		departments:      make(map[uuid.UUID]models.Department),
		professors:       make(map[uuid.UUID]models.Professor),
		courses:          make(map[uuid.UUID]models.Course),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.preRegistrations {
		c.preRegistrations[k] = v
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.students {
		c.students[k] = v
	}
	for k, v := range s.departments {
		c.departments[k] = v
	}
	for k, v := range s.professors {
		c.professors[k] = v
	}
	for k, v := range s.courses {
		c.courses[k] = v
	}
	return c
}

type shared struct {
	mu       sync.Mutex
	data     *state
	failures map[string]error
}

// Store is an in-memory repositories.Store. The zero value is not usable; call New.
type Store struct {
	sh   *shared
	inTx bool
}

var _ repositories.Store = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{sh: &shared{data: newState(), failures: make(map[string]error)}}
}

// FailOn makes every call of op return err until ClearFailures is called
func (s *Store) FailOn(op string, err error) {
	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()
	s.sh.failures[op] = err
}

// ClearFailures removes all injected failures
func (s *Store) ClearFailures() {
	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()
	s.sh.failures = make(map[string]error)
}

// do runs fn with the state locked, or directly when already inside WithTx
func (s *Store) do(op string, fn func(st *state) error) error {
	if !s.inTx {
		s.sh.mu.Lock()
		defer s.sh.mu.Unlock()
	}
	if err := s.sh.failures[op]; err != nil {
		return err
	}
	return fn(s.sh.data)
}

func (s *Store) PreRegistrations() repositories.PreRegistrationRepository {
	return &preRegistrationRepo{s: s}
}

func (s *Store) Profiles() repositories.ProfileRepository {
	return &profileRepo{s: s}
}

func (s *Store) Students() repositories.StudentRepository {
	return &studentRepo{s: s}
}

func (s *Store) Departments() repositories.DepartmentRepository {
	return &departmentRepo{s: s}
}

func (s *Store) Professors() repositories.ProfessorRepository {
	return &professorRepo{s: s}
}

func (s *Store) Courses() repositories.CourseRepository {
	return &courseRepo{s: s}
}

// WithTx serializes transactions and restores the previous state when fn fails
func (s *Store) WithTx(ctx context.Context, fn func(tx repositories.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()

	snapshot := s.sh.data.clone()
	if err := fn(&Store{sh: s.sh, inTx: true}); err != nil {
		s.sh.data = snapshot
		return err
	}
	return nil
}

// Ping honours injected failures so tests can simulate an unreachable store
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.do(OpPing, func(*state) error { return nil })
}
