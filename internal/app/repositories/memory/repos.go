package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/repositories"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/helpers"
)

type preRegistrationRepo struct{ s *Store }

func (r *preRegistrationRepo) Create(_ context.Context, p *models.PreRegistration) error {
	return r.s.do(OpPreRegistrationCreate, func(st *state) error {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}
		p.Email = helpers.NormalizeEmail(p.Email)
		if _, exists := st.preRegistrations[p.ID]; exists {
			return apperrors.ErrPreRegistrationExists
		}
		for _, existing := range st.preRegistrations {
			if existing.Email == p.Email {
				return apperrors.ErrPreRegistrationExists
			}
		}
		st.preRegistrations[p.ID] = *p
		return nil
	})
}

func (r *preRegistrationRepo) GetByID(_ context.Context, id uuid.UUID) (*models.PreRegistration, error) {
	var out *models.PreRegistration
	err := r.s.do(OpPreRegistrationGet, func(st *state) error {
		p, ok := st.preRegistrations[id]
		if !ok {
			return apperrors.ErrPreRegistrationNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *preRegistrationRepo) GetByEmail(_ context.Context, email string) (*models.PreRegistration, error) {
	email = helpers.NormalizeEmail(email)
	var out *models.PreRegistration
	err := r.s.do(OpPreRegistrationGet, func(st *state) error {
		for _, p := range st.preRegistrations {
			if p.Email == email {
				p := p
				out = &p
				return nil
			}
		}
		return apperrors.ErrPreRegistrationNotFound
	})
	return out, err
}

func (r *preRegistrationRepo) List(_ context.Context, filter repositories.PreRegistrationFilter) ([]*models.PreRegistration, error) {
	out := []*models.PreRegistration{}
	err := r.s.do(OpPreRegistrationGet, func(st *state) error {
		for _, p := range st.preRegistrations {
			if filter.Role != nil && p.Role != *filter.Role {
				continue
			}
			if filter.Registered != nil && p.IsRegistered() != *filter.Registered {
				continue
			}
			p := p
			out = append(out, &p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

func (r *preRegistrationRepo) MarkRegistered(_ context.Context, id, identityID uuid.UUID, at time.Time) error {
	return r.s.do(OpPreRegistrationMark, func(st *state) error {
		p, ok := st.preRegistrations[id]
		if !ok {
			return apperrors.ErrPreRegistrationNotFound
		}
		if p.IsRegistered() {
			return apperrors.ErrAlreadyRegistered
		}
		p.IdentityID = &identityID
		p.RegisteredAt = &at
		st.preRegistrations[id] = p
		return nil
	})
}

func (r *preRegistrationRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.do(OpPreRegistrationDelete, func(st *state) error {
		if _, ok := st.preRegistrations[id]; !ok {
			return apperrors.ErrPreRegistrationNotFound
		}
		delete(st.preRegistrations, id)
		return nil
	})
}

type profileRepo struct{ s *Store }

func (r *profileRepo) Create(_ context.Context, p *models.Profile) error {
	return r.s.do(OpProfileCreate, func(st *state) error {
		if p.ID == uuid.Nil {
			return apperrors.NewValidationError("profile id must be the identity account id")
		}
		p.Email = helpers.NormalizeEmail(p.Email)
		if _, exists := st.profiles[p.ID]; exists {
			return apperrors.ErrDuplicateAccount
		}
		for _, existing := range st.profiles {
			if existing.Email == p.Email {
				return apperrors.ErrDuplicateAccount
			}
		}
		now := time.Now().UTC()
		p.CreatedAt, p.UpdatedAt = now, now
		st.profiles[p.ID] = *p
		return nil
	})
}

func (r *profileRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	var out *models.Profile
	err := r.s.do(OpProfileGet, func(st *state) error {
		p, ok := st.profiles[id]
		if !ok {
			return apperrors.ErrProfileNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *profileRepo) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	email = helpers.NormalizeEmail(email)
	var out *models.Profile
	err := r.s.do(OpProfileGet, func(st *state) error {
		for _, p := range st.profiles {
			if p.Email == email {
				p := p
				out = &p
				return nil
			}
		}
		return apperrors.ErrProfileNotFound
	})
	return out, err
}

func (r *profileRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.do(OpProfileDelete, func(st *state) error {
		if _, ok := st.profiles[id]; !ok {
			return apperrors.ErrProfileNotFound
		}
		delete(st.profiles, id)
		// professors cascade with their profile
		delete(st.professors, id)
		return nil
	})
}

type studentRepo struct{ s *Store }

func (r *studentRepo) Create(_ context.Context, s *models.Student) error {
	return r.s.do(OpStudentCreate, func(st *state) error {
		if _, ok := st.departments[s.DepartmentID]; !ok {
			return apperrors.ErrDepartmentNotFound
		}
		if _, exists := st.students[s.ID]; exists {
			return apperrors.NewConflictError("a student record already exists for this person")
		}
		for _, existing := range st.students {
			if existing.StudentID == s.StudentID {
				return apperrors.ErrStudentIDTaken
			}
		}
		now := time.Now().UTC()
		s.CreatedAt, s.UpdatedAt = now, now
		if s.Status == "" {
			s.Status = models.StudentStatusActive
		}
		if s.Semester == 0 {
			s.Semester = 1
		}
		st.students[s.ID] = *s
		return nil
	})
}

func (r *studentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Student, error) {
	var out *models.Student
	err := r.s.do(OpStudentGet, func(st *state) error {
		s, ok := st.students[id]
		if !ok {
			return apperrors.ErrStudentNotFound
		}
		out = &s
		return nil
	})
	return out, err
}

func (r *studentRepo) StudentIDsWithPrefix(_ context.Context, prefix string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	err := r.s.do(OpStudentIDs, func(st *state) error {
		for _, s := range st.students {
			if strings.HasPrefix(s.StudentID, prefix) {
				ids[s.StudentID] = struct{}{}
			}
		}
		return nil
	})
	return ids, err
}

func (r *studentRepo) Rekey(_ context.Context, oldID, newID uuid.UUID) error {
	return r.s.do(OpStudentRekey, func(st *state) error {
		s, ok := st.students[oldID]
		if !ok {
			return apperrors.ErrStudentNotFound
		}
		if _, taken := st.students[newID]; taken {
			return apperrors.NewConflictError("a student record already exists for this person")
		}
		delete(st.students, oldID)
		s.ID = newID
		s.UpdatedAt = time.Now().UTC()
		st.students[newID] = s
		return nil
	})
}

func (r *studentRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.do(OpStudentDelete, func(st *state) error {
		if _, ok := st.students[id]; !ok {
			return apperrors.ErrStudentNotFound
		}
		delete(st.students, id)
		return nil
	})
}

type departmentRepo struct{ s *Store }

func (r *departmentRepo) Create(_ context.Context, d *models.Department) error {
	return r.s.do(OpDepartmentWrite, func(st *state) error {
		if d.ID == uuid.Nil {
			d.ID = uuid.New()
		}
		for _, existing := range st.departments {
			if existing.Code == d.Code {
				return apperrors.ErrDepartmentAlreadyExists
			}
		}
		now := time.Now().UTC()
		d.CreatedAt, d.UpdatedAt = now, now
		st.departments[d.ID] = *d
		return nil
	})
}

func (r *departmentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Department, error) {
	var out *models.Department
	err := r.s.do(OpDepartmentGet, func(st *state) error {
		d, ok := st.departments[id]
		if !ok {
			return apperrors.ErrDepartmentNotFound
		}
		out = &d
		return nil
	})
	return out, err
}

func (r *departmentRepo) GetByCode(_ context.Context, code string) (*models.Department, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var out *models.Department
	err := r.s.do(OpDepartmentGet, func(st *state) error {
		for _, d := range st.departments {
			if d.Code == code {
				d := d
				out = &d
				return nil
			}
		}
		return apperrors.ErrDepartmentNotFound
	})
	return out, err
}

func (r *departmentRepo) List(_ context.Context) ([]*models.Department, error) {
	out := []*models.Department{}
	err := r.s.do(OpDepartmentGet, func(st *state) error {
		for _, d := range st.departments {
			d := d
			out = append(out, &d)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}

func (r *departmentRepo) Update(_ context.Context, d *models.Department) error {
	return r.s.do(OpDepartmentWrite, func(st *state) error {
		existing, ok := st.departments[d.ID]
		if !ok {
			return apperrors.ErrDepartmentNotFound
		}
		for id, other := range st.departments {
			if id != d.ID && other.Code == d.Code {
				return apperrors.ErrDepartmentAlreadyExists
			}
		}
		d.CreatedAt = existing.CreatedAt
		d.UpdatedAt = time.Now().UTC()
		st.departments[d.ID] = *d
		return nil
	})
}

func (r *departmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.do(OpDepartmentWrite, func(st *state) error {
		if _, ok := st.departments[id]; !ok {
			return apperrors.ErrDepartmentNotFound
		}
		for _, s := range st.students {
			if s.DepartmentID == id {
				return apperrors.ErrDepartmentHasRelations
			}
		}
		for _, c := range st.courses {
			if c.DepartmentID == id {
				return apperrors.ErrDepartmentHasRelations
			}
		}
		delete(st.departments, id)
		for pid, p := range st.professors {
			if p.DepartmentID != nil && *p.DepartmentID == id {
				p.DepartmentID = nil
				st.professors[pid] = p
			}
		}
		return nil
	})
}

type professorRepo struct{ s *Store }

func (r *professorRepo) Create(_ context.Context, p *models.Professor) error {
	return r.s.do(OpProfessorCreate, func(st *state) error {
		if _, ok := st.profiles[p.ID]; !ok {
			return apperrors.ErrProfileNotFound
		}
		if _, exists := st.professors[p.ID]; exists {
			return apperrors.NewConflictError("professor record already exists")
		}
		if p.DepartmentID != nil {
			if _, ok := st.departments[*p.DepartmentID]; !ok {
				return apperrors.ErrDepartmentNotFound
			}
		}
		p.CreatedAt = time.Now().UTC()
		st.professors[p.ID] = *p
		return nil
	})
}

func (r *professorRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Professor, error) {
	var out *models.Professor
	err := r.s.do(OpProfessorGet, func(st *state) error {
		p, ok := st.professors[id]
		if !ok {
			return apperrors.ErrProfessorNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *professorRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.do(OpProfessorDelete, func(st *state) error {
		if _, ok := st.professors[id]; !ok {
			return apperrors.ErrProfessorNotFound
		}
		delete(st.professors, id)
		for cid, c := range st.courses {
			if c.ProfessorID != nil && *c.ProfessorID == id {
				c.ProfessorID = nil
				st.courses[cid] = c
			}
		}
		return nil
	})
}

type courseRepo struct{ s *Store }

func checkCourseRefs(st *state, c *models.Course) error {
	if _, ok := st.departments[c.DepartmentID]; !ok {
		return apperrors.ErrDepartmentNotFound
	}
	if c.ProfessorID != nil {
		if _, ok := st.professors[*c.ProfessorID]; !ok {
			return apperrors.ErrProfessorNotFound
		}
	}
	for id, other := range st.courses {
		if id != c.ID && other.CourseCode == c.CourseCode {
			return apperrors.ErrDuplicateCourse
		}
	}
	return nil
}

func (r *courseRepo) Create(_ context.Context, c *models.Course) error {
	return r.s.do(OpCourseWrite, func(st *state) error {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		if err := checkCourseRefs(st, c); err != nil {
			return err
		}
		now := time.Now().UTC()
		c.CreatedAt, c.UpdatedAt = now, now
		st.courses[c.ID] = *c
		return nil
	})
}

func (r *courseRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Course, error) {
	var out *models.Course
	err := r.s.do(OpCourseGet, func(st *state) error {
		c, ok := st.courses[id]
		if !ok {
			return apperrors.ErrCourseNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *courseRepo) List(_ context.Context, departmentID *uuid.UUID) ([]*models.Course, error) {
	out := []*models.Course{}
	err := r.s.do(OpCourseGet, func(st *state) error {
		for _, c := range st.courses {
			if departmentID != nil && c.DepartmentID != *departmentID {
				continue
			}
			c := c
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CourseCode < out[j].CourseCode })
	return out, err
}

func (r *courseRepo) Update(_ context.Context, c *models.Course) error {
	return r.s.do(OpCourseWrite, func(st *state) error {
		existing, ok := st.courses[c.ID]
		if !ok {
			return apperrors.ErrCourseNotFound
		}
		if err := checkCourseRefs(st, c); err != nil {
			return err
		}
		c.CreatedAt = existing.CreatedAt
		c.UpdatedAt = time.Now().UTC()
		st.courses[c.ID] = *c
		return nil
	})
}

func (r *courseRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.do(OpCourseWrite, func(st *state) error {
		if _, ok := st.courses[id]; !ok {
			return apperrors.ErrCourseNotFound
		}
		delete(st.courses, id)
		return nil
	})
}
