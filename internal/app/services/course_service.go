package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/app/repositories"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/validation"
)

// CourseService handles course catalogue operations
type CourseService struct {
	store  repositories.Store
	logger zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(store repositories.Store, logger zerolog.Logger) *CourseService {
	return &CourseService{store: store, logger: logger}
}

func buildCourse(req *dto.CourseRequest) (*models.Course, error) {
	course := &models.Course{
		CourseCode: strings.ToUpper(strings.TrimSpace(req.CourseCode)),
		CourseName: strings.TrimSpace(req.CourseName),
		Credits:    req.Credits,
		Semester:   req.Semester,
		Capacity:   req.Capacity,
	}

	fields := map[string]interface{}{}
	if !validation.CompiledPatterns.CourseCode.MatchString(course.CourseCode) {
		fields["courseCode"] = "course code must look like CSE101"
	}
	if course.CourseName == "" {
		fields["courseName"] = "course name is required"
	}
	if course.Credits < 1 || course.Credits > 10 {
		fields["credits"] = "credits must be between 1 and 10"
	}
	if course.Capacity < 1 {
		fields["capacity"] = "capacity must be at least 1"
	}
	if course.Semester == 0 {
		course.Semester = 1
	}

	deptID, err := uuid.Parse(req.DepartmentID)
	if err != nil {
		fields["departmentId"] = "department id must be a UUID"
	}
	course.DepartmentID = deptID

	if req.ProfessorID != nil && *req.ProfessorID != "" {
		profID, err := uuid.Parse(*req.ProfessorID)
		if err != nil {
			fields["professorId"] = "professor id must be a UUID"
		} else {
			course.ProfessorID = &profID
		}
	}

	if len(fields) > 0 {
		return nil, apperrors.NewValidationError("course data is invalid").WithDetails(fields)
	}
	return course, nil
}

// CreateCourse adds a course to the catalogue
func (s *CourseService) CreateCourse(ctx context.Context, req *dto.CourseRequest) (*models.Course, error) {
	course, err := buildCourse(req)
	if err != nil {
		return nil, err
	}
	if err := s.store.Courses().Create(ctx, course); err != nil {
		return nil, err
	}
	s.logger.Info().Str("courseCode", course.CourseCode).Msg("Course created")
	return course, nil
}

// UpdateCourse replaces the attributes of a course
func (s *CourseService) UpdateCourse(ctx context.Context, id uuid.UUID, req *dto.CourseRequest) (*models.Course, error) {
	course, err := buildCourse(req)
	if err != nil {
		return nil, err
	}
	course.ID = id
	if err := s.store.Courses().Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// GetCourse returns a course by id
func (s *CourseService) GetCourse(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	return s.store.Courses().GetByID(ctx, id)
}

// ListCourses lists courses, optionally of one department
func (s *CourseService) ListCourses(ctx context.Context, departmentID *uuid.UUID) ([]*models.Course, error) {
	return s.store.Courses().List(ctx, departmentID)
}

// DeleteCourse removes a course
func (s *CourseService) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	return s.store.Courses().Delete(ctx, id)
}
