package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

func TestDepartmentService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewDepartmentService(env.store, zerolog.Nop())

	_, err := svc.CreateDepartment(ctx, &dto.CreateDepartmentRequest{Name: "Computer Science", Code: "c$e"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	dept, err := svc.CreateDepartment(ctx, &dto.CreateDepartmentRequest{Name: "Computer Science", Code: "cse"})
	require.NoError(t, err)
	assert.Equal(t, "CSE", dept.Code)

	_, err = svc.CreateDepartment(ctx, &dto.CreateDepartmentRequest{Name: "Other", Code: "CSE"})
	assert.ErrorIs(t, err, apperrors.ErrDepartmentAlreadyExists)

	updated, err := svc.UpdateDepartment(ctx, dept.ID, &dto.UpdateDepartmentRequest{Name: "Computing", Code: "CSE", Description: "School of computing"})
	require.NoError(t, err)
	assert.Equal(t, "Computing", updated.Name)

	_, err = env.adminStudent.CreateStudent(ctx, adminStudentReq("ada@uni.edu"))
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeleteDepartment(ctx, dept.ID), apperrors.ErrDepartmentHasRelations)

	all, err := svc.GetAllDepartments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCourseService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewCourseService(env.store, zerolog.Nop())
	dept := env.department(t, "CSE")

	req := &dto.CourseRequest{
		CourseCode:   "cse101",
		CourseName:   "Structured Programming",
		DepartmentID: dept.ID.String(),
		Credits:      3,
		Capacity:     60,
	}
	course, err := svc.CreateCourse(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "CSE101", course.CourseCode)
	assert.Equal(t, 1, course.Semester)

	_, err = svc.CreateCourse(ctx, req)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateCourse)

	missingDept := *req
	missingDept.CourseCode = "CSE102"
	missingDept.DepartmentID = uuid.NewString()
	_, err = svc.CreateCourse(ctx, &missingDept)
	assert.ErrorIs(t, err, apperrors.ErrDepartmentNotFound)

	unknownProf := uuid.NewString()
	withProf := *req
	withProf.CourseCode = "CSE103"
	withProf.ProfessorID = &unknownProf
	_, err = svc.CreateCourse(ctx, &withProf)
	assert.ErrorIs(t, err, apperrors.ErrProfessorNotFound)

	badCredits := *req
	badCredits.Credits = 11
	_, err = svc.CreateCourse(ctx, &badCredits)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	list, err := svc.ListCourses(ctx, &dept.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteCourse(ctx, course.ID))
	_, err = svc.GetCourse(ctx, course.ID)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestPreRegistrationService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewPreRegistrationService(env.store, zerolog.Nop())

	pre, err := svc.Create(ctx, &dto.CreatePreRegistrationRequest{
		Email: "Prof@Uni.edu", FirstName: "Alan", LastName: "Turing", Role: "professor",
	})
	require.NoError(t, err)
	assert.Equal(t, "prof@uni.edu", pre.Email)

	_, err = svc.Create(ctx, &dto.CreatePreRegistrationRequest{
		Email: "prof@uni.edu", FirstName: "Alan", LastName: "Turing", Role: "student",
	})
	assert.ErrorIs(t, err, apperrors.ErrPreRegistrationExists)

	_, err = svc.Create(ctx, &dto.CreatePreRegistrationRequest{
		Email: "root@uni.edu", FirstName: "Root", LastName: "User", Role: "admin",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = env.registration.Register(ctx, registerReq("Alan", "Turing", "prof@uni.edu", "professor"), "")
	require.NoError(t, err)

	registered := true
	list, err := svc.List(ctx, &dto.PreRegistrationFilter{Role: "professor", Registered: &registered})
	require.NoError(t, err)
	require.Len(t, list, 1)

	assert.ErrorIs(t, svc.Delete(ctx, pre.ID), apperrors.ErrConflict)

	other := env.preRegister(t, "other@uni.edu", "Grace", "Hopper", models.RoleStudent)
	require.NoError(t, svc.Delete(ctx, other.ID))
	assert.ErrorIs(t, svc.Delete(ctx, other.ID), apperrors.ErrPreRegistrationNotFound)
}
