package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/db"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/dberrors"
)

var courseColumns = []string{
	"id", "course_code", "course_name", "department_id", "professor_id", "credits", "semester", "capacity",
	"created_at", "updated_at",
}

// CourseRepo handles courses queries
type CourseRepo struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	c := &models.Course{}
	if err := row.Scan(&c.ID, &c.CourseCode, &c.CourseName, &c.DepartmentID, &c.ProfessorID,
		&c.Credits, &c.Semester, &c.Capacity, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// courseWriteError maps constraint violations of course writes
func courseWriteError(op string, err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, ConstraintCourseCode):
		return apperrors.ErrDuplicateCourse
	case dberrors.IsForeignKeyViolation(err, ConstraintCourseDepartment):
		return apperrors.ErrDepartmentNotFound
	case dberrors.IsForeignKeyViolation(err, ConstraintCourseProfessor):
		return apperrors.ErrProfessorNotFound
	}
	return wrapErr(op, err)
}

// Create inserts a course
func (r *CourseRepo) Create(ctx context.Context, c *models.Course) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	sql, args, err := r.sb.Insert("courses").
		Columns(courseColumns...).
		Values(c.ID, c.CourseCode, c.CourseName, c.DepartmentID, c.ProfessorID, c.Credits, c.Semester, c.Capacity,
			c.CreatedAt, c.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create course query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return courseWriteError("create course", err)
	}
	return nil
}

// GetByID retrieves a course by ID
func (r *CourseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	sql, args, err := r.sb.Select(courseColumns...).From("courses").Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}
	c, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFoundOr("get course by id", err, apperrors.ErrCourseNotFound)
	}
	return c, nil
}

// List returns courses ordered by code, optionally restricted to one department
func (r *CourseRepo) List(ctx context.Context, departmentID *uuid.UUID) ([]*models.Course, error) {
	q := r.sb.Select(courseColumns...).From("courses").OrderBy("course_code ASC")
	if departmentID != nil {
		q = q.Where(squirrel.Eq{"department_id": *departmentID})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapErr("list courses", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, wrapErr("scan course", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate courses", err)
	}
	return courses, nil
}

// Update updates an existing course
func (r *CourseRepo) Update(ctx context.Context, c *models.Course) error {
	c.UpdatedAt = time.Now().UTC()
	sql, args, err := r.sb.Update("courses").
		SetMap(map[string]interface{}{
			"course_code":   c.CourseCode,
			"course_name":   c.CourseName,
			"department_id": c.DepartmentID,
			"professor_id":  c.ProfessorID,
			"credits":       c.Credits,
			"semester":      c.Semester,
			"capacity":      c.Capacity,
			"updated_at":    c.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update course query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return courseWriteError("update course", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// Delete removes a course
func (r *CourseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("courses").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete course query: %w", err)
	}
	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return wrapErr("delete course", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}
