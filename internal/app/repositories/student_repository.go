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

var studentColumns = []string{
	"id", "student_id", "department_id", "batch", "semester", "academic_year", "status", "created_at", "updated_at",
}

// StudentRepo handles students queries
type StudentRepo struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	s := &models.Student{}
	if err := row.Scan(&s.ID, &s.StudentID, &s.DepartmentID, &s.Batch, &s.Semester, &s.AcademicYear,
		&s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a student record. A taken student_id yields ErrStudentIDTaken.
func (r *StudentRepo) Create(ctx context.Context, s *models.Student) error {
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	if s.Status == "" {
		s.Status = models.StudentStatusActive
	}
	if s.Semester == 0 {
		s.Semester = 1
	}

	sql, args, err := r.sb.Insert("students").
		Columns(studentColumns...).
		Values(s.ID, s.StudentID, s.DepartmentID, s.Batch, s.Semester, s.AcademicYear, s.Status, s.CreatedAt, s.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, ConstraintStudentID):
			return apperrors.ErrStudentIDTaken
		case dberrors.IsDuplicateConstraintError(err, "students_pkey"):
			return apperrors.NewConflictError("a student record already exists for this person")
		case dberrors.IsForeignKeyViolation(err, ConstraintStudentDepartment):
			return apperrors.ErrDepartmentNotFound
		}
		return wrapErr("create student", err)
	}
	return nil
}

// GetByID retrieves a student by ID
func (r *StudentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).From("students").Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}
	s, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFoundOr("get student by id", err, apperrors.ErrStudentNotFound)
	}
	return s, nil
}

// StudentIDsWithPrefix returns the student ids already issued under prefix
func (r *StudentRepo) StudentIDsWithPrefix(ctx context.Context, prefix string) (map[string]struct{}, error) {
	sql, args, err := r.sb.Select("student_id").
		From("students").
		Where(squirrel.Like{"student_id": escapeLike(prefix) + "%"}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build student id prefix query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapErr("list student ids", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapErr("scan student id", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate student ids", err)
	}
	return ids, nil
}

// Rekey moves a placeholder record to the id of the registered profile
func (r *StudentRepo) Rekey(ctx context.Context, oldID, newID uuid.UUID) error {
	sql, args, err := r.sb.Update("students").
		Set("id", newID).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": oldID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build rekey student query: %w", err)
	}
	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_pkey") {
			return apperrors.NewConflictError("a student record already exists for this person")
		}
		return wrapErr("rekey student", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// Delete removes a student record
func (r *StudentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("students").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete student query: %w", err)
	}
	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return wrapErr("delete student", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
