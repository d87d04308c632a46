package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/db"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/dberrors"
)

// ProfessorRepo handles professors queries
type ProfessorRepo struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// Create inserts a professor record keyed by the profile id
func (r *ProfessorRepo) Create(ctx context.Context, p *models.Professor) error {
	p.CreatedAt = time.Now().UTC()
	sql, args, err := r.sb.Insert("professors").
		Columns("id", "department_id", "designation", "created_at").
		Values(p.ID, p.DepartmentID, p.Designation, p.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create professor query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, ""):
			return apperrors.NewConflictError("professor record already exists")
		case dberrors.IsForeignKeyViolation(err, ""):
			return apperrors.ErrProfileNotFound
		}
		return wrapErr("create professor", err)
	}
	return nil
}

// GetByID retrieves a professor by ID
func (r *ProfessorRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Professor, error) {
	sql, args, err := r.sb.Select("id", "department_id", "designation", "created_at").
		From("professors").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get professor query: %w", err)
	}

	p := &models.Professor{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.DepartmentID, &p.Designation, &p.CreatedAt); err != nil {
		return nil, notFoundOr("get professor by id", err, apperrors.ErrProfessorNotFound)
	}
	return p, nil
}

// Delete removes a professor record
func (r *ProfessorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("professors").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete professor query: %w", err)
	}
	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return wrapErr("delete professor", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrProfessorNotFound
	}
	return nil
}
