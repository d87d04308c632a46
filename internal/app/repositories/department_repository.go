package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/db"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/dberrors"
)

var departmentColumns = []string{"id", "name", "code", "description", "created_at", "updated_at"}

// DepartmentRepo handles database operations for departments
type DepartmentRepo struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

func scanDepartment(row pgx.Row) (*models.Department, error) {
	d := &models.Department{}
	if err := row.Scan(&d.ID, &d.Name, &d.Code, &d.Description, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return d, nil
}

// Create creates a new department
func (r *DepartmentRepo) Create(ctx context.Context, d *models.Department) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now

	sql, args, err := r.sb.Insert("departments").
		Columns(departmentColumns...).
		Values(d.ID, d.Name, d.Code, d.Description, d.CreatedAt, d.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create department query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, ConstraintDepartmentCode) {
			return apperrors.ErrDepartmentAlreadyExists
		}
		return wrapErr("create department", err)
	}
	return nil
}

// GetByID retrieves a department by ID
func (r *DepartmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Department, error) {
	return r.getOne(ctx, "get department by id", squirrel.Eq{"id": id})
}

// GetByCode retrieves a department by its code
func (r *DepartmentRepo) GetByCode(ctx context.Context, code string) (*models.Department, error) {
	return r.getOne(ctx, "get department by code", squirrel.Eq{"code": strings.ToUpper(strings.TrimSpace(code))})
}

func (r *DepartmentRepo) getOne(ctx context.Context, op string, where squirrel.Sqlizer) (*models.Department, error) {
	sql, args, err := r.sb.Select(departmentColumns...).From("departments").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", op, err)
	}
	d, err := scanDepartment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFoundOr(op, err, apperrors.ErrDepartmentNotFound)
	}
	return d, nil
}

// List retrieves all departments ordered by code
func (r *DepartmentRepo) List(ctx context.Context) ([]*models.Department, error) {
	sql, args, err := r.sb.Select(departmentColumns...).From("departments").OrderBy("code ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list departments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapErr("list departments", err)
	}
	defer rows.Close()

	departments := []*models.Department{}
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, wrapErr("scan department", err)
		}
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate departments", err)
	}
	return departments, nil
}

// Update updates an existing department
func (r *DepartmentRepo) Update(ctx context.Context, d *models.Department) error {
	d.UpdatedAt = time.Now().UTC()
	sql, args, err := r.sb.Update("departments").
		SetMap(map[string]interface{}{
			"name":        d.Name,
			"code":        d.Code,
			"description": d.Description,
			"updated_at":  d.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": d.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update department query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, ConstraintDepartmentCode) {
			return apperrors.ErrDepartmentAlreadyExists
		}
		return wrapErr("update department", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}
	return nil
}

// Delete deletes a department; referenced departments yield ErrDepartmentHasRelations
func (r *DepartmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("departments").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete department query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err, "") {
			return apperrors.ErrDepartmentHasRelations
		}
		return wrapErr("delete department", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}
	return nil
}
